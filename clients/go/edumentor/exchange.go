package edumentor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/EyadAmgad/EduMentorAI/pkg/stream"
)

// Send runs one chat exchange: it POSTs the message to the session's
// current endpoint and drives a single cooperative read loop over the
// response, feeding the decoder and dispatching frames in order. The only
// suspension points are the transport reads.
//
// At most one exchange may be in flight per client; a second Send returns
// ErrExchangeInFlight immediately. Transport failures of any kind are
// synthesized into an error-frame outcome so the dispatcher always
// releases the exchange: partial content stays on screen and the client
// can submit again.
func (c *Client) Send(ctx context.Context, session *Session, d *Dispatcher, message string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return ErrExchangeInFlight
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	d.Begin()

	fail := func(msg string, err error) error {
		d.Dispatch(stream.Error(msg))
		return err
	}

	body, _ := json.Marshal(map[string]string{"message": message})
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+session.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return fail("could not reach the server", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.APIKey != "" {
		req.Header.Set("X-API-Key", c.APIKey)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fail("could not reach the server", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp struct {
			Error string `json:"error"`
		}
		json.Unmarshal(respBody, &errResp)
		msg := errResp.Error
		if msg == "" {
			msg = fmt.Sprintf("server returned status %d", resp.StatusCode)
		}
		return fail(msg, fmt.Errorf("edumentor error %d: %s", resp.StatusCode, msg))
	}

	dec := stream.NewDecoder(c.Log)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, f := range dec.Feed(buf[:n]) {
				d.Dispatch(f)
			}
			if d.Done() {
				return nil
			}
		}
		if err == io.EOF {
			dec.Finish()
			if !d.Done() {
				return fail("connection closed before the answer finished",
					fmt.Errorf("edumentor: stream ended without a terminal frame"))
			}
			return nil
		}
		if err != nil {
			return fail("connection lost while receiving the answer", err)
		}
	}
}
