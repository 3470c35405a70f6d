package edumentor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/EyadAmgad/EduMentorAI/pkg/stream"
)

func streamHandler(t *testing.T, frames []stream.Frame) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		enc := stream.NewEncoder(w)
		for _, f := range frames {
			if err := enc.Encode(f); err != nil {
				t.Errorf("encode: %v", err)
			}
		}
	}
}

func newTestClient(srvURL string) *Client {
	c := NewClient(srvURL)
	c.APIKey = "emk_test"
	return c
}

func TestSendHappyPath(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t, []stream.Frame{
		stream.Start(),
		stream.Chunk("The answer "),
		stream.Chunk("is 42."),
		stream.Complete("sess-9"),
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := NewSession()
	d := NewDispatcher(session, NewIndicator(nil), &Renderer{}, nil)

	if err := client.Send(context.Background(), session, d, "what is the answer"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !d.Done() {
		t.Fatal("exchange should be terminated")
	}
	if !strings.Contains(d.Output(), "The answer is 42.") {
		t.Fatalf("output = %q", d.Output())
	}
	if session.ID() != "sess-9" {
		t.Fatalf("session = %q, want sess-9", session.ID())
	}
}

func TestSendUsesSessionEndpoint(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		streamHandler(t, []stream.Frame{stream.Start(), stream.Complete("")})(w, r)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := Resume("fixed-id")
	d := NewDispatcher(session, NewIndicator(nil), &Renderer{}, nil)

	if err := client.Send(context.Background(), session, d, "hi"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/chat/fixed-id/stream" {
		t.Fatalf("path = %q, want /chat/fixed-id/stream", gotPath)
	}
}

func TestSendNonOKStatusSynthesizesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"an exchange is already in progress for this session"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := NewSession()
	ind := NewIndicator(nil)
	d := NewDispatcher(session, ind, &Renderer{}, nil)

	err := client.Send(context.Background(), session, d, "hi")
	if err == nil {
		t.Fatal("Send should report the failure")
	}
	if !d.Done() {
		t.Fatal("failure must still terminate the exchange")
	}
	if !strings.Contains(d.Output(), "already in progress") {
		t.Fatalf("output = %q, want server error surfaced", d.Output())
	}
	if ind.State() != StateIdle {
		t.Fatal("client must be able to submit again after a failure")
	}
}

func TestSendEOFWithoutTerminalSynthesizesError(t *testing.T) {
	srv := httptest.NewServer(streamHandler(t, []stream.Frame{
		stream.Start(),
		stream.Chunk("partial "),
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	session := NewSession()
	d := NewDispatcher(session, NewIndicator(nil), &Renderer{}, nil)

	err := client.Send(context.Background(), session, d, "hi")
	if err == nil {
		t.Fatal("truncated stream should be reported")
	}
	if !d.Done() {
		t.Fatal("truncated stream must still release the exchange")
	}
	if !strings.Contains(d.Output(), "partial") {
		t.Fatal("partial content must be preserved")
	}
}

func TestSendConnectFailureSynthesizesError(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1") // nothing listens here
	session := NewSession()
	ind := NewIndicator(nil)
	d := NewDispatcher(session, ind, &Renderer{}, nil)

	if err := client.Send(context.Background(), session, d, "hi"); err == nil {
		t.Fatal("connect failure should be reported")
	}
	if !d.Done() || ind.State() != StateIdle {
		t.Fatal("connect failure must release the exchange")
	}
}

func TestSendRejectsConcurrentExchange(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := stream.NewEncoder(w)
		enc.Start()
		<-release
		enc.Complete("")
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		session := NewSession()
		d := NewDispatcher(session, NewIndicator(nil), &Renderer{}, nil)
		client.Send(context.Background(), session, d, "slow one")
	}()

	// Wait for the first exchange to be in flight.
	deadline := time.After(2 * time.Second)
	for {
		client.mu.Lock()
		busy := client.inFlight
		client.mu.Unlock()
		if busy {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first exchange never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	session := NewSession()
	d := NewDispatcher(session, NewIndicator(nil), &Renderer{}, nil)
	if err := client.Send(context.Background(), session, d, "second"); err != ErrExchangeInFlight {
		t.Fatalf("err = %v, want ErrExchangeInFlight", err)
	}

	close(release)
	wg.Wait()
}
