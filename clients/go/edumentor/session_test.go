package edumentor

import (
	"sync"
	"testing"
)

func TestSessionEndpointBeforeAndAfterAdoption(t *testing.T) {
	s := NewSession()
	if got := s.Endpoint(); got != "/chat/stream" {
		t.Fatalf("fresh session endpoint = %q, want /chat/stream", got)
	}
	if s.Known() {
		t.Fatal("fresh session should not know an identity")
	}

	if !s.Adopt("abc-123") {
		t.Fatal("first Adopt should succeed")
	}
	if got := s.Endpoint(); got != "/chat/abc-123/stream" {
		t.Fatalf("adopted session endpoint = %q", got)
	}
	if !s.Known() || s.ID() != "abc-123" {
		t.Fatalf("adopted identity = %q", s.ID())
	}
}

func TestSessionAdoptsAtMostOnce(t *testing.T) {
	s := NewSession()
	if !s.Adopt("first") {
		t.Fatal("first Adopt should succeed")
	}
	if s.Adopt("second") {
		t.Fatal("second Adopt should be a no-op")
	}
	if s.ID() != "first" {
		t.Fatalf("identity = %q, want first", s.ID())
	}
}

func TestSessionAdoptIgnoresEmpty(t *testing.T) {
	s := NewSession()
	if s.Adopt("") {
		t.Fatal("empty identity should not be adopted")
	}
	if s.Known() {
		t.Fatal("session should remain identity-less")
	}
}

func TestSessionConcurrentAdoption(t *testing.T) {
	s := NewSession()

	var wg sync.WaitGroup
	var mu sync.Mutex
	adopted := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if s.Adopt(string(rune('a' + n%26))) {
				mu.Lock()
				adopted++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if adopted != 1 {
		t.Fatalf("adopted %d times, want exactly 1", adopted)
	}
}

func TestResume(t *testing.T) {
	s := Resume("known-id")
	if !s.Known() || s.Endpoint() != "/chat/known-id/stream" {
		t.Fatalf("resumed session endpoint = %q", s.Endpoint())
	}
	if s.Adopt("other") {
		t.Fatal("resumed session must not adopt a new identity")
	}
}
