package ws

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sakhike1/officeboard/internal/domain"
)

type chanSubscriber struct {
	ch     chan []byte
	fail   bool
	closed chan struct{}
}

func newChanSubscriber() *chanSubscriber {
	return &chanSubscriber{ch: make(chan []byte, 4), closed: make(chan struct{})}
}

func (s *chanSubscriber) Send(p []byte) error {
	if s.fail {
		return errors.New("gone")
	}
	s.ch <- p
	return nil
}

func (s *chanSubscriber) Close() { close(s.closed) }

func TestHubPublishReachesOnlyThatUser(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	mine := newChanSubscriber()
	other := newChanSubscriber()
	hub.Register("u1", mine)
	hub.Register("u2", other)

	if err := hub.Publish(domain.SessionEvent{Type: domain.SessionSignedOut, UserID: "u1", At: time.Now()}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case payload := <-mine.ch:
		var ev domain.SessionEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if ev.Type != domain.SessionSignedOut {
			t.Fatalf("expected SIGNED_OUT, got %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case <-other.ch:
		t.Fatal("event leaked to another user")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	broken := newChanSubscriber()
	broken.fail = true
	hub.Register("u1", broken)
	hub.Broadcast("u1", []byte("x"))

	select {
	case <-broken.closed:
	case <-time.After(time.Second):
		t.Fatal("failing subscriber was not closed")
	}
}

func TestHubCloseClosesClients(t *testing.T) {
	hub := NewHub()
	sub := newChanSubscriber()
	hub.Register("u1", sub)
	hub.Close()

	select {
	case <-sub.closed:
	case <-time.After(time.Second):
		t.Fatal("subscriber not closed on hub shutdown")
	}
	// calls after Close must not block
	hub.Broadcast("u1", []byte("late"))
}

type flushRecorder struct {
	*httptest.ResponseRecorder
}

func (f flushRecorder) Flush() {}

func TestSSEClientFormatsEvents(t *testing.T) {
	rec := flushRecorder{httptest.NewRecorder()}
	client := NewSSEClient(rec, rec, nil)

	if err := client.SendEvent("session", []byte(`{"type":"SIGNED_OUT"}`)); err != nil {
		t.Fatalf("send: %v", err)
	}
	if err := client.Heartbeat(); err != nil {
		t.Fatalf("heartbeat: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: session\ndata: {\"type\":\"SIGNED_OUT\"}\n\n") {
		t.Fatalf("unexpected body %q", body)
	}
	if !strings.HasSuffix(body, ": ping\n\n") {
		t.Fatalf("missing heartbeat in %q", body)
	}

	client.Close()
	if err := client.Send([]byte("after")); err == nil {
		t.Fatal("expected error after close")
	}
}
