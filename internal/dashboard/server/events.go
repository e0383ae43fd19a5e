package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sakhike1/officeboard/internal/ws"
	apiclient "github.com/sakhike1/officeboard/pkg/api/client"
)

const heartbeatInterval = 25 * time.Second

// handleSessionEvents relays the API session stream to the browser as SSE so
// an open page can react to a sign-out elsewhere.
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.renderError(w, r, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	v := viewerFrom(r.Context())
	client := ws.NewSSEClient(w, flusher, s.logger)
	defer client.Close()
	if err := client.Heartbeat(); err != nil {
		return
	}

	ctx := r.Context()
	go func() {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := client.Heartbeat(); err != nil {
					return
				}
			}
		}
	}()

	send := func(event apiclient.SessionEvent) {
		payload, err := json.Marshal(event)
		if err != nil {
			return
		}
		_ = client.SendEvent("session", payload)
	}
	err := s.api.WatchSession(ctx, v.Token, send)
	if err == nil {
		return
	}
	s.logger.Warn("session stream ended", "user_id", v.User.ID, "error", err)
	if apiclient.IsUnauthorized(err) {
		send(apiclient.SessionEvent{Type: apiclient.EventSignedOut, UserID: v.User.ID, At: time.Now().UTC()})
	}
}
