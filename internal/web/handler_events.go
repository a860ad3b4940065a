package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/vbonduro/homeinv/internal/watch"
)

const keepAliveInterval = 30 * time.Second

type changeEvent struct {
	Topic watch.Topic `json:"topic"`
}

// handleEvents streams one SSE "change" event per table write. Clients
// refetch the affected list when they receive one. A "ready" event is sent
// once the subscription is in place.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rc := http.NewResponseController(w)
	// The server's write timeout would otherwise end the stream.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Debug("cannot clear write deadline", "error", err)
	}

	changes := s.hub.Subscribe(ctx, watch.AllTopics...)
	s.logger.Debug("event stream opened", "remote", r.RemoteAddr, "subscribers", s.hub.Subscribers())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	if _, err := w.Write([]byte("event: ready\ndata: {}\n\n")); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.logger.Error("event stream cannot flush", "error", err)
		return
	}

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
		case topic, ok := <-changes:
			if !ok {
				return
			}
			data, err := json.Marshal(changeEvent{Topic: topic})
			if err != nil {
				s.logger.Error("encode change event failed", "topic", topic, "error", err)
				return
			}
			if _, err := w.Write([]byte("event: change\ndata: " + string(data) + "\n\n")); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
