package api

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

const streamWriteTimeout = 5 * time.Second

// Stream message types
const (
	streamSnapshot = "snapshot"
	streamEvent    = "event"
)

var streamUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		host := strings.ToLower(strings.TrimSpace(r.Host))
		originHost := strings.ToLower(strings.TrimSpace(u.Host))
		return host == originHost
	},
}

// streamMessage is one frame pushed to a websocket client
type streamMessage struct {
	Type        string                        `json:"type"`
	GeneratedAt time.Time                     `json:"generatedAt"`
	Statuses    map[string]types.StatusRecord `json:"statuses,omitempty"`
	Event       *events.Event                 `json:"event,omitempty"`
}

// handleStream pushes a status snapshot on connect and every push interval,
// and forwards broker events as they happen
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := streamUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.serveStream(conn)
}

func (s *Server) serveStream(conn *websocket.Conn) {
	defer conn.Close()

	metrics.WebsocketClients.Inc()
	defer metrics.WebsocketClients.Dec()

	var sub events.Subscriber
	if s.broker != nil {
		sub = s.broker.Subscribe()
		defer s.broker.Unsubscribe(sub)
	}

	if err := writeStreamMessage(conn, s.snapshotMessage()); err != nil {
		return
	}

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := writeStreamMessage(conn, s.snapshotMessage()); err != nil {
				return
			}
		case ev, ok := <-sub:
			if !ok {
				return
			}
			msg := streamMessage{Type: streamEvent, GeneratedAt: time.Now(), Event: ev}
			if err := writeStreamMessage(conn, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) snapshotMessage() streamMessage {
	return streamMessage{
		Type:        streamSnapshot,
		GeneratedAt: time.Now(),
		Statuses:    s.monitor.GetAllStatuses(),
	}
}

func writeStreamMessage(conn *websocket.Conn, msg streamMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(msg)
}
