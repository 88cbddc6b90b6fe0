package httpinterface

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/futarchy-daemon/internal/core/application/pubsub"
	"github.com/tdex-network/futarchy-daemon/internal/core/ports"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// streamHandler pushes the events published for the requested topic to
// websocket clients, one text frame per json event.
type streamHandler struct {
	stream   ports.EventStream
	upgrader websocket.Upgrader
}

func newStreamHandler(stream ports.EventStream, origins []string) *streamHandler {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	_, anyOrigin := allowed["*"]

	return &streamHandler{
		stream: stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || len(allowed) == 0 || anyOrigin {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *streamHandler) serve(w http.ResponseWriter, r *http.Request) {
	topic := r.URL.Query().Get("event")
	if topic != ports.UnspecifiedTopic && !pubsub.IsValidTopic(topic) {
		writeError(w, pubsub.ErrInvalidTopic)
		return
	}

	events, stop := h.stream.Listen(topic)
	defer stop()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("failed to upgrade stream connection")
		return
	}
	defer conn.Close()

	// Clients are not expected to send anything, reading only serves to
	// process control frames and detect disconnections.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(
					err, websocket.CloseGoingAway, websocket.CloseNormalClosure,
				) {
					log.WithError(err).Debug("stream connection closed unexpectedly")
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case event, ok := <-events:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(
					websocket.CloseGoingAway, "server shutting down",
				))
				return
			}
			if err := conn.WriteMessage(
				websocket.TextMessage, []byte(event.Payload),
			); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
