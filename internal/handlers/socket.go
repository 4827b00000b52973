package handlers

import (
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"chanrelay/internal/debug"
	"chanrelay/internal/relay"
)

type SocketHandler struct {
	registry     *relay.Registry
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewSocketHandler accepts websocket clients. An empty allowedOrigins accepts
// any origin. pingInterval must match the registry's so the read deadline
// outlives the gap between pings.
func NewSocketHandler(registry *relay.Registry, allowedOrigins []string, pingInterval time.Duration) *SocketHandler {
	return &SocketHandler{
		registry:     registry,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			Subprotocols:    relay.Subprotocols(),
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

func (h *SocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/socket", h.socket)
}

func (h *SocketHandler) socket(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error
		log.Printf("socket upgrade failed remote=%s err=%v", r.RemoteAddr, err)
		return
	}

	if h.pingInterval > 0 {
		wait := 2 * h.pingInterval
		_ = ws.SetReadDeadline(time.Now().Add(wait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wait))
		})
	}

	conn := h.registry.Accept(ws,
		relay.WithCodec(relay.CodecFor(ws.Subprotocol())),
		relay.WithRemoteAddr(r.RemoteAddr),
	)
	log.Printf("CONNECT\t%s\t%s", conn.ID, r.RemoteAddr)

	err = h.registry.Serve(conn)
	if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		debug.Debugf("read from %s ended: %v", conn.ID, err)
	}
	log.Printf("DISCONNECT\t%s\t%s", conn.ID, r.RemoteAddr)
}
