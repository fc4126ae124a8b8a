package ads

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is public and read-only
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler streams slot events to browsers so open calendars can refresh.
type WSHandler struct {
	hub *Hub
	log zerolog.Logger
}

func NewWSHandler(hub *Hub, log zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log}
}

// HandleWebSocket serves GET /ads/ws.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	id, events := h.hub.Subscribe()
	h.log.Debug().Int64("subscriber", id).Msg("calendar subscriber connected")

	go h.writePump(conn, events)
	h.readPump(conn)

	h.hub.Unsubscribe(id)
	h.log.Debug().Int64("subscriber", id).Msg("calendar subscriber disconnected")
}

// readPump only drains control frames; it returns when the client goes away.
func (h *WSHandler) readPump(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

func (h *WSHandler) writePump(conn *websocket.Conn, events <-chan SlotEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case evt, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
