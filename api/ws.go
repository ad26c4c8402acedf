package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin policy is enforced by the CORS middleware; the socket
		// carries outbound notifications only.
		return true
	},
}

// NotificationsWSHandler upgrades the connection and subscribes it to the
// broadcast hub. The read loop exists only to detect disconnection; inbound
// frames are discarded.
func (h *Handlers) NotificationsWSHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: api - websocket upgrade failed: %v", err)
		return
	}
	h.Hub.AddClient(conn)

	go func() {
		defer h.Hub.RemoveClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
