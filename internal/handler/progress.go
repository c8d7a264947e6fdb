package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"encore-ai/internal/notify"
	"encore-ai/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to loopback by default; origin enforcement happens
	// at the reverse proxy when exposed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressSocket upgrades the connection and streams render progress
// events until the client goes away.
func (h *Handler) ProgressSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Error("progress websocket upgrade failed", zap.Error(err))
		return
	}

	notify.DefaultHub.Register(conn)
	log.GetLogger().Info("progress subscriber connected", zap.String("remote", conn.RemoteAddr().String()))

	// Reads only pump control frames; the hub owns all writes.
	go func() {
		defer notify.DefaultHub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
