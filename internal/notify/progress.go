package notify

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"encore-ai/log"
)

// ProgressEvent is pushed to websocket subscribers as a render advances.
type ProgressEvent struct {
	TaskID     string `json:"taskId"`
	EpisodeID  string `json:"episodeId"`
	Stage      string `json:"stage"`
	Status     int    `json:"status"`
	ProcessPct uint8  `json:"processPercent"`
	Message    string `json:"message,omitempty"`
}

// Hub fans progress events out to connected websocket clients. A dead
// connection is dropped on its first failed write.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// DefaultHub serves the /ws/progress subscribers.
var DefaultHub = NewHub()

func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}

func (h *Hub) Publish(event ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			log.GetLogger().Warn("progress subscriber dropped", zap.Error(err))
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

// Subscribers reports the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
