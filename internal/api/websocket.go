package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsMessage is one frame of the job stream.
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const wsPingInterval = 30 * time.Second

// handleJobsWebSocket streams job status events. The first frame is a
// full snapshot; after that every state change arrives as its own frame.
func (s *Server) handleJobsWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("jobs WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	events, cancel := s.queue.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(wsMessage{Type: "snapshot", Payload: s.queue.Snapshot()}); err != nil {
		return
	}

	// Reader goroutine drains client frames so pong handling works and
	// the connection close is noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case st, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(wsMessage{Type: "job", Payload: st}); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
