package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"trading-gate/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// websocket streams every gate decision and kill switch transition to the
// connected operator.
func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	decisions, unsubDecisions := s.Bus.Subscribe(events.EventDecision, 100)
	switches, unsubSwitches := s.Bus.Subscribe(events.EventKillSwitch, 10)
	defer unsubDecisions()
	defer unsubSwitches()

	for {
		select {
		case msg, ok := <-decisions:
			if !ok {
				return
			}
			if err := conn.WriteJSON(gin.H{"type": "decision", "data": msg}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case msg, ok := <-switches:
			if !ok {
				return
			}
			if err := conn.WriteJSON(gin.H{"type": "kill_switch", "data": msg}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}
