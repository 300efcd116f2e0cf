package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Content string `json:"content"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type    string `json:"type"` // "response" or "error"
	Content string `json:"content"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWS(conn, "error", "invalid message format")
			continue
		}
		if req.Content == "" {
			s.sendWS(conn, "error", "content is required")
			continue
		}
		if s.docs.Len() == 0 {
			s.sendWS(conn, "error", msgNoDocument)
			continue
		}

		answer, err := s.answer(r.Context(), req.Content)
		if err != nil {
			s.metrics.chats.WithLabelValues("error").Inc()
			s.sendWS(conn, "error", msgChatFailed+" "+err.Error())
			continue
		}
		s.metrics.chats.WithLabelValues("ok").Inc()
		s.sendWS(conn, "response", answer)
	}
}

func (s *Server) sendWS(conn *websocket.Conn, typ, content string) {
	if err := conn.WriteJSON(wsResponse{Type: typ, Content: content}); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}
