package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// chatRequest is the incoming WebSocket message format.
type chatRequest struct {
	Type      string `json:"type"`       // "ask" or "questions"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// chatResponse is the outgoing WebSocket message format.
type chatResponse struct {
	Type      string   `json:"type"` // "response" or "error"
	SessionID string   `json:"session_id"`
	Content   string   `json:"content,omitempty"`
	Questions []string `json:"questions,omitempty"`
}

// handleWebSocket runs a chat loop over the user's indexed document.
// The userId header identifies the caller, same as the REST endpoints.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "missing userId header", http.StatusBadRequest)
		return
	}

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

		var req chatRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		switch req.Type {
		case "ask":
			if req.Content == "" {
				s.sendWSError(conn, req.SessionID, "content is required")
				continue
			}
			answer, err := s.pipeline.Ask(r.Context(), uid, req.Content)
			if err != nil {
				s.sendWSError(conn, req.SessionID, err.Error())
				continue
			}
			s.sendWSResponse(conn, chatResponse{
				Type:      "response",
				SessionID: req.SessionID,
				Content:   answer,
			})
		case "questions":
			questions, err := s.pipeline.GenerateQuestions(r.Context(), uid, req.Content, 5)
			if err != nil {
				s.sendWSError(conn, req.SessionID, err.Error())
				continue
			}
			s.sendWSResponse(conn, chatResponse{
				Type:      "response",
				SessionID: req.SessionID,
				Questions: questions,
			})
		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) sendWSResponse(conn *websocket.Conn, resp chatResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	resp := chatResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
