package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/tieubaoca/docchat-be/types"
)

// WebSocketService serves document chat over a websocket connection.
type WebSocketService struct {
	chat     *ChatService
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

func NewWebSocketService(chat *ChatService) *WebSocketService {
	return &WebSocketService{
		chat: chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		log: logrus.WithField("component", "websocket_service"),
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("upgrade error: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(512 * 1024) // 512KB max message size
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		messageType, p, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warnf("websocket read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req types.WebsocketRequest
		if err := json.Unmarshal(p, &req); err != nil {
			s.writeError(conn, messageType, "Error processing message")
			continue
		}
		payloadBytes, err := json.Marshal(req.Payload)
		if err != nil {
			s.writeError(conn, messageType, "Error processing message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketChat:
			var payload types.WebSocketChatPayload
			if err := json.Unmarshal(payloadBytes, &payload); err != nil {
				s.writeError(conn, messageType, "Error processing message")
				continue
			}
			res, err := s.chat.Chat(ctx, types.ChatRequest{
				Query:       payload.Query,
				FileID:      payload.FileID,
				ChatHistory: payload.ChatHistory,
			})
			if err != nil {
				s.log.Warnf("chat error: %v", err)
				s.writeError(conn, messageType, "Error processing message")
				continue
			}
			if err := conn.WriteJSON(types.WebSocketResponse{
				Type:    types.TypeWebsocketChat,
				Payload: res,
			}); err != nil {
				s.log.Warnf("write error: %v", err)
			}

		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebSocketResponse{
				Type: types.TypeWebsocketPong,
			}); err != nil {
				s.log.Warnf("write error: %v", err)
			}
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, messageType int, message string) {
	response := types.WebSocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: message,
	}
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	conn.WriteMessage(messageType, data)
}
