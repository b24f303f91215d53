package handlers

import (
	"log"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/lokerhub/lokerhub-api/internal/realtime"
)

type NotificationHandler struct {
	Hub *realtime.Hub
}

func NewNotificationHandler(hub *realtime.Hub) *NotificationHandler {
	return &NotificationHandler{Hub: hub}
}

// WebSocketHandler keeps one connection per tab registered in the hub so wallet
// updates reach the account while it is online.
func (h *NotificationHandler) WebSocketHandler(c *websocket.Conn) {
	accountID := c.Query("account_id")
	if accountID == "" {
		log.Println("WebSocket: account_id parameter missing")
		c.Close()
		return
	}

	accountUUID, err := uuid.Parse(accountID)
	if err != nil {
		log.Println("WebSocket: invalid account_id:", accountID, "error:", err)
		c.Close()
		return
	}

	log.Printf("WebSocket: account %s connected\n", accountID)

	client := &realtime.Client{
		ID:        uuid.New().String(),
		AccountID: accountUUID,
		Conn:      &realtime.WebSocketConn{Conn: c},
		Send:      make(chan []byte, 256),
	}

	h.Hub.RegisterClient(client)
	defer func() {
		h.Hub.UnregisterClient(client)
		log.Printf("WebSocket: account %s disconnected\n", accountID)
	}()

	// Send messages from hub to client
	go func() {
		for msg := range client.Send {
			if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Println("WebSocket write error:", err)
				return
			}
		}
	}()

	// Read loop keeps the connection alive until the peer goes away.
	for {
		var payload map[string]interface{}
		if err := c.ReadJSON(&payload); err != nil {
			log.Printf("WebSocket read error for account %s: %v\n", accountID, err)
			break
		}

		if msgType, ok := payload["type"].(string); ok && msgType == "pong" {
			continue
		}
	}
}
