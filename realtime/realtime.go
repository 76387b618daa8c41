package realtime

import (
	"log"
	"sync"

	"api/models"

	"github.com/gorilla/websocket"
)

var (
	userClients = make(map[string]map[*websocket.Conn]bool) // Map of user ID to connected clients
	broadcast   = make(chan OrderUpdate)                    // Broadcast channel for updates
	mutex       sync.Mutex                                  // Mutex to protect userClients map
)

// OrderUpdate notifies a user's connected clients that one of their orders
// changed state.
type OrderUpdate struct {
	Order      models.Order `json:"order"`
	UpdateType string       `json:"update_type"` // "received", "cleared", "failed", "force_failed"
}

// RegisterClient adds a WebSocket client for a specific user
func RegisterClient(userID string, conn *websocket.Conn) {
	mutex.Lock()
	if userClients[userID] == nil {
		userClients[userID] = make(map[*websocket.Conn]bool)
	}
	userClients[userID][conn] = true
	mutex.Unlock()
}

// UnregisterClient removes a WebSocket client for a specific user
func UnregisterClient(userID string, conn *websocket.Conn) {
	mutex.Lock()
	if clients, exists := userClients[userID]; exists {
		delete(clients, conn)
		if len(clients) == 0 {
			delete(userClients, userID)
		}
	}
	mutex.Unlock()
}

// BroadcastOrderUpdate sends an update to all clients of the order's owner
func BroadcastOrderUpdate(update OrderUpdate) {
	broadcast <- update
}

func handleBroadcast() {
	for {
		update := <-broadcast
		mutex.Lock()
		if clients, exists := userClients[update.Order.UserID]; exists {
			for client := range clients {
				if err := client.WriteJSON(update); err != nil {
					log.Printf("WebSocket write error: %v", err)
					client.Close()
					delete(clients, client)
				}
			}
		}
		mutex.Unlock()
	}
}

func init() {
	go handleBroadcast()
}
