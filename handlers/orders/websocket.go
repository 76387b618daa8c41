package orders

import (
	"log"
	"net/http"

	"api/middleware"
	"api/realtime"
	"api/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin policy is enforced by the CORS layer
	},
}

// OrderFeed upgrades the connection and streams the user's order
// transitions until the client goes away
// @Summary Subscribe to order updates
// @Description Websocket feed of the authenticated user's order state transitions
// @Tags Orders
// @Success 101
// @Failure 401 {object} map[string]string
// @Router /orders/ws [get]
// @Security Bearer
func OrderFeed(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		response.Error(c, http.StatusBadRequest, ErrWebsocketUpgrade)
		return
	}

	realtime.RegisterClient(user.ID, conn)
	log.Printf("WebSocket client connected for user %s", user.ID)

	go func() {
		defer func() {
			realtime.UnregisterClient(user.ID, conn)
			conn.Close()
		}()
		// Drain control frames; the feed is one-way.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
