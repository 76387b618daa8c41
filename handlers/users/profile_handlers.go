package users

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"api/database"
	"api/middleware"
	"api/utils/response"

	"github.com/gin-gonic/gin"
)

// Constants for error messages and cache settings
const (
	ErrDashboardFailed     = "Failed to build dashboard"
	DashboardCacheKey      = "user_dashboard:"
	DashboardCacheDuration = time.Minute
)

// DashboardResponse is the player's standing at a glance
type DashboardResponse struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Rate        int             `json:"rate"`
	TotalProfit float64         `json:"total_profit"`
	Balance     float64         `json:"balance"`
	ActiveOrder json.RawMessage `json:"active_order"` // null when none
}

// GetDashboard returns the user's rating, profit, balance and active order
// @Summary Get my dashboard
// @Description Current rating, total profit, balance (initial capital + profit) and the active order if any. Cached briefly; invalidated on order transitions.
// @Tags Users
// @Accept json
// @Produce json
// @Success 200 {object} DashboardResponse
// @Failure 401 {object} map[string]string
// @Router /user/dashboard [get]
// @Security Bearer
func GetDashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	cacheKey := DashboardCacheKey + user.ID
	if cached, err := database.REDIS.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		var dashboard DashboardResponse
		if err := json.Unmarshal([]byte(cached), &dashboard); err == nil {
			c.JSON(http.StatusOK, dashboard)
			return
		}
	}

	rate, err := svc.CurrentRate(user)
	if err != nil {
		log.Printf("Error computing rate: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrDashboardFailed)
		return
	}
	profit, err := svc.TotalProfit(user)
	if err != nil {
		log.Printf("Error computing profit: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrDashboardFailed)
		return
	}
	active, err := svc.ReceivedOrder(user)
	if err != nil {
		log.Printf("Error fetching active order: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrDashboardFailed)
		return
	}

	activeJSON := json.RawMessage("null")
	if active != nil {
		if encoded, err := json.Marshal(active); err == nil {
			activeJSON = encoded
		}
	}

	dashboard := DashboardResponse{
		UserID:      user.ID,
		Name:        user.Name,
		Rate:        rate,
		TotalProfit: profit,
		Balance:     gameConfig.InitialCapital + profit,
		ActiveOrder: activeJSON,
	}

	if encoded, err := json.Marshal(dashboard); err == nil {
		if err := database.REDIS.Set(ctx, cacheKey, string(encoded), DashboardCacheDuration).Err(); err != nil {
			log.Printf("Failed to cache dashboard: %v", err)
		}
	}

	c.JSON(http.StatusOK, dashboard)
}
