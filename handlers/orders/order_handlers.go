package orders

import (
	"errors"
	"log"
	"net/http"

	"api/middleware"
	"api/models"
	"api/realtime"
	"api/services"
	"api/utils/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func toOrderResponse(order *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:               order.ID,
		ProblemID:        order.ProblemID,
		Status:           order.Status(),
		FixedRevenue:     order.FixedRevenue,
		VariableRevenue:  order.VariableRevenue,
		Investment:       order.Investment,
		ReceivedDatetime: order.ReceivedDatetime,
		ClearedDatetime:  order.ClearedDatetime,
		IsFailed:         order.IsFailed,
	}
	if order.Problem != nil {
		resp.ProblemTitle = order.Problem.Title
		resp.Difficulty = order.Problem.Difficulty
	}
	return resp
}

// loadOwnOrder fetches the order and enforces ownership. Writes the error
// response itself on failure.
func loadOwnOrder(c *gin.Context, user *models.User) (*models.Order, bool) {
	order, err := svc.GetOrder(user, c.Param("orderID"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, ErrOrderNotFound)
		} else {
			log.Printf("Error fetching order: %v", err)
			response.Error(c, http.StatusInternalServerError, ErrFetchOrdersFailed)
		}
		return nil, false
	}
	return order, true
}

// GetOrders lists the authenticated user's orders
// @Summary List my orders
// @Description Get all orders of the authenticated user
// @Tags Orders
// @Accept json
// @Produce json
// @Success 200 {array} OrderResponse
// @Failure 401 {object} map[string]string
// @Router /orders [get]
// @Security Bearer
func GetOrders(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	orders, err := svc.ListOrders(user)
	if err != nil {
		log.Printf("Error fetching orders: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrFetchOrdersFailed)
		return
	}

	resp := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateOrder draws a new unreceived order for the authenticated user
// @Summary Create an order
// @Description Assign a stochastically suitable problem and draw its revenues
// @Tags Orders
// @Accept json
// @Produce json
// @Success 201 {object} OrderResponse
// @Failure 401 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders [post]
// @Security Bearer
func CreateOrder(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	order, err := svc.CreateOrder(user)
	if err != nil {
		if errors.Is(err, services.ErrNoEligibleProblem) {
			response.Error(c, http.StatusConflict, ErrNoEligibleProblem)
			return
		}
		log.Printf("Error creating order: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrCreateOrderFailed)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

// GetOrder fetches one of the authenticated user's orders
// @Summary Get an order
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} map[string]string
// @Router /orders/{orderID} [get]
// @Security Bearer
func GetOrder(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	order, ok := loadOwnOrder(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// ReceiveOrder accepts an order with an investment
// @Summary Receive an order
// @Description Accept an unreceived order, staking the given investment. Fails if the user already has an active order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Param request body ReceiveOrderRequest true "Investment stake"
// @Success 200 {object} OrderResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /orders/{orderID}/receive [post]
// @Security Bearer
func ReceiveOrder(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}

	var request ReceiveOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		response.Error(c, http.StatusBadRequest, ErrInvalidInvestment)
		return
	}

	order, ok := loadOwnOrder(c, user)
	if !ok {
		return
	}

	updated, err := svc.Receive(order, request.Investment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderAlreadyReceived), errors.Is(err, services.ErrAnotherOrderReceived):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			log.Printf("Error receiving order: %v", err)
			response.Error(c, http.StatusInternalServerError, ErrReceiveFailed)
		}
		return
	}

	invalidateDashboard(user)
	realtime.BroadcastOrderUpdate(realtime.OrderUpdate{Order: *updated, UpdateType: models.OrderStatusReceived})
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

// PollOrder advances the order state machine one step
// @Summary Poll an order's status
// @Description Run the clear/fail transition against the judge's submission feed and return the (possibly updated) order
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /orders/{orderID}/poll [post]
// @Security Bearer
func PollOrder(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	order, ok := loadOwnOrder(c, user)
	if !ok {
		return
	}

	before := order.Status()
	updated, err := svc.UpdateStatus(order)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotReceived), errors.Is(err, services.ErrOrderAlreadyCleared):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			log.Printf("Error polling order: %v", err)
			response.Error(c, http.StatusBadGateway, ErrJudgeUnavailable)
		}
		return
	}

	if after := updated.Status(); after != before {
		invalidateDashboard(user)
		realtime.BroadcastOrderUpdate(realtime.OrderUpdate{Order: *updated, UpdateType: after})
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

// ForceFailOrder marks an order failed unconditionally
// @Summary Force-fail an order
// @Description Administrative override: mark the order failed regardless of its state
// @Tags Orders
// @Accept json
// @Produce json
// @Param orderID path string true "Order ID"
// @Success 200 {object} OrderResponse
// @Failure 404 {object} map[string]string
// @Router /orders/{orderID}/force-fail [post]
// @Security Bearer
func ForceFailOrder(c *gin.Context) {
	user, err := middleware.GetUserFromRequest(c)
	if err != nil {
		return
	}
	order, ok := loadOwnOrder(c, user)
	if !ok {
		return
	}

	updated, err := svc.ForceFail(order)
	if err != nil {
		log.Printf("Error force-failing order: %v", err)
		response.Error(c, http.StatusInternalServerError, ErrForceFailFailed)
		return
	}

	invalidateDashboard(user)
	realtime.BroadcastOrderUpdate(realtime.OrderUpdate{Order: *updated, UpdateType: "force_failed"})
	c.JSON(http.StatusOK, toOrderResponse(updated))
}
