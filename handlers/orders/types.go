package orders

// Constants for error messages
const (
	ErrOrderNotFound     = "Order not found"
	ErrFetchOrdersFailed = "Failed to fetch orders"
	ErrCreateOrderFailed = "Failed to create order"
	ErrNoEligibleProblem = "No eligible problem available right now, try again later"
	ErrReceiveFailed     = "Failed to receive order"
	ErrForceFailFailed   = "Failed to force-fail order"
	ErrExportFailed      = "Failed to export orders"
	ErrJudgeUnavailable  = "The judge is unavailable, try again later"
	ErrWebsocketUpgrade  = "Failed to upgrade connection"
	ErrInvalidInvestment = "Investment must be a positive amount"
)

// ReceiveOrderRequest is the body of POST /orders/:orderID/receive
type ReceiveOrderRequest struct {
	Investment float64 `json:"investment" binding:"required,gt=0"`
}

// OrderResponse decorates an order with its computed lifecycle status
type OrderResponse struct {
	ID               string   `json:"id"`
	ProblemID        string   `json:"problem_id"`
	ProblemTitle     string   `json:"problem_title,omitempty"`
	Difficulty       int      `json:"difficulty,omitempty"`
	Status           string   `json:"status"`
	FixedRevenue     float64  `json:"fixed_revenue"`
	VariableRevenue  float64  `json:"variable_revenue"`
	Investment       *float64 `json:"investment"`
	ReceivedDatetime *int64   `json:"received_datetime"`
	ClearedDatetime  *int64   `json:"cleared_datetime"`
	IsFailed         bool     `json:"is_failed"`
}
