package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order statuses as reported over the API and the websocket feed.
const (
	OrderStatusUnreceived = "unreceived"
	OrderStatusReceived   = "received"
	OrderStatusCleared    = "cleared"
	OrderStatusFailed     = "failed"
)

// Order is a problem-solving contract: the user stakes an investment,
// and earns the drawn revenues by getting the problem accepted on the
// judge within the time limit.
//
// Lifecycle: unreceived (both datetimes nil) -> received (ReceivedDatetime
// set) -> cleared (ClearedDatetime set) or failed (IsFailed). Cleared and
// failed are terminal and mutually exclusive. ResolvedDatetime is set on
// either terminal transition and is what rating queries order by, so that
// failed orders, whose ClearedDatetime stays nil, still sort
// chronologically. All datetimes are unix milliseconds.
type Order struct {
	ID               string   `gorm:"type:uuid;primary_key" json:"id"`
	UserID           string   `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	ProblemID        string   `gorm:"type:varchar(255);not null;column:problem_id" json:"problem_id"`
	FixedRevenue     float64  `gorm:"not null;column:fixed_revenue" json:"fixed_revenue"`
	VariableRevenue  float64  `gorm:"not null;column:variable_revenue" json:"variable_revenue"`
	Investment       *float64 `gorm:"column:investment" json:"investment"`
	ReceivedDatetime *int64   `gorm:"column:received_datetime" json:"received_datetime"`
	ClearedDatetime  *int64   `gorm:"column:cleared_datetime" json:"cleared_datetime"`
	ResolvedDatetime *int64   `gorm:"column:resolved_datetime" json:"resolved_datetime"`
	IsFailed         bool     `gorm:"not null;default:false;column:is_failed" json:"is_failed"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Problem *Problem `gorm:"foreignKey:ProblemID" json:"problem,omitempty"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Status reports the lifecycle state the order is currently in.
func (o *Order) Status() string {
	switch {
	case o.IsFailed:
		return OrderStatusFailed
	case o.ClearedDatetime != nil:
		return OrderStatusCleared
	case o.ReceivedDatetime != nil:
		return OrderStatusReceived
	default:
		return OrderStatusUnreceived
	}
}

// Active reports whether this is the user's in-flight order: received but
// not yet terminal. A user may have at most one active order.
func (o *Order) Active() bool {
	return o.ReceivedDatetime != nil && o.ClearedDatetime == nil && !o.IsFailed
}
