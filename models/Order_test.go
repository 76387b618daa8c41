package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus(t *testing.T) {
	received := int64(1_600_000_000_000)
	cleared := received + 60000

	tests := []struct {
		name   string
		order  Order
		status string
		active bool
	}{
		{"unreceived", Order{}, OrderStatusUnreceived, false},
		{"received", Order{ReceivedDatetime: &received}, OrderStatusReceived, true},
		{"cleared", Order{ReceivedDatetime: &received, ClearedDatetime: &cleared}, OrderStatusCleared, false},
		{"failed", Order{ReceivedDatetime: &received, IsFailed: true}, OrderStatusFailed, false},
		{"force-failed before receive", Order{IsFailed: true}, OrderStatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.order.Status())
			assert.Equal(t, tt.active, tt.order.Active())
		})
	}
}
