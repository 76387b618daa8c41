// Package jobs holds the background schedulers. The order services expose
// pure transition functions; the loops that drive them live here.
package jobs

import (
	"context"
	"log"
	"time"

	"api/models"
	"api/realtime"
	"api/services"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// OrderPoller periodically advances every active order through
// UpdateStatus so orders resolve even when their owner never polls. Each
// tick is best-effort: a judge outage just leaves orders pending until the
// next tick.
type OrderPoller struct {
	db       *gorm.DB
	svc      *services.OrderService
	cache    *redis.Client
	interval time.Duration
	stop     chan struct{}
}

func NewOrderPoller(db *gorm.DB, svc *services.OrderService, cache *redis.Client, interval time.Duration) *OrderPoller {
	return &OrderPoller{
		db:       db,
		svc:      svc,
		cache:    cache,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (p *OrderPoller) Start() {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.tick()
			case <-p.stop:
				return
			}
		}
	}()
}

func (p *OrderPoller) Stop() {
	close(p.stop)
}

func (p *OrderPoller) tick() {
	var active []models.Order
	err := p.db.
		Where("received_datetime IS NOT NULL AND cleared_datetime IS NULL AND is_failed = ?", false).
		Find(&active).Error
	if err != nil {
		log.Printf("order poller: failed to list active orders: %v", err)
		return
	}

	for i := range active {
		order := &active[i]
		before := order.Status()
		updated, err := p.svc.UpdateStatus(order)
		if err != nil {
			log.Printf("order poller: failed to update order %s: %v", order.ID, err)
			continue
		}
		if after := updated.Status(); after != before {
			log.Printf("order poller: order %s -> %s", updated.ID, after)
			realtime.BroadcastOrderUpdate(realtime.OrderUpdate{Order: *updated, UpdateType: after})
			if err := p.cache.Del(context.Background(), "user_dashboard:"+updated.UserID).Err(); err != nil {
				log.Printf("order poller: failed to invalidate dashboard cache: %v", err)
			}
		}
	}
}
