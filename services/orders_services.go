package services

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"api/atcoder"
	"api/config"
	"api/metrics"
	"api/models"
	"api/utils"

	"gorm.io/gorm"
)

// terminalSentinel stands in for the null ClearedDatetime of orders that
// were never resolved; COALESCE-ing to it keeps the terminal-order sort
// total. In practice every terminal order has a ResolvedDatetime.
const terminalSentinel = int64(math.MaxInt64)

// OrderService implements the order lifecycle, the rating engine and the
// stochastic problem assignment. The clock and the uniform source are
// injected so tests can pin time and force draws.
type OrderService struct {
	db        *gorm.DB
	problems  *ProblemService
	fetchLogs *FetchLogService
	cfg       *config.GameConfig
	baseURL   string
	rand      utils.Source
	now       func() time.Time
}

func NewOrderService(db *gorm.DB, problems *ProblemService, fetchLogs *FetchLogService, cfg *config.GameConfig, baseURL string) *OrderService {
	return &OrderService{
		db:        db,
		problems:  problems,
		fetchLogs: fetchLogs,
		cfg:       cfg,
		baseURL:   baseURL,
		rand:      utils.DefaultSource(),
		now:       time.Now,
	}
}

// GetOrder loads one of the user's orders by id.
func (s *OrderService) GetOrder(user *models.User, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns all of the user's orders, problems preloaded, in a
// stable order.
func (s *OrderService) ListOrders(user *models.User) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Where("user_id = ?", user.ID).
		Preload("Problem").
		Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// ReceivedOrder returns the user's active order (received, not yet
// terminal) or nil. The schema invariant is that there is at most one.
func (s *OrderService) ReceivedOrder(user *models.User) (*models.Order, error) {
	return receivedOrderTx(s.db, user.ID)
}

func receivedOrderTx(tx *gorm.DB, userID string) (*models.Order, error) {
	var order models.Order
	err := tx.
		Where("user_id = ? AND received_datetime IS NOT NULL AND cleared_datetime IS NULL AND is_failed = ?", userID, false).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// UnreceivedOrders returns the orders the user holds but has not accepted
// yet.
func (s *OrderService) UnreceivedOrders(user *models.User) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Where("user_id = ? AND received_datetime IS NULL", user.ID).Find(&orders).Error
	return orders, err
}

// FailedOrClearedOrders returns the user's terminal orders, most recently
// resolved first, problems preloaded. Ties (and terminal rows predating the
// resolved column) fall back to the sentinel and the primary key so the
// order stays stable across stores.
func (s *OrderService) FailedOrClearedOrders(user *models.User) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.
		Where("user_id = ? AND (cleared_datetime IS NOT NULL OR is_failed = ?)", user.ID, true).
		Preload("Problem").
		Order(fmt.Sprintf("COALESCE(resolved_datetime, cleared_datetime, %d) DESC, id DESC", terminalSentinel)).
		Find(&orders).Error
	return orders, err
}

// CurrentRate computes the user's rating: a weighted average of the
// difficulty of terminally resolved orders, where the most recently
// resolved weighs 1 and each step into the past decays by RateWeight.
// Failed orders contribute zero difficulty but still occupy a position.
// Users with no terminal orders, or whose average falls below the floor,
// get MinRate.
func (s *OrderService) CurrentRate(user *models.User) (int, error) {
	orders, err := s.FailedOrClearedOrders(user)
	if err != nil {
		return 0, err
	}

	weight := s.cfg.RateWeight
	denominator := (math.Pow(weight, float64(len(orders))) - 1) / (weight - 1)
	numerator := 0.0
	for i, order := range orders {
		if order.IsFailed {
			continue
		}
		if order.Problem == nil {
			// The catalog was replaced since this order was created;
			// without a difficulty the order cannot contribute.
			continue
		}
		numerator += float64(order.Problem.Difficulty) * math.Pow(weight, float64(i))
	}

	if denominator == 0 || numerator/denominator <= float64(s.cfg.MinRate) {
		return s.cfg.MinRate, nil
	}
	return int(math.Floor(numerator / denominator)), nil
}

// SuitableTier draws a target difficulty lognormally around the user's
// rating and buckets it into the configured tier table.
func (s *OrderService) SuitableTier(user *models.User) (config.Tier, error) {
	rate, err := s.CurrentRate(user)
	if err != nil {
		return config.Tier{}, err
	}
	drawn := utils.DrawLognormal(s.rand, float64(rate), s.cfg.DifficultyStdDev)
	for _, tier := range s.cfg.Tiers {
		if tier.Lo < drawn && drawn <= tier.Hi {
			return tier, nil
		}
	}
	return config.Tier{}, ErrNoMatchingTier
}

// SuitableProblem draws a tier and picks, uniformly at random, a problem in
// it that the user is not already holding an order for (neither unreceived
// nor active).
func (s *OrderService) SuitableProblem(user *models.User) (*models.Problem, error) {
	tier, err := s.SuitableTier(user)
	if err != nil {
		return nil, err
	}
	problems, err := s.problems.QueryByDifficultyRange(tier.Lo, tier.Hi)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]bool)
	unreceived, err := s.UnreceivedOrders(user)
	if err != nil {
		return nil, err
	}
	for _, order := range unreceived {
		taken[order.ProblemID] = true
	}
	active, err := s.ReceivedOrder(user)
	if err != nil {
		return nil, err
	}
	if active != nil {
		taken[active.ProblemID] = true
	}

	candidates := make([]models.Problem, 0, len(problems))
	for _, problem := range problems {
		if !taken[problem.ID] {
			candidates = append(candidates, problem)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoEligibleProblem
	}
	return &candidates[int(math.Floor(s.rand()*float64(len(candidates))))], nil
}

// CreateOrderWithProblem persists a new unreceived order for the given
// problem, with both revenues drawn lognormally around its difficulty.
func (s *OrderService) CreateOrderWithProblem(user *models.User, problem *models.Problem) (*models.Order, error) {
	order := models.Order{
		UserID:          user.ID,
		ProblemID:       problem.ID,
		FixedRevenue:    utils.DrawLognormal(s.rand, float64(problem.Difficulty), s.cfg.RevenueStdDev),
		VariableRevenue: utils.DrawLognormal(s.rand, float64(problem.Difficulty), s.cfg.RevenueStdDev),
	}
	if err := s.db.Create(&order).Error; err != nil {
		return nil, err
	}
	order.Problem = problem
	return &order, nil
}

// CreateOrder assigns a suitable problem and persists a new unreceived
// order for it.
func (s *OrderService) CreateOrder(user *models.User) (*models.Order, error) {
	problem, err := s.SuitableProblem(user)
	if err != nil {
		return nil, err
	}
	return s.CreateOrderWithProblem(user, problem)
}

// Receive accepts an unreceived order with the given stake. The no-active-
// order check and the write run in one transaction so two concurrent
// receives for the same user cannot both succeed.
func (s *OrderService) Receive(order *models.Order, investment float64) (*models.Order, error) {
	if order.ReceivedDatetime != nil {
		return nil, ErrOrderAlreadyReceived
	}

	nowMs := s.now().UnixMilli()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", order.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		active, err := receivedOrderTx(tx, order.UserID)
		if err != nil {
			return err
		}
		if active != nil {
			return ErrAnotherOrderReceived
		}
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"received_datetime": nowMs,
				"investment":        investment,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	order.ReceivedDatetime = &nowMs
	order.Investment = &investment
	metrics.OrderTransitions.WithLabelValues("received").Inc()
	return order, nil
}

// IsCleared asks the judge whether the order's problem was accepted within
// the clearing window. The submissions feed is fetched with interval 0:
// always attempted, every attempt logged.
func (s *OrderService) IsCleared(order *models.Order) (bool, error) {
	if order.ReceivedDatetime == nil {
		return false, ErrOrderNotReceived
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", order.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	received := *order.ReceivedDatetime
	endpoint := atcoder.SubmissionsURL(s.baseURL, user.Name, received/1000)
	resp, err := s.fetchLogs.FetchIfAllowed(endpoint, 0)
	if err != nil {
		return false, err
	}
	if resp == nil {
		// Same-millisecond re-poll; treat as still pending.
		return false, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("submissions fetch returned %s", resp.Status)
	}

	var submissions []atcoder.Submission
	if err := atcoder.DecodeJSON(resp, &submissions); err != nil {
		return false, err
	}

	deadline := received + s.cfg.TimeLimit.Milliseconds()
	for _, submission := range submissions {
		if submission.Result == atcoder.ResultAccepted &&
			submission.ProblemID == order.ProblemID &&
			submission.EpochSecond*1000 <= deadline {
			return true, nil
		}
	}
	return false, nil
}

// IsFailed reports whether the clearing window has elapsed without a
// qualifying accepted submission.
func (s *OrderService) IsFailed(order *models.Order) (bool, error) {
	if order.ReceivedDatetime == nil {
		return false, ErrOrderNotReceived
	}
	if order.ClearedDatetime != nil {
		return false, ErrOrderAlreadyCleared
	}
	cleared, err := s.IsCleared(order)
	if err != nil {
		return false, err
	}
	return !cleared && *order.ReceivedDatetime+s.cfg.TimeLimit.Milliseconds() < s.now().UnixMilli(), nil
}

// UpdateStatus advances the state machine one step: cleared if the judge
// confirms a qualifying submission, failed if the window elapsed without
// one, otherwise a no-op. It is meant to be polled by an external
// scheduler; this package owns no loop. The returned order reflects the
// persisted state.
func (s *OrderService) UpdateStatus(order *models.Order) (*models.Order, error) {
	if order.ReceivedDatetime == nil {
		return nil, ErrOrderNotReceived
	}
	if order.ClearedDatetime != nil {
		return nil, ErrOrderAlreadyCleared
	}

	cleared, err := s.IsCleared(order)
	if err != nil {
		return nil, err
	}

	nowMs := s.now().UnixMilli()
	if cleared {
		err := s.db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"cleared_datetime":  nowMs,
				"resolved_datetime": nowMs,
			}).Error
		if err != nil {
			return nil, err
		}
		order.ClearedDatetime = &nowMs
		order.ResolvedDatetime = &nowMs
		metrics.OrderTransitions.WithLabelValues("cleared").Inc()
		return order, nil
	}

	if *order.ReceivedDatetime+s.cfg.TimeLimit.Milliseconds() < nowMs {
		err := s.db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"is_failed":         true,
				"resolved_datetime": nowMs,
			}).Error
		if err != nil {
			return nil, err
		}
		order.IsFailed = true
		order.ResolvedDatetime = &nowMs
		metrics.OrderTransitions.WithLabelValues("failed").Inc()
		return order, nil
	}

	// Still within the window and not cleared yet.
	return order, nil
}

// ForceFail marks the order failed unconditionally. Administrative
// override; no preconditions.
func (s *OrderService) ForceFail(order *models.Order) (*models.Order, error) {
	nowMs := s.now().UnixMilli()
	err := s.db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"is_failed":         true,
			"resolved_datetime": nowMs,
		}).Error
	if err != nil {
		return nil, err
	}
	order.IsFailed = true
	order.ResolvedDatetime = &nowMs
	metrics.OrderTransitions.WithLabelValues("force_failed").Inc()
	return order, nil
}

// TotalProfit folds every order of the user into a single balance delta:
// received orders cost their investment, cleared orders pay the fixed
// revenue plus a variable part that decays linearly to zero at the time
// limit. Orders never received contribute nothing.
func (s *OrderService) TotalProfit(user *models.User) (float64, error) {
	var orders []models.Order
	if err := s.db.Where("user_id = ?", user.ID).Find(&orders).Error; err != nil {
		return 0, err
	}

	limit := float64(s.cfg.TimeLimit.Milliseconds())
	total := 0.0
	for _, order := range orders {
		if order.ReceivedDatetime == nil {
			continue
		}
		if order.Investment != nil {
			total -= *order.Investment
		}
		if order.ClearedDatetime != nil {
			elapsed := float64(*order.ClearedDatetime - *order.ReceivedDatetime)
			total += order.FixedRevenue + order.VariableRevenue*0.001*(limit-elapsed)
		}
	}
	return total, nil
}
