package services

import "errors"

// Precondition and lookup failures surfaced by the order services. Handlers
// map these onto 4xx responses; anything else is treated as a 500.
var (
	ErrOrderAlreadyReceived = errors.New("order is already received")
	ErrAnotherOrderReceived = errors.New("another order is already received")
	ErrOrderNotReceived     = errors.New("order is not received")
	ErrOrderAlreadyCleared  = errors.New("order is already cleared")
	ErrUserNotFound         = errors.New("user not found")

	// ErrNoMatchingTier should be unreachable while the tier table covers
	// (0, +Inf); seeing it means the injected configuration is broken.
	ErrNoMatchingTier = errors.New("no tier matches the drawn difficulty")

	// ErrNoEligibleProblem means the drawn tier has no problem the user is
	// not already holding an order for. Callers simply re-draw later.
	ErrNoEligibleProblem = errors.New("no eligible problem in the drawn tier")
)
