package tokens

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// SpendLimiter paces token spend against a tokens-per-minute budget.
// A zero or negative budget means unlimited: Wait returns immediately.
type SpendLimiter struct {
	limiter *rate.Limiter
}

// NewSpendLimiter creates a limiter allowing tokensPerMinute tokens of
// sustained spend, with a burst of one minute's worth.
func NewSpendLimiter(tokensPerMinute int) *SpendLimiter {
	if tokensPerMinute <= 0 {
		return &SpendLimiter{}
	}
	perSecond := rate.Limit(float64(tokensPerMinute) / 60.0)
	return &SpendLimiter{
		limiter: rate.NewLimiter(perSecond, tokensPerMinute),
	}
}

// Wait blocks until cost tokens of budget are available or ctx is
// done. A cost larger than one minute's budget can never be satisfied
// and is rejected outright.
func (s *SpendLimiter) Wait(ctx context.Context, cost int) error {
	if s.limiter == nil || cost <= 0 {
		return nil
	}
	if cost > s.limiter.Burst() {
		return fmt.Errorf("cost %d exceeds per-minute token budget %d", cost, s.limiter.Burst())
	}
	if err := s.limiter.WaitN(ctx, cost); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}
	return nil
}

// Allow reports whether cost tokens can be spent right now, consuming
// them if so.
func (s *SpendLimiter) Allow(cost int) bool {
	if s.limiter == nil || cost <= 0 {
		return true
	}
	return s.limiter.AllowN(time.Now(), cost)
}
