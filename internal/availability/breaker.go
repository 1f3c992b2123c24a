package availability

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSource wraps a CapacitySource in a circuit breaker so a down
// catalog backend sheds load quickly instead of timing out every add.
// Tripped calls surface as errors, which the Checker then fails open on.
type BreakerSource struct {
	inner CapacitySource
	cb    *gobreaker.CircuitBreaker[int]
}

func NewBreakerSource(inner CapacitySource) *BreakerSource {
	settings := gobreaker.Settings{
		Name:    "availability",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A missing window is an answer, not a backend failure.
			return err == nil || errors.Is(err, ErrNoWindow)
		},
	}

	return &BreakerSource{
		inner: inner,
		cb:    gobreaker.NewCircuitBreaker[int](settings),
	}
}

func (b *BreakerSource) RemainingCapacity(ctx context.Context, productID, startDate, endDate string) (int, error) {
	return b.cb.Execute(func() (int, error) {
		return b.inner.RemainingCapacity(ctx, productID, startDate, endDate)
	})
}
