package availability

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ErrNoWindow means no availability window covers the requested range.
var ErrNoWindow = errors.New("no availability window for product")

// Query is derived from a candidate booking line; it is never persisted.
type Query struct {
	ProductID string
	StartDate string
	EndDate   string
	Persons   int
}

// CapacitySource reports remaining capacity covering [startDate, endDate]
// for a product.
type CapacitySource interface {
	RemainingCapacity(ctx context.Context, productID, startDate, endDate string) (int, error)
}

// Checker decides whether a booking can be accepted. With Strict off it
// fails open: an unconfigured or unreachable source never blocks a
// booking, it only loses the capacity guarantee.
type Checker struct {
	source CapacitySource
	strict bool
	logger *zap.Logger
}

func NewChecker(source CapacitySource, strict bool, logger *zap.Logger) *Checker {
	return &Checker{
		source: source,
		strict: strict,
		logger: logger,
	}
}

// Check returns false only when a reachable source reports capacity below
// the requested party size, or when Strict is on and the source could not
// answer.
func (c *Checker) Check(ctx context.Context, q Query) bool {
	if c.source == nil {
		if c.strict {
			c.logger.Warn("availability source not configured, strict mode rejects booking",
				zap.String("product_id", q.ProductID))
			return false
		}
		return true
	}

	capacity, err := c.source.RemainingCapacity(ctx, q.ProductID, q.StartDate, q.EndDate)
	if err != nil {
		if errors.Is(err, ErrNoWindow) {
			// Products without capacity windows are not capacity-managed.
			if c.strict {
				return false
			}
			return true
		}
		c.logger.Error("availability check failed",
			zap.String("product_id", q.ProductID),
			zap.Error(err))
		return !c.strict
	}

	if q.Persons > 0 && capacity < q.Persons {
		return false
	}

	return true
}
