// Package ratelimit throttles the documents a stream hands to a query.
package ratelimit

import (
	"context"
	"iter"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or negative limit for no rate limiting.
func New(documentsPerSecond float64) *Limiter {
	if documentsPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// burst of 1: the first document passes immediately
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(documentsPerSecond), 1),
	}
}

func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Limit returns 0 when unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

// Throttle paces seq to the limiter. A cancelled ctx ends the sequence with
// the context error.
func Throttle[T any](ctx context.Context, l *Limiter, seq iter.Seq2[T, error]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for v, err := range seq {
			if err == nil {
				if werr := l.Wait(ctx); werr != nil {
					var zero T
					yield(zero, werr)
					return
				}
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
