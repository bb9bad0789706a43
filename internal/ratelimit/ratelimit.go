package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limiter bounds outbound Jikan calls under two independent windows,
// by default 3 requests per second and 60 per minute. A call is admitted
// only when both buckets hold a token; refill is continuous, so effective
// throughput never exceeds the stricter of the two rates. These are
// token buckets, not sliding windows: a full bucket plus refill lets a
// burst straddling a window boundary briefly exceed the nominal
// per-window count, same as the provider's own interval-refill
// accounting.
type Limiter struct {
	log    zerolog.Logger
	second *rate.Limiter
	minute *rate.Limiter
}

// New creates a limiter admitting perSecond calls per second and
// perMinute calls per minute. Non-positive values disable that window.
func New(log zerolog.Logger, perSecond, perMinute int) *Limiter {
	l := &Limiter{
		log: log.With().Str("module", "ratelimit").Logger(),
	}

	if perSecond > 0 {
		l.second = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
	if perMinute > 0 {
		l.minute = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}

	return l
}

// Acquire blocks until one token is available in both windows, then
// debits one from each. Returns early only when ctx is done. The minute
// bucket is waited on first: it is the stricter constraint over time, and
// holding its token while waiting on the second bucket costs at most a
// fraction of a second of minute-window capacity.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l.minute != nil {
		if err := l.minute.Wait(ctx); err != nil {
			return err
		}
	}
	if l.second != nil {
		if err := l.second.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// TryAcquire reports whether a call is admissible right now without
// waiting, debiting both windows when it is. A token taken from the
// minute bucket is returned if the second bucket refuses.
func (l *Limiter) TryAcquire() bool {
	if l.minute != nil {
		r := l.minute.Reserve()
		if !r.OK() || r.Delay() > 0 {
			r.Cancel()
			return false
		}
		if l.second != nil && !l.second.Allow() {
			r.Cancel()
			return false
		}
		return true
	}

	if l.second != nil {
		return l.second.Allow()
	}
	return true
}
