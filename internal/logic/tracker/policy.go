package tracker

import (
	"time"

	"github.com/cenkalti/backoff/v4"
)

const DefaultPollInterval = time.Second

// RetryPolicy decides how long to wait before each poll. The zero value
// polls every second until cancelled.
type RetryPolicy struct {
	Interval time.Duration
	// MaxAttempts caps the number of polls; 0 means unbounded.
	MaxAttempts int
	// Multiplier > 1 grows the interval after every poll, up to MaxInterval.
	Multiplier  float64
	MaxInterval time.Duration
}

// FixedPolicy polls every interval without limit.
func FixedPolicy(interval time.Duration) RetryPolicy {
	return RetryPolicy{Interval: interval}
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Interval <= 0 {
		p.Interval = DefaultPollInterval
	}
	if p.MaxInterval < p.Interval {
		p.MaxInterval = p.Interval
	}
	return p
}

// newBackOff returns a fresh schedule; backoff values are stateful and
// never shared between waits.
func (p RetryPolicy) newBackOff() backoff.BackOff {
	p = p.withDefaults()

	var b backoff.BackOff
	if p.Multiplier > 1 {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = p.Interval
		exp.Multiplier = p.Multiplier
		exp.MaxInterval = p.MaxInterval
		exp.RandomizationFactor = 0
		exp.MaxElapsedTime = 0
		exp.Reset()
		b = exp
	} else {
		b = backoff.NewConstantBackOff(p.Interval)
	}

	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts))
	}
	return b
}
