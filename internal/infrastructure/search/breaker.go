// Package search guards calls to the full-text index with a circuit breaker so
// a failing index degrades to fast 503s instead of piling up slow requests.
package search

import (
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"bookshelf-backend/pkg/metrics"
)

var ErrIndexUnavailable = errors.New("search index unavailable")

type BreakerConfig struct {
	Name        string
	MaxFailures uint32
	Timeout     time.Duration
}

type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewBreaker opens after MaxFailures consecutive failures and probes again after Timeout.
// m may be nil.
func NewBreaker(cfg BreakerConfig, m *metrics.Metrics) *Breaker {
	b := &Breaker{metrics: m}

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Search index circuit breaker changed state")
			b.observe(to)
		},
	})
	b.observe(gobreaker.StateClosed)

	return b
}

// Execute runs fn through the breaker. A rejected call returns ErrIndexUnavailable.
func (b *Breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrIndexUnavailable
	}
	return err
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) observe(s gobreaker.State) {
	if b.metrics == nil {
		return
	}
	b.metrics.CircuitBreakerState.WithLabelValues(b.cb.Name()).Set(float64(s))
}
