// Package breaker builds the circuit breakers that guard outbound
// deliveries (web push, email). When a provider keeps failing the breaker
// opens and calls fail fast instead of stalling every approval request.
package breaker

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Breaker is the part of *gobreaker.CircuitBreaker the senders use.
type Breaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
}

// New returns a breaker that opens after failures consecutive errors and
// half-opens again after timeout.
func New(name string, failures uint32, timeout time.Duration) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("component", "breaker").Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).Msg("circuit state changed")
		},
	})
}

// Default is New(name, 3, 60s).
func Default(name string) *gobreaker.CircuitBreaker {
	return New(name, 3, 60*time.Second)
}
