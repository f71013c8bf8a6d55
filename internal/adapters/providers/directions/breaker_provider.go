package directions

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

// BreakerConfig configures the circuit breaker around the directions provider
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the breaker defaults
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "directions",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerProvider stops calling the upstream provider after repeated
// transport failures. Provider-reported route failures do not trip it.
type BreakerProvider struct {
	next    providers.DirectionsProvider
	breaker *gobreaker.CircuitBreaker[*entities.RouteResult]
}

var _ providers.DirectionsProvider = (*BreakerProvider)(nil)

// NewBreakerProvider wraps next with a circuit breaker
func NewBreakerProvider(next providers.DirectionsProvider, cfg BreakerConfig) *BreakerProvider {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			var failure *entities.RouteFailure
			return err == nil || errors.As(err, &failure)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Directions circuit breaker state changed")
		},
	}
	return &BreakerProvider{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[*entities.RouteResult](settings),
	}
}

// Directions calls the wrapped provider unless the breaker is open.
func (p *BreakerProvider) Directions(ctx context.Context, origin, destination entities.Coordinates) (*entities.RouteResult, error) {
	return p.breaker.Execute(func() (*entities.RouteResult, error) {
		return p.next.Directions(ctx, origin, destination)
	})
}

// State returns the breaker state for health reporting.
func (p *BreakerProvider) State() string {
	return p.breaker.State().String()
}
