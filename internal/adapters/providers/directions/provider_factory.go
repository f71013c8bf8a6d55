package directions

import (
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
)

// ProviderConfig configures the directions provider.
type ProviderConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Breaker  BreakerConfig
}

// NewDirectionsProvider returns the Kakao provider behind a circuit breaker,
// or the mock provider when no key is configured or "mock" is requested.
func NewDirectionsProvider(cfg ProviderConfig, cache providers.CacheProvider, metrics *observability.Metrics) providers.DirectionsProvider {
	if cfg.Provider == "mock" || cfg.APIKey == "" {
		return NewMockDirectionsProvider()
	}
	kakao := NewKakaoDirectionsProviderWithOptions(cfg.APIKey, cache, metrics, cfg.BaseURL, nil)
	return NewBreakerProvider(kakao, cfg.Breaker)
}
