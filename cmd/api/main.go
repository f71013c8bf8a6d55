package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/wayfinder/internal/adapters/backend"
	"github.com/zatekoja/wayfinder/internal/adapters/cache"
	"github.com/zatekoja/wayfinder/internal/adapters/events"
	"github.com/zatekoja/wayfinder/internal/adapters/providers/directions"
	"github.com/zatekoja/wayfinder/internal/adapters/providers/placesearch"
	"github.com/zatekoja/wayfinder/internal/adapters/widget"
	"github.com/zatekoja/wayfinder/internal/api/handlers"
	"github.com/zatekoja/wayfinder/internal/api/middleware"
	"github.com/zatekoja/wayfinder/internal/api/routes"
	"github.com/zatekoja/wayfinder/internal/application/services"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/domain/repositories"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/graphqlapi"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/redis"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
	"github.com/zatekoja/wayfinder/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Redis backs the route/search cache and fans render commands out to
	// stream connections; without it both stay in process.
	var (
		cacheProvider providers.CacheProvider = cache.NewMemoryAdapter()
		eventBus      providers.EventBus      = events.NewMemoryEventBus()
		healthDeps                            = map[string]handlers.Pinger{}
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient, "wayfinder:")
		eventBus = events.NewRedisEventBus(redisClient)
		healthDeps["redis"] = redisClient
	}

	var tsClient *typesense.Client
	if cfg.Typesense.Enabled || cfg.PlaceSearch.Provider == "typesense" {
		tsClient, err = typesense.NewClient(&cfg.Typesense)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Typesense client")
		}
		if err := tsClient.InitSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Typesense schema")
		}
	}

	placeProvider, err := placesearch.NewPlaceSearchProvider(cfg.PlaceSearch.Provider, cfg.Kakao.RestAPIKey, cfg.Kakao.LocalBaseURL, tsClient)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize place search provider")
	}

	breaker := directions.DefaultBreakerConfig()
	directionsProvider := directions.NewDirectionsProvider(directions.ProviderConfig{
		Provider: cfg.Kakao.DirectionsProvider,
		APIKey:   cfg.Kakao.RestAPIKey,
		BaseURL:  cfg.Kakao.DirectionsBaseURL,
		Breaker:  breaker,
	}, cacheProvider, metrics)

	var (
		savedPlaces repositories.SavedPlaceRepository
		translator  providers.TranslationProvider
	)
	if cfg.Backend.GraphQLURL != "" {
		gqlBackend := backend.NewGraphQLBackend(graphqlapi.NewClient(cfg.Backend.GraphQLURL))
		savedPlaces = gqlBackend
		translator = gqlBackend
		log.Info().Str("url", cfg.Backend.GraphQLURL).Msg("GraphQL backend configured")
	}

	searchCfg := services.DefaultPlaceSearchConfig()
	searchCfg.MaxPages = cfg.PlaceSearch.MaxPages
	searchCfg.CacheTTLSeconds = cfg.PlaceSearch.CacheTTLSeconds
	searchCfg.RatePerSecond = cfg.PlaceSearch.RatePerSecond
	searchCfg.Burst = cfg.PlaceSearch.Burst
	searchCfg.TranslateTo = cfg.Backend.TranslateTo
	searchService := services.NewPlaceSearchService(placeProvider, savedPlaces, translator, cacheProvider, metrics, searchCfg)

	registry := services.NewSessionRegistry(func(sessionID string) services.MapSessionDeps {
		return services.MapSessionDeps{
			Widget:            widget.NewStreamWidget(sessionID, eventBus),
			List:              widget.NewStreamListView(sessionID, eventBus),
			Directions:        directionsProvider,
			Search:            searchService,
			Metrics:           metrics,
			PageSize:          cfg.Session.PageSize,
			HighlightDuration: cfg.Session.HighlightDuration,
			RouteTimeout:      cfg.Session.RouteTimeout,
		}
	}, metrics, cfg.Session.IdleTTL)

	registryDone := make(chan struct{})
	go func() {
		defer close(registryDone)
		registry.Run(ctx, cfg.Session.SweepInterval)
	}()

	sessionHandler := handlers.NewSessionHandler(registry)
	sseHandler := handlers.NewSSEHandler(eventBus, registry)
	healthHandler := handlers.NewHealthHandler(registry.Len, sseHandler.GetClientCount, healthDeps)

	router := routes.NewRouter(
		sessionHandler,
		sseHandler,
		healthHandler,
		middleware.ParseAllowedOrigins(cfg.Server.AllowedOrigins),
		metrics,
	)

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// No write timeout: session streams are long-lived
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	<-registryDone
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	log.Info().Msg("Server stopped")
}
