package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/wayfinder/internal/adapters/providers/placesearch"
	"github.com/zatekoja/wayfinder/internal/application/services"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/typesense"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
	"github.com/zatekoja/wayfinder/pkg/config"
)

// indexer copies Kakao keyword search results into the Typesense places
// collection so the API can serve a curated index with PLACE_SEARCH_PROVIDER=typesense.
func main() {
	var reset bool
	var intervalFlag, keywordsFlag string
	flag.BoolVar(&reset, "reset", false, "delete existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.StringVar(&keywordsFlag, "keywords", "", "comma separated search keywords to index")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	observability.InitLogger("wayfinder-indexer", cfg.Env, cfg.LogLevel)

	keywords := splitKeywords(keywordsFlag)
	if len(keywords) == 0 {
		keywords = splitKeywords(os.Getenv("INDEX_KEYWORDS"))
	}
	if len(keywords) == 0 {
		log.Fatal().Msg("No keywords given; use -keywords or INDEX_KEYWORDS")
	}

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}
	var interval time.Duration
	if intervalValue != "" {
		interval, err = time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", intervalValue).Msg("Interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, cfg, keywords, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Reindex complete")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, cfg *config.Config, keywords []string, reset bool) error {
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	if reset {
		if err := tsClient.DropPlaces(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to drop places collection")
		}
	}
	if err := tsClient.InitSchema(ctx); err != nil {
		return err
	}

	source := placesearch.NewKakaoPlaceSearchProviderWithOptions(cfg.Kakao.RestAPIKey, cfg.Kakao.LocalBaseURL, nil)
	searchCfg := services.DefaultPlaceSearchConfig()
	searchCfg.MaxPages = cfg.PlaceSearch.MaxPages
	searchCfg.RatePerSecond = cfg.PlaceSearch.RatePerSecond
	searchCfg.Burst = cfg.PlaceSearch.Burst
	search := services.NewPlaceSearchService(source, nil, nil, nil, nil, searchCfg)
	index := placesearch.NewTypesensePlaceSearchProvider(tsClient)

	total := 0
	for _, keyword := range keywords {
		places, err := search.SearchAll(ctx, keyword)
		if err != nil {
			log.Error().Err(err).Str("keyword", keyword).Msg("Keyword search failed")
			continue
		}
		indexed := 0
		for _, place := range places {
			if err := index.IndexPlace(ctx, place); err != nil {
				log.Warn().Err(err).Str("place_id", place.ID).Msg("Failed to index place")
				continue
			}
			indexed++
		}
		total += indexed
		log.Info().Str("keyword", keyword).Int("found", len(places)).Int("indexed", indexed).Msg("Indexed keyword")
	}

	log.Info().Int("total", total).Msg("Indexing finished")
	return nil
}

func splitKeywords(value string) []string {
	var out []string
	for _, k := range strings.Split(value, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
