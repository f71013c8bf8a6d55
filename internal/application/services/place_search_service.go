package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/domain/repositories"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wayfinder/pkg/errors"
	"github.com/zatekoja/wayfinder/pkg/retry"
)

// MaxProviderPages is the deepest page the keyword search provider serves.
const MaxProviderPages = 45

var wizardCategoryKeywords = map[entities.PlaceCategory]string{
	entities.PlaceCategoryFood:   "맛집",
	entities.PlaceCategorySights: "관광명소",
}

// PlaceSearchConfig tunes the place search service
type PlaceSearchConfig struct {
	MaxPages        int
	CacheTTLSeconds int
	RatePerSecond   float64
	Burst           int
	Retry           retry.Config
	// TranslateTo enables localized fields when non-empty (e.g. "en").
	TranslateTo string
}

// DefaultPlaceSearchConfig returns the defaults used by the API server
func DefaultPlaceSearchConfig() PlaceSearchConfig {
	return PlaceSearchConfig{
		MaxPages:        MaxProviderPages,
		CacheTTLSeconds: 60 * 60,
		RatePerSecond:   10,
		Burst:           5,
		Retry: retry.Config{
			MaxAttempts:     3,
			InitialDelay:    200 * time.Millisecond,
			MaxDelay:        2 * time.Second,
			BackoffFactor:   2.0,
			MaxTotalTimeout: 15 * time.Second,
		},
	}
}

// PlaceSearchService fetches complete result sets and normalizes them.
type PlaceSearchService struct {
	provider   providers.PlaceSearchProvider
	saved      repositories.SavedPlaceRepository
	translator providers.TranslationProvider
	cache      providers.CacheProvider
	normalizer *PlaceNormalizer
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	cfg        PlaceSearchConfig
}

// NewPlaceSearchService creates a new place search service. Saved places,
// translation and cache are optional.
func NewPlaceSearchService(
	provider providers.PlaceSearchProvider,
	saved repositories.SavedPlaceRepository,
	translator providers.TranslationProvider,
	cache providers.CacheProvider,
	metrics *observability.Metrics,
	cfg PlaceSearchConfig,
) *PlaceSearchService {
	if cfg.MaxPages <= 0 || cfg.MaxPages > MaxProviderPages {
		cfg.MaxPages = MaxProviderPages
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry.MaxAttempts = 1
	}
	return &PlaceSearchService{
		provider:   provider,
		saved:      saved,
		translator: translator,
		cache:      cache,
		normalizer: NewPlaceNormalizer(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		metrics:    metrics,
		cfg:        cfg,
	}
}

// WizardKeyword builds the search keyword for a region and category.
func WizardKeyword(region string, category entities.PlaceCategory) (string, error) {
	region = strings.TrimSpace(region)
	if region == "" {
		return "", apperrors.NewValidationError("region is required")
	}
	suffix, ok := wizardCategoryKeywords[category]
	if !ok {
		return "", apperrors.NewValidationError(fmt.Sprintf("unknown category %q", category))
	}
	return region + " " + suffix, nil
}

// SearchWizard searches the places for the wizard's region and category.
func (s *PlaceSearchService) SearchWizard(ctx context.Context, region string, category entities.PlaceCategory) ([]entities.PlaceRecord, error) {
	keyword, err := WizardKeyword(region, category)
	if err != nil {
		return nil, err
	}
	return s.SearchAll(ctx, keyword)
}

// SearchAll follows the provider's continuation cursor until the results are
// exhausted and returns the concatenated set with duplicate ids removed.
func (s *PlaceSearchService) SearchAll(ctx context.Context, keyword string) ([]entities.PlaceRecord, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, apperrors.NewValidationError("keyword is required")
	}
	if s.provider == nil {
		return nil, apperrors.NewInternalError("place search provider not configured", nil)
	}

	ctx, span := observability.StartSpan(ctx, "places.search_all")
	defer span.End()
	observability.RecordSearch(ctx, s.metrics, "keyword")
	logger := observability.LoggerFromContext(ctx)

	cacheKey := "places:v1:keyword:" + hashKey(strings.ToLower(keyword)+"|"+s.cfg.TranslateTo)
	if cached, ok := s.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	var docs []entities.KeywordPlaceDocument
	cursor := ""
	for page := 1; page <= s.cfg.MaxPages; page++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, apperrors.NewExternalError("place search rate limit wait aborted", err)
		}

		var result *providers.KeywordSearchPage
		started := time.Now()
		err := retry.DoWithLog(ctx, s.cfg.Retry, "place-search", func() error {
			var err error
			result, err = s.provider.SearchKeyword(ctx, keyword, cursor)
			return err
		}, func(attempt int, err error, nextDelay time.Duration) {
			logger.Warn().Err(err).Int("attempt", attempt).Dur("next_delay", nextDelay).Msg("Place search attempt failed")
		})
		observability.RecordProviderMetric(ctx, s.metrics, "place-search", "keyword", time.Since(started))
		if err != nil {
			observability.RecordError(span, err)
			return nil, apperrors.NewExternalError("place search failed", err)
		}

		docs = append(docs, result.Documents...)
		if result.NextCursor == "" {
			break
		}
		cursor = result.NextCursor
	}

	records := dedupeByID(s.normalizer.NormalizeKeywordDocuments(docs))
	records = s.localize(ctx, records)

	logger.Info().Str("keyword", keyword).Int("count", len(records)).Msg("Place search completed")
	s.toCache(ctx, cacheKey, records)
	return records, nil
}

// SavedPlaces loads and normalizes one saved category of the user.
func (s *PlaceSearchService) SavedPlaces(ctx context.Context, token, categoryID string) ([]entities.PlaceRecord, error) {
	if s.saved == nil {
		return nil, apperrors.NewInternalError("saved places backend not configured", nil)
	}
	if strings.TrimSpace(categoryID) == "" {
		return nil, apperrors.NewValidationError("category id is required")
	}
	observability.RecordSearch(ctx, s.metrics, "saved")

	payloads, err := s.saved.ListByCategory(ctx, token, categoryID)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to load saved places", err)
	}
	return dedupeByID(s.normalizer.NormalizeSavedPlaces(payloads)), nil
}

// localize fills the localized address and category through the translator.
// Failures leave the records untouched.
func (s *PlaceSearchService) localize(ctx context.Context, records []entities.PlaceRecord) []entities.PlaceRecord {
	if s.translator == nil || s.cfg.TranslateTo == "" || len(records) == 0 {
		return records
	}

	index := make(map[string]int)
	var texts []string
	add := func(text string) {
		if text == "" {
			return
		}
		if _, ok := index[text]; !ok {
			index[text] = len(texts)
			texts = append(texts, text)
		}
	}
	for _, r := range records {
		add(r.Address)
		add(r.Category)
	}
	if len(texts) == 0 {
		return records
	}

	translated, err := s.translator.Translate(ctx, texts, s.cfg.TranslateTo)
	if err != nil || len(translated) != len(texts) {
		observability.LoggerFromContext(ctx).Warn().Err(err).Int("texts", len(texts)).Msg("Translation skipped")
		return records
	}

	out := make([]entities.PlaceRecord, len(records))
	for i, r := range records {
		if idx, ok := index[r.Address]; ok {
			r.AddressLocalized = translated[idx]
		}
		if idx, ok := index[r.Category]; ok {
			r.CategoryLocalized = translated[idx]
		}
		out[i] = r
	}
	return out
}

func (s *PlaceSearchService) fromCache(ctx context.Context, key string) ([]entities.PlaceRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil || len(data) == 0 {
		observability.RecordCacheMiss(ctx, s.metrics, "places")
		return nil, false
	}
	var records []entities.PlaceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		observability.RecordCacheMiss(ctx, s.metrics, "places")
		return nil, false
	}
	observability.RecordCacheHit(ctx, s.metrics, "places")
	return records, true
}

func (s *PlaceSearchService) toCache(ctx context.Context, key string, records []entities.PlaceRecord) {
	if s.cache == nil || s.cfg.CacheTTLSeconds <= 0 {
		return
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTLSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Failed to cache place search")
	}
}

func dedupeByID(records []entities.PlaceRecord) []entities.PlaceRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, r := range records {
		if r.ID != "" {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
