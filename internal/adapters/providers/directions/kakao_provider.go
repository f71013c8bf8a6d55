package directions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/infrastructure/observability"
)

const (
	kakaoDirectionsURL       = "https://apis-navi.kakaomobility.com/v1/directions"
	defaultDirectionsTimeout = 8 * time.Second
	defaultRouteCacheTTL     = 60 * 10
	routePriorityRecommend   = "RECOMMEND"
)

// KakaoDirectionsProvider implements DirectionsProvider using the Kakao Mobility directions API.
type KakaoDirectionsProvider struct {
	apiKey     string
	httpClient *http.Client
	cache      providers.CacheProvider
	metrics    *observability.Metrics
	baseURL    string
	cacheTTL   int
}

// NewKakaoDirectionsProvider creates a new Kakao directions provider.
func NewKakaoDirectionsProvider(apiKey string, cache providers.CacheProvider, metrics *observability.Metrics) *KakaoDirectionsProvider {
	return NewKakaoDirectionsProviderWithOptions(apiKey, cache, metrics, kakaoDirectionsURL, nil)
}

// NewKakaoDirectionsProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewKakaoDirectionsProviderWithOptions(apiKey string, cache providers.CacheProvider, metrics *observability.Metrics, baseURL string, httpClient *http.Client) *KakaoDirectionsProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = kakaoDirectionsURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultDirectionsTimeout}
	}
	return &KakaoDirectionsProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		cache:      cache,
		metrics:    metrics,
		baseURL:    baseURL,
		cacheTTL:   defaultRouteCacheTTL,
	}
}

// Directions requests the recommended route between two positions.
func (k *KakaoDirectionsProvider) Directions(ctx context.Context, origin, destination entities.Coordinates) (*entities.RouteResult, error) {
	cacheKey := "directions:v1:" + hashKey(origin.LngLat()+"|"+destination.LngLat())
	if k.cache != nil {
		if cached, err := k.cache.Get(ctx, cacheKey); err == nil && len(cached) > 0 {
			var result entities.RouteResult
			if err := json.Unmarshal(cached, &result); err == nil && len(result.Path) > 0 {
				observability.RecordCacheHit(ctx, k.metrics, "directions")
				return &result, nil
			}
		}
		observability.RecordCacheMiss(ctx, k.metrics, "directions")
	}

	started := time.Now()
	payload, err := k.doDirectionsRequest(ctx, origin, destination)
	observability.RecordProviderMetric(ctx, k.metrics, "kakao-mobility", "directions", time.Since(started))
	if err != nil {
		return nil, err
	}

	result, err := decodeRoute(payload)
	if err != nil {
		return nil, err
	}

	if k.cache != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = k.cache.Set(ctx, cacheKey, data, k.cacheTTL)
		}
	}
	return result, nil
}

func (k *KakaoDirectionsProvider) doDirectionsRequest(ctx context.Context, origin, destination entities.Coordinates) (*kakaoDirectionsResponse, error) {
	if k.apiKey == "" {
		return nil, fmt.Errorf("kakao rest api key is required")
	}

	params := url.Values{}
	params.Set("origin", origin.LngLat())
	params.Set("destination", destination.LngLat())
	params.Set("priority", routePriorityRecommend)

	reqURL := fmt.Sprintf("%s?%s", k.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directions request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("directions request returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload kakaoDirectionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode directions response: %w", err)
	}
	return &payload, nil
}

// decodeRoute flattens the first route's road vertexes into one path. A
// non-zero result code, or a route without vertexes, is a RouteFailure.
func decodeRoute(payload *kakaoDirectionsResponse) (*entities.RouteResult, error) {
	if len(payload.Routes) == 0 {
		return nil, &entities.RouteFailure{Code: 0, Message: "no routes in response"}
	}
	route := payload.Routes[0]
	if route.ResultCode != 0 {
		return nil, &entities.RouteFailure{Code: route.ResultCode, Message: route.ResultMsg}
	}

	var path []entities.Coordinates
	for _, section := range route.Sections {
		for _, road := range section.Roads {
			path = append(path, DecodeVertexes(road.Vertexes)...)
		}
	}
	if len(path) == 0 {
		return nil, &entities.RouteFailure{Code: route.ResultCode, Message: "route has no vertexes"}
	}

	return &entities.RouteResult{
		Path: path,
		Summary: entities.RouteInfo{
			DurationSeconds: route.Summary.Duration,
			DistanceMeters:  route.Summary.Distance,
		},
	}, nil
}

// DecodeVertexes reads a flat [lng, lat, lng, lat, ...] list. A trailing
// unpaired value is ignored.
func DecodeVertexes(vertexes []float64) []entities.Coordinates {
	path := make([]entities.Coordinates, 0, len(vertexes)/2)
	for i := 0; i+1 < len(vertexes); i += 2 {
		path = append(path, entities.Coordinates{Lng: vertexes[i], Lat: vertexes[i+1]})
	}
	return path
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

type kakaoDirectionsResponse struct {
	TransID string       `json:"trans_id"`
	Routes  []kakaoRoute `json:"routes"`
}

type kakaoRoute struct {
	ResultCode int            `json:"result_code"`
	ResultMsg  string         `json:"result_msg"`
	Summary    kakaoSummary   `json:"summary"`
	Sections   []kakaoSection `json:"sections"`
}

type kakaoSummary struct {
	Distance int `json:"distance"`
	Duration int `json:"duration"`
}

type kakaoSection struct {
	Distance int         `json:"distance"`
	Duration int         `json:"duration"`
	Roads    []kakaoRoad `json:"roads"`
}

type kakaoRoad struct {
	Name     string    `json:"name"`
	Distance int       `json:"distance"`
	Duration int       `json:"duration"`
	Vertexes []float64 `json:"vertexes"`
}
