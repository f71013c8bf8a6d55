package placesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/pkg/retry"
)

const (
	kakaoKeywordSearchURL = "https://dapi.kakao.com/v2/local/search/keyword.json"
	defaultPageSize       = 15
	defaultHTTPTimeout    = 8 * time.Second
)

// KakaoPlaceSearchProvider implements PlaceSearchProvider using the Kakao Local keyword search API.
// The continuation cursor is the next page number.
type KakaoPlaceSearchProvider struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	pageSize   int
}

var _ providers.PlaceSearchProvider = (*KakaoPlaceSearchProvider)(nil)

// NewKakaoPlaceSearchProvider creates a new Kakao keyword search provider.
func NewKakaoPlaceSearchProvider(apiKey string) *KakaoPlaceSearchProvider {
	return NewKakaoPlaceSearchProviderWithOptions(apiKey, kakaoKeywordSearchURL, nil)
}

// NewKakaoPlaceSearchProviderWithOptions allows overriding base URL and HTTP client (used for tests).
func NewKakaoPlaceSearchProviderWithOptions(apiKey, baseURL string, httpClient *http.Client) *KakaoPlaceSearchProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = kakaoKeywordSearchURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &KakaoPlaceSearchProvider{
		apiKey:     apiKey,
		httpClient: httpClient,
		baseURL:    baseURL,
		pageSize:   defaultPageSize,
	}
}

// SearchKeyword fetches one page of keyword results.
func (k *KakaoPlaceSearchProvider) SearchKeyword(ctx context.Context, keyword, cursor string) (*providers.KeywordSearchPage, error) {
	if k.apiKey == "" {
		return nil, retry.Permanent(fmt.Errorf("kakao rest api key is required"))
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, retry.Permanent(fmt.Errorf("keyword is required"))
	}

	page := 1
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 1 {
			return nil, retry.Permanent(fmt.Errorf("invalid cursor %q", cursor))
		}
		page = parsed
	}

	params := url.Values{}
	params.Set("query", keyword)
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(k.pageSize))

	reqURL := fmt.Sprintf("%s?%s", k.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build keyword search request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+k.apiKey)

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("keyword search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("keyword search returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		// 4xx other than throttling will fail the same way on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, retry.Permanent(err)
		}
		return nil, err
	}

	var payload kakaoKeywordResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode keyword search response: %w", err)
	}

	result := &providers.KeywordSearchPage{
		Documents:  payload.Documents,
		TotalCount: payload.Meta.TotalCount,
	}
	if !payload.Meta.IsEnd && len(payload.Documents) > 0 {
		result.NextCursor = strconv.Itoa(page + 1)
	}
	return result, nil
}
