package placesearch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/wayfinder/pkg/retry"
)

func TestKakaoPlaceSearchProvider_SearchKeyword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "KakaoAK test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "강남 맛집", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "15", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"meta": {"total_count": 40, "pageable_count": 40, "is_end": false},
			"documents": [
				{"id": "1", "place_name": "Noodle House", "category_name": "음식점 > 한식 > 국수",
				 "category_group_code": "FD6", "address_name": "서울 강남구", "road_address_name": "서울 강남구 테헤란로 1",
				 "x": "127.0276", "y": "37.4979", "place_url": "http://place.map.kakao.com/1"}
			]
		}`))
	}))
	defer server.Close()

	provider := NewKakaoPlaceSearchProviderWithOptions("test-key", server.URL, server.Client())
	page, err := provider.SearchKeyword(context.Background(), "강남 맛집", "2")
	require.NoError(t, err)
	require.Len(t, page.Documents, 1)
	assert.Equal(t, "Noodle House", page.Documents[0].PlaceName)
	assert.Equal(t, "127.0276", page.Documents[0].X.Raw)
	assert.Equal(t, "3", page.NextCursor)
	assert.Equal(t, 40, page.TotalCount)
}

func TestKakaoPlaceSearchProvider_LastPageHasNoCursor(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"meta":{"total_count":1,"is_end":true},"documents":[{"id":"1","place_name":"A"}]}`))
	}))
	defer server.Close()

	provider := NewKakaoPlaceSearchProviderWithOptions("k", server.URL, nil)
	page, err := provider.SearchKeyword(context.Background(), "a", "")
	require.NoError(t, err)
	assert.Empty(t, page.NextCursor)
}

func TestKakaoPlaceSearchProvider_ClientErrorsArePermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errorType":"AccessDeniedError"}`))
	}))
	defer server.Close()

	provider := NewKakaoPlaceSearchProviderWithOptions("k", server.URL, nil)
	calls := 0
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3}, func() error {
		calls++
		_, err := provider.SearchKeyword(context.Background(), "a", "")
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, 1, calls)
}

func TestKakaoPlaceSearchProvider_ServerErrorsAreRetryable(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"meta":{"is_end":true},"documents":[]}`))
	}))
	defer server.Close()

	provider := NewKakaoPlaceSearchProviderWithOptions("k", server.URL, nil)
	err := retry.Do(context.Background(), retry.Config{MaxAttempts: 3, BackoffFactor: 1}, func() error {
		_, err := provider.SearchKeyword(context.Background(), "a", "")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestKakaoPlaceSearchProvider_Validation(t *testing.T) {
	provider := NewKakaoPlaceSearchProviderWithOptions("", "http://unused", nil)
	_, err := provider.SearchKeyword(context.Background(), "a", "")
	assert.Error(t, err)

	provider = NewKakaoPlaceSearchProviderWithOptions("k", "http://unused", nil)
	_, err = provider.SearchKeyword(context.Background(), "  ", "")
	assert.Error(t, err)

	_, err = provider.SearchKeyword(context.Background(), "a", "zero")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}

func TestDocumentFromHit(t *testing.T) {
	doc := documentFromHit(map[string]interface{}{
		"id":         "p1",
		"place_name": "Gyeongbokgung",
		"location":   []interface{}{37.5796, 126.977},
	})
	assert.Equal(t, "p1", doc.ID)
	assert.Equal(t, "37.5796", doc.Y.Raw)
	assert.Equal(t, "126.977", doc.X.Raw)

	noLoc := documentFromHit(map[string]interface{}{"id": "p2"})
	assert.False(t, noLoc.X.Present)
}

func TestNewPlaceSearchProvider(t *testing.T) {
	p, err := NewPlaceSearchProvider("kakao", "k", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &KakaoPlaceSearchProvider{}, p)

	_, err = NewPlaceSearchProvider("typesense", "", "", nil)
	assert.Error(t, err)

	_, err = NewPlaceSearchProvider("bing", "", "", nil)
	assert.Error(t, err)
}
