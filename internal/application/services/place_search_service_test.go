package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/wayfinder/internal/adapters/cache"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	apperrors "github.com/zatekoja/wayfinder/pkg/errors"
	"github.com/zatekoja/wayfinder/pkg/retry"
)

func testSearchConfig() PlaceSearchConfig {
	cfg := DefaultPlaceSearchConfig()
	cfg.RatePerSecond = 1000
	cfg.Burst = 100
	cfg.Retry = retry.Config{
		MaxAttempts:     2,
		InitialDelay:    time.Millisecond,
		MaxDelay:        time.Millisecond,
		BackoffFactor:   1,
		MaxTotalTimeout: time.Second,
	}
	return cfg
}

func keywordDocs(ids ...string) []entities.KeywordPlaceDocument {
	docs := make([]entities.KeywordPlaceDocument, len(ids))
	for i, id := range ids {
		docs[i] = entities.KeywordPlaceDocument{
			ID:           id,
			PlaceName:    "Place " + id,
			AddressName:  "서울 " + id,
			CategoryName: "음식점",
			X:            entities.NewFlexibleNumber(127 + float64(i)/100),
			Y:            entities.NewFlexibleNumber(37 + float64(i)/100),
		}
	}
	return docs
}

func TestSearchAll_FollowsCursorUntilExhausted(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "성수 맛집", "").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("1", "2"), NextCursor: "2"}, nil).Once()
	provider.On("SearchKeyword", mock.Anything, "성수 맛집", "2").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("3", "2"), NextCursor: "3"}, nil).Once()
	provider.On("SearchKeyword", mock.Anything, "성수 맛집", "3").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("4")}, nil).Once()

	svc := NewPlaceSearchService(provider, nil, nil, nil, nil, testSearchConfig())
	records, err := svc.SearchAll(context.Background(), "  성수 맛집 ")
	require.NoError(t, err)

	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids)
	assert.True(t, records[0].Mappable())
	provider.AssertExpectations(t)
}

func TestSearchAll_StopsAtPageCap(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	for page := 1; page <= 3; page++ {
		cursor := ""
		if page > 1 {
			cursor = fmt.Sprint(page)
		}
		provider.On("SearchKeyword", mock.Anything, "kw", cursor).
			Return(&providers.KeywordSearchPage{Documents: keywordDocs(fmt.Sprint(page)), NextCursor: fmt.Sprint(page + 1)}, nil).Once()
	}

	cfg := testSearchConfig()
	cfg.MaxPages = 3
	svc := NewPlaceSearchService(provider, nil, nil, nil, nil, cfg)

	records, err := svc.SearchAll(context.Background(), "kw")
	require.NoError(t, err)
	assert.Len(t, records, 3)
	provider.AssertNumberOfCalls(t, "SearchKeyword", 3)
}

func TestSearchAll_RetriesTransientFailure(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "kw", "").Return(nil, errors.New("timeout")).Once()
	provider.On("SearchKeyword", mock.Anything, "kw", "").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("1")}, nil).Once()

	svc := NewPlaceSearchService(provider, nil, nil, nil, nil, testSearchConfig())
	records, err := svc.SearchAll(context.Background(), "kw")

	require.NoError(t, err)
	assert.Len(t, records, 1)
	provider.AssertExpectations(t)
}

func TestSearchAll_PermanentFailureIsExternalError(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "kw", "").
		Return(nil, retry.Permanent(errors.New("401 unauthorized"))).Once()

	svc := NewPlaceSearchService(provider, nil, nil, nil, nil, testSearchConfig())
	_, err := svc.SearchAll(context.Background(), "kw")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	provider.AssertNumberOfCalls(t, "SearchKeyword", 1)
}

func TestSearchAll_RejectsEmptyKeyword(t *testing.T) {
	svc := NewPlaceSearchService(new(MockPlaceSearchProvider), nil, nil, nil, nil, testSearchConfig())
	_, err := svc.SearchAll(context.Background(), "   ")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSearchAll_UsesCache(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "kw", "").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("1", "2")}, nil).Once()

	svc := NewPlaceSearchService(provider, nil, nil, cache.NewMemoryAdapter(), nil, testSearchConfig())

	first, err := svc.SearchAll(context.Background(), "kw")
	require.NoError(t, err)
	second, err := svc.SearchAll(context.Background(), "KW")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	provider.AssertNumberOfCalls(t, "SearchKeyword", 1)
}

func TestSearchAll_Localizes(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "kw", "").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("1", "2")}, nil).Once()
	translator := new(MockTranslationProvider)
	translator.On("Translate", mock.Anything, []string{"서울 1", "음식점", "서울 2"}, "en").
		Return([]string{"Seoul 1", "Restaurant", "Seoul 2"}, nil).Once()

	cfg := testSearchConfig()
	cfg.TranslateTo = "en"
	svc := NewPlaceSearchService(provider, nil, translator, nil, nil, cfg)

	records, err := svc.SearchAll(context.Background(), "kw")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Seoul 1", records[0].AddressLocalized)
	assert.Equal(t, "Restaurant", records[0].CategoryLocalized)
	assert.Equal(t, "Seoul 2", records[1].AddressLocalized)
	translator.AssertExpectations(t)
}

func TestSearchAll_TranslationFailureIgnored(t *testing.T) {
	provider := new(MockPlaceSearchProvider)
	provider.On("SearchKeyword", mock.Anything, "kw", "").
		Return(&providers.KeywordSearchPage{Documents: keywordDocs("1")}, nil).Once()
	translator := new(MockTranslationProvider)
	translator.On("Translate", mock.Anything, mock.Anything, "en").Return(nil, errors.New("backend down")).Once()

	cfg := testSearchConfig()
	cfg.TranslateTo = "en"
	svc := NewPlaceSearchService(provider, nil, translator, nil, nil, cfg)

	records, err := svc.SearchAll(context.Background(), "kw")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].AddressLocalized)
}

func TestWizardKeyword(t *testing.T) {
	kw, err := WizardKeyword(" 성수 ", entities.PlaceCategoryFood)
	require.NoError(t, err)
	assert.Equal(t, "성수 맛집", kw)

	kw, err = WizardKeyword("경주", entities.PlaceCategorySights)
	require.NoError(t, err)
	assert.Equal(t, "경주 관광명소", kw)

	_, err = WizardKeyword("", entities.PlaceCategoryFood)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	_, err = WizardKeyword("성수", "shopping")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestSavedPlaces(t *testing.T) {
	repo := new(MockSavedPlaceRepository)
	repo.On("ListByCategory", mock.Anything, "token", "cat-1").Return([]entities.SavedPlacePayload{
		{PlaceID: "10", PlaceName: "A", Latitude: entities.NewFlexibleNumber(37.1), Longitude: entities.NewFlexibleNumber(127.1)},
		{PlaceID: "10", PlaceName: "A again"},
		{PlaceID: "11", PlaceName: "B"},
	}, nil).Once()

	svc := NewPlaceSearchService(nil, repo, nil, nil, nil, testSearchConfig())
	records, err := svc.SavedPlaces(context.Background(), "token", "cat-1")

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].DisplayName)
	assert.True(t, records[0].Mappable())
	assert.False(t, records[1].Mappable())
}

func TestSavedPlaces_BackendError(t *testing.T) {
	repo := new(MockSavedPlaceRepository)
	repo.On("ListByCategory", mock.Anything, "", "cat-1").Return(nil, errors.New("unauthorized")).Once()

	svc := NewPlaceSearchService(nil, repo, nil, nil, nil, testSearchConfig())
	_, err := svc.SavedPlaces(context.Background(), "", "cat-1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
}

func TestSavedPlaces_NotConfigured(t *testing.T) {
	svc := NewPlaceSearchService(nil, nil, nil, nil, nil, testSearchConfig())
	_, err := svc.SavedPlaces(context.Background(), "", "cat-1")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
}
