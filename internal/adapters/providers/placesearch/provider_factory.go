package placesearch

import (
	"fmt"

	"github.com/zatekoja/wayfinder/internal/domain/providers"
	tsclient "github.com/zatekoja/wayfinder/internal/infrastructure/clients/typesense"
)

// NewPlaceSearchProvider picks the keyword search provider by name.
func NewPlaceSearchProvider(name, kakaoAPIKey, kakaoBaseURL string, ts *tsclient.Client) (providers.PlaceSearchProvider, error) {
	switch name {
	case "", "kakao":
		return NewKakaoPlaceSearchProviderWithOptions(kakaoAPIKey, kakaoBaseURL, nil), nil
	case "typesense":
		if ts == nil {
			return nil, fmt.Errorf("typesense place search requires a typesense client")
		}
		return NewTypesensePlaceSearchProvider(ts), nil
	default:
		return nil, fmt.Errorf("unknown place search provider %q", name)
	}
}
