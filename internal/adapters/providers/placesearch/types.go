package placesearch

import (
	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

type kakaoKeywordResponse struct {
	Meta      kakaoMeta                       `json:"meta"`
	Documents []entities.KeywordPlaceDocument `json:"documents"`
}

type kakaoMeta struct {
	TotalCount    int  `json:"total_count"`
	PageableCount int  `json:"pageable_count"`
	IsEnd         bool `json:"is_end"`
}
