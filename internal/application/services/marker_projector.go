package services

import (
	"strings"
	"unicode"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// Marker icons chosen by SelectIcon.
const (
	IconRestaurant = "restaurant"
	IconCafe       = "cafe"
	IconBar        = "bar"
	IconBakery     = "bakery"
	IconSight      = "sight"
	IconMuseum     = "museum"
	IconPark       = "park"
	IconMarket     = "market"
	IconLodging    = "lodging"
	IconDefault    = "pin"
)

var groupCodeIcons = map[string]string{
	"FD6": IconRestaurant,
	"CE7": IconCafe,
	"AT4": IconSight,
	"CT1": IconMuseum,
	"AD5": IconLodging,
	"MT1": IconMarket,
}

// Checked in order; the first keyword found in the category text wins.
// Hangul keywords match anywhere, latin keywords only as whole words.
var categoryKeywordIcons = []struct {
	keywords []string
	icon     string
}{
	{[]string{"술집", "호프", "bar", "pub"}, IconBar},
	{[]string{"베이커리", "제과", "bakery"}, IconBakery},
	{[]string{"카페", "커피", "cafe", "coffee"}, IconCafe},
	{[]string{"박물관", "미술관", "museum", "gallery"}, IconMuseum},
	{[]string{"공원", "park"}, IconPark},
	{[]string{"시장", "market"}, IconMarket},
	{[]string{"호텔", "숙박", "hotel", "lodging"}, IconLodging},
	{[]string{"음식점", "식당", "restaurant"}, IconRestaurant},
	{[]string{"관광", "명소", "attraction", "landmark"}, IconSight},
}

// MarkerProjector maps the visible page onto marker descriptors.
type MarkerProjector struct{}

// NewMarkerProjector creates a new projector
func NewMarkerProjector() *MarkerProjector {
	return &MarkerProjector{}
}

// Project returns one descriptor per mappable record, in page order.
// Records without coordinates are skipped, so callers correlate by PlaceID.
func (p *MarkerProjector) Project(page []entities.PlaceRecord) []entities.MarkerDescriptor {
	markers := make([]entities.MarkerDescriptor, 0, len(page))
	for i, record := range page {
		if !record.Mappable() {
			continue
		}
		markers = append(markers, entities.MarkerDescriptor{
			PlaceID:  record.ID,
			Position: *record.Coordinates,
			Label:    record.DisplayName,
			Icon:     SelectIcon(record),
			Index:    i,
		})
	}
	return markers
}

// SelectIcon picks a marker icon from the category group code, falling back
// to keywords in the category text.
func SelectIcon(record entities.PlaceRecord) string {
	text := strings.ToLower(record.Category + " " + record.CategoryLocalized)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(text, func(r rune) bool { return !unicode.IsLetter(r) }) {
		words[w] = true
	}
	for _, rule := range categoryKeywordIcons {
		for _, kw := range rule.keywords {
			if matchesKeyword(text, words, kw) {
				// Cafes and bars are filed under FD6/CE7 but deserve their own pin.
				if icon, ok := groupCodeIcons[record.CategoryGroupCode]; ok && !refines(icon, rule.icon) {
					return icon
				}
				return rule.icon
			}
		}
	}
	if icon, ok := groupCodeIcons[record.CategoryGroupCode]; ok {
		return icon
	}
	return IconDefault
}

func matchesKeyword(text string, words map[string]bool, kw string) bool {
	if isLatin(kw) {
		return words[kw]
	}
	return strings.Contains(text, kw)
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// refines reports whether a keyword icon is a more specific form of a group icon.
func refines(groupIcon, keywordIcon string) bool {
	switch groupIcon {
	case IconRestaurant:
		return keywordIcon == IconBar || keywordIcon == IconBakery || keywordIcon == IconCafe
	case IconSight:
		return keywordIcon == IconMuseum || keywordIcon == IconPark || keywordIcon == IconMarket
	case IconCafe:
		return keywordIcon == IconBakery
	}
	return false
}
