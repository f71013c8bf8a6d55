package entities

// PageSize is the number of places shown per list page.
const PageSize = 10

// Page is a contiguous slice of a larger place sequence. Number is 1-indexed.
type Page struct {
	Number     int           `json:"number"`
	Size       int           `json:"size"`
	TotalPages int           `json:"total_pages"`
	Total      int           `json:"total"`
	Records    []PlaceRecord `json:"records"`
}
