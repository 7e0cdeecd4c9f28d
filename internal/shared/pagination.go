package shared

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// PageParam is the query parameter carrying the requested page number.
const PageParam = "p"

// MaxPage caps requested page numbers; (MaxPage-1)*perPage fits in an int.
const MaxPage = 1_000_000

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Offset returns the number of rows preceding the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// PrevPage returns the previous page number.
func (p Pagination) PrevPage() int {
	return p.Page - 1
}

// NextPage returns the following page number.
func (p Pagination) NextPage() int {
	return p.Page + 1
}

// PageFromQuery reads the page number from the query string. Missing or
// malformed values fall back to the first page.
func PageFromQuery(values url.Values) int {
	raw := strings.TrimSpace(values.Get(PageParam))
	if raw == "" {
		return 1
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page <= 0 {
		return 1
	}
	return min(page, MaxPage)
}

// PageQuery returns a copy of values with the page parameter set, encoded for
// use in pagination links so the active filters survive page changes.
func PageQuery(values url.Values, page int) string {
	copied := url.Values{}
	for key, vals := range values {
		if key == PageParam {
			continue
		}
		copied[key] = append([]string(nil), vals...)
	}
	copied.Set(PageParam, strconv.Itoa(page))
	return copied.Encode()
}
