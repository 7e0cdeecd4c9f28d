package history

import (
	"context"
	"fmt"

	"github.com/arbor-cms/arbor/internal/shared"
)

// DefaultPageSize is the number of entries per listing page.
const DefaultPageSize = 20

const maxPageSize = 100

// Store loads log entries.
type Store interface {
	List(ctx context.Context, q Query, limit, offset int) (Result, error)
}

// Listing is one rendered page of a history listing.
type Listing struct {
	Entries    []Entry
	Pagination shared.Pagination
}

// Service pages through history queries.
type Service struct {
	store    Store
	pageSize int
}

// NewService constructs a Service. A non-positive pageSize selects the
// default.
func NewService(store Store, pageSize int) *Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Service{store: store, pageSize: pageSize}
}

// PageSize returns the configured page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// Page loads page number page of q. Requests past the last page return the
// last page.
func (s *Service) Page(ctx context.Context, q Query, page int) (Listing, error) {
	if s.store == nil {
		return Listing{}, fmt.Errorf("history: store not configured")
	}
	page = max(1, min(page, shared.MaxPage))
	p := shared.NewPagination(page, s.pageSize, 0)
	result, err := s.store.List(ctx, q, p.PerPage, p.Offset())
	if err != nil {
		return Listing{}, err
	}
	p = shared.NewPagination(page, s.pageSize, result.Total)
	if page > p.TotalPages {
		p = shared.NewPagination(p.TotalPages, s.pageSize, result.Total)
		result, err = s.store.List(ctx, q, p.PerPage, p.Offset())
		if err != nil {
			return Listing{}, err
		}
	}
	return Listing{Entries: result.Entries, Pagination: p}, nil
}
