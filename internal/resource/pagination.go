package resource

import (
	"math"
)

const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

type (
	// Pagination describes where a page sits within a result set.
	Pagination struct {
		CurrentPage  int
		PreviousPage *int
		NextPage     *int
		TotalPages   int
		TotalCount   int
	}

	// PageOptions are used to request a page of results.
	PageOptions struct {
		// The page number to request. The results vary based on the PageSize.
		PageNumber int `schema:"page,omitempty"`
		// The number of elements returned in a single page.
		PageSize int `schema:"page_size,omitempty"`
	}

	Page[T any] struct {
		Items []T
		*Pagination
	}
)

// Paginate paginates a slice of resources, returning a slice for the current
// page and a pagination meta object. The slice should be the entire result set.
func Paginate[S any](resources []S, opts PageOptions) *Page[S] {
	opts = opts.normalize()
	count := len(resources)

	// remove items outside the current page
	if end := opts.PageSize * opts.PageNumber; len(resources) > end {
		resources = resources[:end]
	}
	start := opts.PageSize * (opts.PageNumber - 1)
	if start > len(resources) {
		// paging is out-of-range: return empty list
		return &Page[S]{Pagination: NewPagination(opts, count)}
	}
	return &Page[S]{
		Items:      resources[start:],
		Pagination: NewPagination(opts, count),
	}
}

func NewPagination(opts PageOptions, count int) *Pagination {
	opts = opts.normalize()

	pagination := Pagination{
		CurrentPage: opts.PageNumber,
		TotalCount:  count,
	}

	// total pages must be a round number greater than 0
	pages := float64(count) / float64(opts.PageSize)
	pagination.TotalPages = int(math.Max(1, math.Ceil(pages)))

	if opts.PageNumber > 1 {
		pagination.PreviousPage = new(opts.PageNumber - 1)
	}
	if opts.PageNumber < pagination.TotalPages {
		pagination.NextPage = new(opts.PageNumber + 1)
	}

	return &pagination
}

// normalize page number and size
func (o PageOptions) normalize() PageOptions {
	if o.PageNumber < 1 {
		o.PageNumber = DefaultPageNumber
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}
