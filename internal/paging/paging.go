package paging

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
	// MaxPage keeps Offset well inside int range for any accepted size.
	MaxPage = 1_000_000
)

// Request is a normalized page request. Page is 1-based.
type Request struct {
	Page int
	Size int
}

func Normalize(page, size int) Request {
	if page < 1 {
		page = DefaultPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return Request{Page: page, Size: size}
}

func (r Request) Offset() int { return (r.Page - 1) * r.Size }

type Meta struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}

func New[T any](items []T, total int, r Request) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items: items,
		Meta: Meta{
			TotalItems:  total,
			TotalPages:  (total + r.Size - 1) / r.Size,
			CurrentPage: r.Page,
			PageSize:    r.Size,
		},
	}
}

// Slice cuts one page out of an already filtered and sorted slice.
func Slice[T any](all []T, r Request) []T {
	start := r.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := min(start+r.Size, len(all))
	return all[start:end]
}
