package catalog

import (
	"cmp"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/shopspring/decimal"
	"strings"
)

type SortKey int

const (
	ByID SortKey = iota
	ByName
	ByPrice
	ByStock
)

type sortSpec struct {
	name    string
	column  string
	compare func(a, b Product) int
}

// Each key carries the SQL column used by the postgres store and the comparator used in memory.
var sortKeys = map[SortKey]sortSpec{
	ByID:    {"id", "p.id", func(a, b Product) int { return cmp.Compare(a.ID, b.ID) }},
	ByName:  {"name", "p.name", func(a, b Product) int { return strings.Compare(a.Name, b.Name) }},
	ByPrice: {"price", "p.price", func(a, b Product) int { return a.Price.Cmp(b.Price) }},
	ByStock: {"stock", "p.stock", func(a, b Product) int { return cmp.Compare(a.Stock, b.Stock) }},
}

// ParseSortKey accepts name, price or stock (any case). Empty means ByID.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ByID, nil
	}
	for k, def := range sortKeys {
		if def.name == s {
			return k, nil
		}
	}
	return ByID, apperr.Validation("invalid sort key", "sortBy must be one of name, price, stock")
}

// ParseDirection accepts ASC or DESC (any case). Empty means ascending.
func ParseDirection(s string) (desc bool, err error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return false, nil
	case "DESC":
		return true, nil
	}
	return false, apperr.Validation("invalid sort direction", "sortDirection must be ASC or DESC")
}

func (k SortKey) Column() string { return sortKeys[k].column }

func (k SortKey) String() string { return sortKeys[k].name }

// Compare orders two products by k, falling back to id so paging is stable.
func (k SortKey) Compare(a, b Product) int {
	if c := sortKeys[k].compare(a, b); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

type ProductFilter struct {
	SearchTerm string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	CategoryID *int64
	SortBy     SortKey
	Desc       bool
	Page       paging.Request
}

// Matches applies the non-paging part of the filter.
func (f ProductFilter) Matches(p Product) bool {
	if term := strings.ToLower(f.SearchTerm); term != "" {
		if !strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	return true
}
