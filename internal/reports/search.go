package reports

import (
	"cmp"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/shopspring/decimal"
	"strings"
	"time"
)

type OrderSort int

const (
	DateDesc OrderSort = iota
	DateAsc
	AmountDesc
	AmountAsc
)

type orderSortSpec struct {
	name    string
	orderBy string
	compare func(a, b orders.Order) int
}

var orderSorts = map[OrderSort]orderSortSpec{
	DateDesc:   {"date_desc", "o.order_date DESC, o.id DESC", func(a, b orders.Order) int { return b.OrderDate.Compare(a.OrderDate) }},
	DateAsc:    {"date_asc", "o.order_date ASC, o.id ASC", func(a, b orders.Order) int { return a.OrderDate.Compare(b.OrderDate) }},
	AmountDesc: {"amount_desc", "o.total_amount DESC, o.id DESC", func(a, b orders.Order) int { return b.TotalAmount.Cmp(a.TotalAmount) }},
	AmountAsc:  {"amount_asc", "o.total_amount ASC, o.id ASC", func(a, b orders.Order) int { return a.TotalAmount.Cmp(b.TotalAmount) }},
}

// ParseOrderSort accepts date_desc, date_asc, amount_desc or amount_asc. Empty means DateDesc.
func ParseOrderSort(s string) (OrderSort, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DateDesc, nil
	}
	for k, def := range orderSorts {
		if def.name == s {
			return k, nil
		}
	}
	return DateDesc, apperr.Validation("invalid sort key", "sortBy must be one of date_desc, date_asc, amount_desc, amount_asc")
}

func (k OrderSort) String() string { return orderSorts[k].name }

// OrderBy is the SQL ORDER BY clause for k.
func (k OrderSort) OrderBy() string { return orderSorts[k].orderBy }

func (k OrderSort) Compare(a, b orders.Order) int {
	if c := orderSorts[k].compare(a, b); c != 0 {
		return c
	}
	if k == DateAsc || k == AmountAsc {
		return cmp.Compare(a.ID, b.ID)
	}
	return cmp.Compare(b.ID, a.ID)
}

type OrderQuery struct {
	Status        *orders.Status
	PaymentStatus *orders.PaymentStatus
	MinAmount     *decimal.Decimal
	MaxAmount     *decimal.Decimal
	From          *time.Time
	To            *time.Time
	Sort          OrderSort
	Page          paging.Request
}

func (q OrderQuery) Matches(o orders.Order) bool {
	switch {
	case q.Status != nil && o.Status != *q.Status:
		return false
	case q.PaymentStatus != nil && o.PaymentStatus != *q.PaymentStatus:
		return false
	case q.MinAmount != nil && o.TotalAmount.LessThan(*q.MinAmount):
		return false
	case q.MaxAmount != nil && o.TotalAmount.GreaterThan(*q.MaxAmount):
		return false
	case q.From != nil && o.OrderDate.Before(*q.From):
		return false
	case q.To != nil && o.OrderDate.After(*q.To):
		return false
	}
	return true
}
