package orders

import (
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"strings"
)

type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

type ItemStatus string

const (
	ItemPending   ItemStatus = "Pending"
	ItemAccepted  ItemStatus = "Accepted"
	ItemRejected  ItemStatus = "Rejected"
	ItemShipped   ItemStatus = "Shipped"
	ItemDelivered ItemStatus = "Delivered"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
)

var validNext = map[ItemStatus]map[ItemStatus]bool{
	ItemPending:   {ItemAccepted: true, ItemRejected: true},
	ItemAccepted:  {ItemShipped: true, ItemRejected: true},
	ItemShipped:   {ItemDelivered: true},
	ItemRejected:  {},
	ItemDelivered: {},
}

func CanTransition(from, to ItemStatus) bool {
	return validNext[from][to]
}

func (s ItemStatus) Terminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

func ParseItemStatus(s string) (ItemStatus, error) {
	for st := range validNext {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", apperr.Validation("invalid item status", "status must be one of Pending, Accepted, Rejected, Shipped, Delivered")
}

var orderStatuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func ParseStatus(s string) (Status, error) {
	for _, st := range orderStatuses {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", apperr.Validation("invalid order status", "status must be one of Pending, Processing, Shipped, Delivered, Cancelled")
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, st := range []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed} {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", apperr.Validation("invalid payment status", "paymentStatus must be one of Pending, Completed, Failed")
}

// DeriveOrderStatus folds sibling item statuses into the order status.
// All Delivered gives Delivered, all Rejected gives Cancelled; anything else keeps current.
func DeriveOrderStatus(current Status, items []ItemStatus) Status {
	if len(items) == 0 {
		return current
	}
	allDelivered, allRejected := true, true
	for _, s := range items {
		allDelivered = allDelivered && s == ItemDelivered
		allRejected = allRejected && s == ItemRejected
	}
	switch {
	case allDelivered:
		return StatusDelivered
	case allRejected:
		return StatusCancelled
	}
	return current
}
