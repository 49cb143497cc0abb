package orders

import (
	"github.com/shopspring/decimal"
	"time"
)

type Order struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"userId"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          Status          `json:"status"` // see status.go
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ShippingAddress string          `json:"shippingAddress"`
	ContactPhone    string          `json:"contactPhone"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	Items           []Item          `json:"items"`
}

type Item struct {
	ID        int64 `json:"id"`
	OrderID   int64 `json:"orderId"`
	ProductID int64 `json:"productId"`
	// SellerID is copied from the product at creation; 0 when the product had no seller.
	SellerID  int64           `json:"sellerId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Status    ItemStatus      `json:"status"`

	// filled on reads
	ProductName     string `json:"productName,omitempty"`
	SellerStoreName string `json:"sellerStoreName,omitempty"`
}

func (it Item) LineTotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// ItemsTotal sums the line totals of items.
func ItemsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

type LineInput struct {
	ProductID int64 `json:"productId" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gt=0"`
}

type PlaceOrderInput struct {
	Items           []LineInput `json:"items" validate:"required,min=1,dive"`
	ShippingAddress string      `json:"shippingAddress" validate:"required,max=500"`
	ContactPhone    string      `json:"contactPhone" validate:"required,max=20"`
	PaymentMethod   string      `json:"paymentMethod" validate:"required,max=50"`
}
