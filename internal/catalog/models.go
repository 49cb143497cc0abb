package catalog

import (
	"github.com/shopspring/decimal"
	"time"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"imageUrl"`
	CategoryID  int64           `json:"categoryId"`
	SellerID    *int64          `json:"sellerId,omitempty"`

	// filled on reads
	CategoryName    string `json:"categoryName,omitempty"`
	SellerStoreName string `json:"sellerStoreName,omitempty"`
}

// SellerOrZero is the seller copied onto order items; products without a seller map to 0.
func (p Product) SellerOrZero() int64 {
	if p.SellerID == nil {
		return 0
	}
	return *p.SellerID
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Seller struct {
	ID           int64           `json:"id"`
	UserID       string          `json:"userId"`
	StoreName    string          `json:"storeName"`
	Description  string          `json:"description"`
	ContactEmail string          `json:"contactEmail"`
	ContactPhone string          `json:"contactPhone"`
	Address      string          `json:"address"`
	CreatedAt    time.Time       `json:"createdAt"`
	IsApproved   bool            `json:"isApproved"`
	Rating       decimal.Decimal `json:"rating"`
	TotalSales   int             `json:"totalSales"`
}

type SellerStats struct {
	StoreName     string          `json:"storeName"`
	TotalProducts int             `json:"totalProducts"`
	TotalSales    int             `json:"totalSales"`
	Rating        decimal.Decimal `json:"rating"`
	IsApproved    bool            `json:"isApproved"`
	JoinDate      time.Time       `json:"joinDate"`
}
