package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

const (
	TitleMaxLen = 200
	SkuMaxLen   = 50
)

var (
	hundred = decimal.NewFromInt(100)

	// MaxPrice is the exclusive upper bound of a numeric(10,2) price.
	MaxPrice = decimal.New(1, 8)
)

// ProductType is the kind of product sold in the shop.
type ProductType string

const (
	ProductTypePlanner   ProductType = "planner"
	ProductTypeSticker   ProductType = "sticker"
	ProductTypeKit       ProductType = "kit"
	ProductTypeAccessory ProductType = "accessory"
)

// ProductTypes lists every valid product type in display order.
var ProductTypes = []ProductType{
	ProductTypePlanner,
	ProductTypeSticker,
	ProductTypeKit,
	ProductTypeAccessory,
}

// Validate implements the enum contract used by the struct validator.
func (t ProductType) Validate() error {
	switch t {
	case ProductTypePlanner, ProductTypeSticker, ProductTypeKit, ProductTypeAccessory:
		return nil
	default:
		return fmt.Errorf("invalid product type: %q", string(t))
	}
}

type Product struct {
	ID            uuid.UUID       `json:"id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	ProductType   ProductType     `json:"product_type"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	Sku           string          `json:"sku"`
	IsAvailable   bool            `json:"is_available"`
	StockQuantity int             `json:"stock_quantity"`
	Image         *string         `json:"image,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (p Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Title, p.Sku)
}

// DiscountedPrice returns the price reduced by the discount percentage.
// A zero discount returns the price unchanged.
func (p Product) DiscountedPrice() decimal.Decimal {
	if !p.Discount.IsPositive() {
		return p.Price
	}
	return p.Price.Mul(decimal.NewFromInt(1).Sub(p.Discount.Div(hundred))).Round(2)
}

// Validate checks the invariants every manually created product must hold.
// It returns a FieldError naming the first offending field.
func (p Product) Validate() error {
	if p.Title == "" || len([]rune(p.Title)) > TitleMaxLen {
		return FieldError{Field: "title", Message: fmt.Sprintf("must be 1 to %d characters", TitleMaxLen)}
	}
	if err := p.ProductType.Validate(); err != nil {
		return FieldError{Field: "product_type", Message: "invalid product type"}
	}
	if !p.Price.IsPositive() {
		return FieldError{Field: "price", Message: "must be greater than zero"}
	}
	if p.Price.GreaterThanOrEqual(MaxPrice) {
		return FieldError{Field: "price", Message: "is too large"}
	}
	if !DiscountInRange(p.Discount) {
		return FieldError{Field: "discount", Message: "must be between 0 and 100"}
	}
	if !validator.IsAlnumText(p.Sku) || len(p.Sku) > SkuMaxLen {
		return FieldError{Field: "sku", Message: "must contain only letters and digits"}
	}
	if p.StockQuantity < 0 {
		return FieldError{Field: "stock_quantity", Message: "must not be negative"}
	}
	return nil
}

// DiscountInRange reports whether d is a percentage in [0, 100].
func DiscountInRange(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(hundred)
}

// FieldError is a domain validation failure tied to one field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
