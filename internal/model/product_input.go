package model

import "github.com/shopspring/decimal"

// ProductInput is a validated product field set ready to be persisted.
type ProductInput struct {
	Title         string          `json:"title"`
	ProductType   ProductType     `json:"product_type"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	Sku           string          `json:"sku"`
	IsAvailable   bool            `json:"is_available"`
	StockQuantity int             `json:"stock_quantity"`
	Image         *string         `json:"image"`
}
