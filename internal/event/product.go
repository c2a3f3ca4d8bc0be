package event

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/planner-shop/internal/model"
)

const (
	TopicProductCreated = "product.created"
	TopicProductDeleted = "product.deleted"
)

// ProductCreatedEvent is published once per persisted product, manual or imported.
type ProductCreatedEvent struct {
	ProductID     string          `json:"product_id"`
	Title         string          `json:"title"`
	ProductType   string          `json:"product_type"`
	Sku           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	Discount      decimal.Decimal `json:"discount"`
	StockQuantity int             `json:"stock_quantity"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"created_at"`
}

const (
	SourceManual = "manual"
	SourceImport = "import"
)

func NewProductCreatedEvent(p model.Product, source string) ProductCreatedEvent {
	return ProductCreatedEvent{
		ProductID:     p.ID.String(),
		Title:         p.Title,
		ProductType:   string(p.ProductType),
		Sku:           p.Sku,
		Price:         p.Price,
		Discount:      p.Discount,
		StockQuantity: p.StockQuantity,
		Source:        source,
		CreatedAt:     p.CreatedAt,
	}
}

type ProductDeletedEvent struct {
	ProductID string    `json:"product_id"`
	Sku       string    `json:"sku"`
	DeletedAt time.Time `json:"deleted_at"`
}

func (s *Service) handleProductCreatedEvent(ctx context.Context, ev ProductCreatedEvent) error {
	s.logger.InfoContext(ctx, "handling product created event",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
		slog.String("source", ev.Source),
	)
	return nil
}

func (s *Service) handleProductDeletedEvent(ctx context.Context, ev ProductDeletedEvent) error {
	s.logger.InfoContext(ctx, "handling product deleted event",
		slog.String("product_id", ev.ProductID),
		slog.String("sku", ev.Sku),
	)
	return nil
}
