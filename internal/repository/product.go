package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/db"
)

const (
	productColumns = `id, title, description, product_type, price, discount, sku,
		is_available, stock_quantity, image, created_at, updated_at`

	productSkuConstraint = "products_sku_key"
)

type ProductRepository interface {
	WithDB(db db.DB) ProductRepository
	CreateProduct(ctx context.Context, product model.Product) error
	ExistsBySku(ctx context.Context, sku string) (bool, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	DeleteProductByID(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
}

type productRepository struct {
	db db.DB
}

func NewProductRepository(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r productRepository) WithDB(db db.DB) ProductRepository {
	return &productRepository{db: db}
}

// CreateProduct inserts product. A duplicate sku returns apperr.SkuConflictErr.
func (r productRepository) CreateProduct(ctx context.Context, product model.Product) error {
	price, err := decimalToNumeric(product.Price)
	if err != nil {
		return fmt.Errorf("convert price: %w", err)
	}

	discount, err := decimalToNumeric(product.Discount)
	if err != nil {
		return fmt.Errorf("convert discount: %w", err)
	}

	if product.StockQuantity > math.MaxInt32 || product.StockQuantity < math.MinInt32 {
		return fmt.Errorf("stock quantity out of range: %d", product.StockQuantity)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES (@id, @title, @description, @product_type, @price, @discount, @sku,
			@is_available, @stock_quantity, @image, @created_at, @updated_at)
	`, pgx.NamedArgs{
		"id":             product.ID,
		"title":          product.Title,
		"description":    product.Description,
		"product_type":   string(product.ProductType),
		"price":          price,
		"discount":       discount,
		"sku":            product.Sku,
		"is_available":   product.IsAvailable,
		"stock_quantity": int32(product.StockQuantity),
		"image":          product.Image,
		"created_at":     product.CreatedAt,
		"updated_at":     product.UpdatedAt,
	})
	if err != nil {
		if db.IsUniqueViolation(err, productSkuConstraint) {
			return apperr.SkuConflictErr.WrapParent(err)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

func (r productRepository) ExistsBySku(ctx context.Context, sku string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists product by sku: %w", err)
	}
	return exists, nil
}

func (r productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product by id: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("collect product: %w", err)
	}

	return product, nil
}

func (r productRepository) DeleteProductByID(ctx context.Context, id uuid.UUID) (model.Product, error) {
	rows, err := r.db.Query(ctx, `DELETE FROM products WHERE id = $1 RETURNING `+productColumns, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("delete product by id: %w", err)
	}

	product, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Product{}, apperr.ProductNotFoundErr
		}
		return model.Product{}, fmt.Errorf("collect deleted product: %w", err)
	}

	return product, nil
}

func (r productRepository) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("collect products: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.CollectableRow) (model.Product, error) {
	var (
		p             model.Product
		productType   string
		price         pgtype.Numeric
		discount      pgtype.Numeric
		stockQuantity int32
	)

	if err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&productType,
		&price,
		&discount,
		&p.Sku,
		&p.IsAvailable,
		&stockQuantity,
		&p.Image,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return model.Product{}, fmt.Errorf("scan product: %w", err)
	}

	var err error
	if p.Price, err = numericToDecimal(price); err != nil {
		return model.Product{}, fmt.Errorf("convert price: %w", err)
	}
	if p.Discount, err = numericToDecimal(discount); err != nil {
		return model.Product{}, fmt.Errorf("convert discount: %w", err)
	}

	p.ProductType = model.ProductType(productType)
	p.StockQuantity = int(stockQuantity)

	return p, nil
}
