package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/event"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/repository"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/db"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
	"github.com/tuanvumaihuynh/planner-shop/pkg/outbox"
	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

// ImageUpload is an optional product image sent with the manual form.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// CreateProductParams is the manual product form.
type CreateProductParams struct {
	Title         string            `json:"title" validate:"required,max=200"`
	ProductType   model.ProductType `json:"product_type" validate:"required,enum"`
	Description   string            `json:"description"`
	Price         decimal.Decimal   `json:"price" validate:"gt=0,lt=100000000"`
	Discount      decimal.Decimal   `json:"discount" validate:"gte=0,lte=100"`
	Sku           string            `json:"sku" validate:"required,max=50,alnumtext"`
	IsAvailable   bool              `json:"is_available"`
	StockQuantity int               `json:"stock_quantity" validate:"gte=0,lte=2147483647"`
	Image         *ImageUpload      `json:"-"`
}

type ProductService interface {
	CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error)
	// CreateImportedProduct persists a record that already passed import validation.
	CreateImportedProduct(ctx context.Context, input model.ProductInput) (model.Product, error)
	ExistsBySku(ctx context.Context, sku string) (bool, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	ListAllProducts(ctx context.Context) ([]model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	// ExportProduct validates params and writes them to w without persisting.
	ExportProduct(ctx context.Context, params CreateProductParams, format ExportFormat, w io.Writer) error
}

type productService struct {
	logger        *slog.Logger
	db            db.DB
	disk          disk.Disk
	imageDir      string
	validator     validator.Validator
	productRepo   repository.ProductRepository
	outboxMsgRepo repository.OutboxMsgRepository
	now           func() time.Time
}

func NewProductService(
	logger *slog.Logger,
	db db.DB,
	d disk.Disk,
	imageDir string,
	v validator.Validator,
	productRepo repository.ProductRepository,
	outboxMsgRepo repository.OutboxMsgRepository,
) ProductService {
	return &productService{
		logger:        logger.With(slog.String("service", "product")),
		db:            db,
		disk:          d,
		imageDir:      imageDir,
		validator:     v,
		productRepo:   productRepo,
		outboxMsgRepo: outboxMsgRepo,
		now:           time.Now,
	}
}

func (s *productService) CreateProduct(ctx context.Context, params CreateProductParams) (model.Product, error) {
	input, err := s.validate(params)
	if err != nil {
		return model.Product{}, err
	}

	exists, err := s.productRepo.ExistsBySku(ctx, input.Sku)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository exists by sku: %w", err)
	}
	if exists {
		return model.Product{}, apperr.SkuConflictErr.WithMsg(fmt.Sprintf("SKU '%s' already exists", input.Sku))
	}

	if params.Image != nil {
		imagePath, err := s.storeImage(ctx, input.Sku, *params.Image)
		if err != nil {
			return model.Product{}, err
		}
		input.Image = &imagePath
	}

	product, err := s.create(ctx, input, event.SourceManual)
	if err != nil {
		if input.Image != nil {
			if delErr := s.disk.Delete(ctx, *input.Image); delErr != nil {
				s.logger.WarnContext(ctx, "error removing orphaned image",
					slog.String("path", *input.Image), slog.Any("error", delErr))
			}
		}
		return model.Product{}, err
	}

	return product, nil
}

func (s *productService) CreateImportedProduct(ctx context.Context, input model.ProductInput) (model.Product, error) {
	return s.create(ctx, input, event.SourceImport)
}

// create inserts the product and its created event in one transaction.
func (s *productService) create(ctx context.Context, input model.ProductInput, source string) (model.Product, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return model.Product{}, fmt.Errorf("generate uuid v7: %w", err)
	}

	now := s.now().UTC()
	product := model.Product{
		ID:            id,
		Title:         input.Title,
		Description:   input.Description,
		ProductType:   input.ProductType,
		Price:         input.Price,
		Discount:      input.Discount,
		Sku:           input.Sku,
		IsAvailable:   input.IsAvailable,
		StockQuantity: input.StockQuantity,
		Image:         input.Image,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	payload, err := json.Marshal(event.NewProductCreatedEvent(product, source))
	if err != nil {
		return model.Product{}, fmt.Errorf("marshal event: %w", err)
	}

	if err := s.db.WithTx(ctx, func(db db.DB) error {
		if err := s.productRepo.
			WithDB(db).
			CreateProduct(ctx, product); err != nil {
			return fmt.Errorf("product repository create product: %w", err)
		}

		return s.writeOutbox(ctx, db, event.TopicProductCreated, product.ID, payload)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("sku", product.Sku),
		slog.String("source", source),
	)

	return product, nil
}

func (s *productService) ExistsBySku(ctx context.Context, sku string) (bool, error) {
	exists, err := s.productRepo.ExistsBySku(ctx, sku)
	if err != nil {
		return false, fmt.Errorf("product repository exists by sku: %w", err)
	}
	return exists, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("product repository get product by id: %w", err)
	}
	return product, nil
}

func (s *productService) ListAllProducts(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.ListAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("product repository list all products: %w", err)
	}

	return products, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) (model.Product, error) {
	var product model.Product
	if err := s.db.WithTx(ctx, func(db db.DB) error {
		var err error
		product, err = s.productRepo.
			WithDB(db).
			DeleteProductByID(ctx, id)
		if err != nil {
			return fmt.Errorf("product repository delete product by id: %w", err)
		}

		payload, err := json.Marshal(event.ProductDeletedEvent{
			ProductID: product.ID.String(),
			Sku:       product.Sku,
			DeletedAt: s.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		return s.writeOutbox(ctx, db, event.TopicProductDeleted, product.ID, payload)
	}); err != nil {
		return model.Product{}, fmt.Errorf("db with tx: %w", err)
	}

	if product.Image != nil {
		if err := s.disk.Delete(ctx, *product.Image); err != nil {
			s.logger.WarnContext(ctx, "error deleting product image",
				slog.String("path", *product.Image), slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id.String()))

	return product, nil
}

func (s *productService) writeOutbox(ctx context.Context, db db.DB, topic string, productID uuid.UUID, payload []byte) error {
	key := productID.String()
	if err := s.outboxMsgRepo.
		WithDB(db).
		CreateOutboxMsg(ctx, repository.CreateOutboxMsgParams{
			Topic:        topic,
			Headers:      outbox.BuildHeaders(ctx),
			Payload:      payload,
			PartitionKey: &key,
		}); err != nil {
		return fmt.Errorf("outbox msg repository create outbox msg: %w", err)
	}
	return nil
}

// validate runs the form rules then the domain invariants.
func (s *productService) validate(params CreateProductParams) (model.ProductInput, error) {
	params.Title = strings.TrimSpace(params.Title)
	params.Sku = strings.TrimSpace(params.Sku)

	if err := s.validator.Validate(params); err != nil {
		return model.ProductInput{}, fmt.Errorf("validate create product params: %w", err)
	}

	input := model.ProductInput{
		Title:         params.Title,
		ProductType:   params.ProductType,
		Description:   params.Description,
		Price:         params.Price.Round(2),
		Discount:      params.Discount.Round(2),
		Sku:           params.Sku,
		IsAvailable:   params.IsAvailable,
		StockQuantity: params.StockQuantity,
	}

	candidate := model.Product{
		Title:         input.Title,
		ProductType:   input.ProductType,
		Price:         input.Price,
		Discount:      input.Discount,
		Sku:           input.Sku,
		StockQuantity: input.StockQuantity,
	}
	if err := candidate.Validate(); err != nil {
		return model.ProductInput{}, apperr.ValidationErr.WithMsg(err.Error()).WrapParent(err)
	}

	return input, nil
}

var imageExts = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

func (s *productService) storeImage(ctx context.Context, sku string, img ImageUpload) (string, error) {
	ext := strings.ToLower(path.Ext(img.Filename))
	if _, ok := imageExts[ext]; !ok {
		return "", apperr.ProductImageInvalidErr
	}

	p := path.Join(s.imageDir, fmt.Sprintf("%s_%s%s", sku, s.now().UTC().Format("20060102_150405"), ext))
	if err := s.disk.Put(ctx, p, img.Content); err != nil {
		return "", fmt.Errorf("put product image: %w", err)
	}

	return p, nil
}
