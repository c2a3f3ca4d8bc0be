package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/service"
)

type productResponse struct {
	ID              uuid.UUID         `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	ProductType     model.ProductType `json:"product_type"`
	Price           decimal.Decimal   `json:"price"`
	Discount        decimal.Decimal   `json:"discount"`
	DiscountedPrice decimal.Decimal   `json:"discounted_price"`
	Sku             string            `json:"sku"`
	IsAvailable     bool              `json:"is_available"`
	StockQuantity   int               `json:"stock_quantity"`
	Image           *string           `json:"image,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

func newProductResponse(p model.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Title:           p.Title,
		Description:     p.Description,
		ProductType:     p.ProductType,
		Price:           p.Price,
		Discount:        p.Discount,
		DiscountedPrice: p.DiscountedPrice(),
		Sku:             p.Sku,
		IsAvailable:     p.IsAvailable,
		StockQuantity:   p.StockQuantity,
		Image:           p.Image,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type productHandler struct {
	responder
	productSvc     service.ProductService
	maxUploadBytes int64
}

func newProductHandler(rs responder, productSvc service.ProductService, maxUploadBytes int64) *productHandler {
	return &productHandler{
		responder:      rs,
		productSvc:     productSvc,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productSvc.ListAllProducts(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service list all products: %w", err))
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, newProductResponse(product))
	}

	h.writeJSON(w, r, http.StatusOK, items)
}

func (h *productHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service get product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, newProductResponse(product))
}

// CreateProduct persists the manual form, or with ?export=json|xml returns
// the validated field set as an attachment without persisting it.
func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeCreateProduct(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if export := r.URL.Query().Get("export"); export != "" {
		h.exportProduct(w, r, params, export)
		return
	}

	product, err := h.productSvc.CreateProduct(r.Context(), params)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service create product: %w", err))
		return
	}

	w.Header().Set("Location", "/products/"+product.ID.String())
	h.writeJSON(w, r, http.StatusCreated, newProductResponse(product))
}

func (h *productHandler) exportProduct(w http.ResponseWriter, r *http.Request, params service.CreateProductParams, export string) {
	format, err := service.ParseExportFormat(export)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.productSvc.ExportProduct(r.Context(), params, format, &buf); err != nil {
		h.writeError(w, r, fmt.Errorf("product service export product: %w", err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": format.Filename(),
	}))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck
	w.Write(buf.Bytes())
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.productSvc.DeleteProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service delete product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("Product %q deleted successfully!", product.Title),
	})
}

func (h *productHandler) decodeCreateProduct(w http.ResponseWriter, r *http.Request) (service.CreateProductParams, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		return h.decodeProductForm(r)
	default:
		var params service.CreateProductParams
		// unset is_available defaults to available
		params.IsAvailable = true
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			if isMaxBytesError(err) {
				return service.CreateProductParams{}, apperr.UploadTooLargeErr
			}
			return service.CreateProductParams{}, apperr.ValidationErr.WithMsg("invalid request body").WrapParent(err)
		}
		return params, nil
	}
}

func (h *productHandler) decodeProductForm(r *http.Request) (service.CreateProductParams, error) {
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isMaxBytesError(err) {
			return service.CreateProductParams{}, apperr.UploadTooLargeErr
		}
		return service.CreateProductParams{}, apperr.ValidationErr.WithMsg("invalid form").WrapParent(err)
	}

	params := service.CreateProductParams{
		Title:       r.FormValue("title"),
		ProductType: model.ProductType(r.FormValue("product_type")),
		Description: r.FormValue("description"),
		Sku:         r.FormValue("sku"),
		IsAvailable: true,
	}

	var err error
	if params.Price, err = formDecimal(r, "price", ""); err != nil {
		return service.CreateProductParams{}, err
	}
	if params.Discount, err = formDecimal(r, "discount", "0"); err != nil {
		return service.CreateProductParams{}, err
	}

	if v := strings.TrimSpace(r.FormValue("stock_quantity")); v != "" {
		if params.StockQuantity, err = strconv.Atoi(v); err != nil {
			return service.CreateProductParams{}, fieldErr("stock_quantity", "must be a whole number")
		}
	}

	if v := strings.TrimSpace(r.FormValue("is_available")); v != "" {
		switch strings.ToLower(v) {
		case "on", "yes":
			params.IsAvailable = true
		default:
			if params.IsAvailable, err = strconv.ParseBool(v); err != nil {
				return service.CreateProductParams{}, fieldErr("is_available", "must be a boolean")
			}
		}
	}

	if r.MultipartForm != nil {
		if file, header, err := r.FormFile("image"); err == nil {
			params.Image = &service.ImageUpload{Filename: header.Filename, Content: file}
		}
	}

	return params, nil
}

func formDecimal(r *http.Request, field, def string) (decimal.Decimal, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		v = def
	}
	if v == "" {
		return decimal.Decimal{}, fieldErr(field, "field is required")
	}

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fieldErr(field, "must be a number")
	}
	return d, nil
}

func fieldErr(field, msg string) error {
	fe := model.FieldError{Field: field, Message: msg}
	return apperr.ValidationErr.WithMsg(fe.Error()).WrapParent(fe)
}

func isMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
