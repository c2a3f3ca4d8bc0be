package service

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
)

type ExportFormat string

const (
	ExportFormatJSON ExportFormat = "json"
	ExportFormatXML  ExportFormat = "xml"
)

func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(s); f {
	case ExportFormatJSON, ExportFormatXML:
		return f, nil
	default:
		return "", apperr.UnsupportedExportFormatErr
	}
}

// Filename is the attachment name of an export in this format.
func (f ExportFormat) Filename() string {
	return "product_export." + string(f)
}

func (f ExportFormat) ContentType() string {
	if f == ExportFormatXML {
		return "application/xml"
	}
	return "application/json"
}

// productExport is the flat field set written by an export.
type productExport struct {
	XMLName       xml.Name `json:"-" xml:"product"`
	Title         string   `json:"title" xml:"title"`
	ProductType   string   `json:"product_type" xml:"product_type"`
	Description   string   `json:"description" xml:"description"`
	Price         string   `json:"price" xml:"price"`
	Discount      string   `json:"discount" xml:"discount"`
	Sku           string   `json:"sku" xml:"sku"`
	IsAvailable   bool     `json:"is_available" xml:"is_available"`
	StockQuantity int      `json:"stock_quantity" xml:"stock_quantity"`
	Image         *string  `json:"image" xml:"image,omitempty"`
}

func (s *productService) ExportProduct(_ context.Context, params CreateProductParams, format ExportFormat, w io.Writer) error {
	input, err := s.validate(params)
	if err != nil {
		return err
	}

	rec := productExport{
		Title:         input.Title,
		ProductType:   string(input.ProductType),
		Description:   input.Description,
		Price:         input.Price.StringFixed(2),
		Discount:      input.Discount.StringFixed(2),
		Sku:           input.Sku,
		IsAvailable:   input.IsAvailable,
		StockQuantity: input.StockQuantity,
	}
	if params.Image != nil {
		rec.Image = &params.Image.Filename
	}

	switch format {
	case ExportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode json export: %w", err)
		}
	case ExportFormatXML:
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return fmt.Errorf("write xml header: %w", err)
		}
		if err := xml.NewEncoder(w).Encode(rec); err != nil {
			return fmt.Errorf("encode xml export: %w", err)
		}
	default:
		return apperr.UnsupportedExportFormatErr
	}

	return nil
}
