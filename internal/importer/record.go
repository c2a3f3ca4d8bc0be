package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

// requiredFields are checked in this order; the first missing one is reported.
var requiredFields = []string{"title", "product_type", "price", "sku"}

var hundred = decimal.NewFromInt(100)

// ErrorKind classifies a record failure.
type ErrorKind uint8

const (
	KindValidation ErrorKind = iota
	KindConflict
)

// RecordError is a failure scoped to one record. It never aborts the batch.
type RecordError struct {
	// Index is the 1-based position of the record in an array document,
	// or 0 when the document is a single object.
	Index int
	Kind  ErrorKind
	Field string
	Msg   string
}

func (e RecordError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("record #%d: %s", e.Index, e.Msg)
	}
	return e.Msg
}

// Result is the outcome of validating one record: either Input or Err is set.
type Result struct {
	Input model.ProductInput
	Err   *RecordError
}

// OK reports whether the record passed validation.
func (r Result) OK() bool {
	return r.Err == nil
}

// SkuExistsFunc reports whether a product with sku is already persisted.
type SkuExistsFunc func(ctx context.Context, sku string) (bool, error)

// Policy toggles the manual form rules for imported records.
type Policy struct {
	RequirePositivePrice   bool
	RequireAlphanumericSku bool
}

// RecordValidator validates and coerces raw JSON records into product input.
type RecordValidator struct {
	policy    Policy
	skuExists SkuExistsFunc
}

func NewRecordValidator(policy Policy, skuExists SkuExistsFunc) *RecordValidator {
	return &RecordValidator{
		policy:    policy,
		skuExists: skuExists,
	}
}

// Validate checks one raw record. Record-level problems are returned in the
// Result; the error is reserved for failures of the uniqueness lookup itself.
func (v *RecordValidator) Validate(ctx context.Context, index int, raw any) (Result, error) {
	fail := func(kind ErrorKind, field, format string, args ...any) (Result, error) {
		return Result{Err: &RecordError{
			Index: index,
			Kind:  kind,
			Field: field,
			Msg:   fmt.Sprintf(format, args...),
		}}, nil
	}

	rec, ok := raw.(map[string]any)
	if !ok {
		return fail(KindValidation, "", "record is not an object")
	}

	for _, field := range requiredFields {
		if _, ok := rec[field]; !ok {
			return fail(KindValidation, field, "missing field '%s'", field)
		}
	}

	productType, ok := rec["product_type"].(string)
	if !ok || model.ProductType(productType).Validate() != nil {
		return fail(KindValidation, "product_type", "invalid product type")
	}

	rawDiscount, ok := rec["discount"]
	if !ok {
		rawDiscount = "0"
	}
	discount, ok := parseDecimal(rawDiscount)
	if !ok {
		return fail(KindValidation, "discount", "invalid discount format '%s'", formatRaw(rawDiscount))
	}
	if discount.IsNegative() || discount.GreaterThan(hundred) {
		return fail(KindValidation, "discount", "discount must be between 0%% and 100%%")
	}

	rawPrice := rec["price"]
	price, ok := parseDecimal(rawPrice)
	if !ok {
		return fail(KindValidation, "price", "invalid price format '%s'", formatRaw(rawPrice))
	}
	if v.policy.RequirePositivePrice && !price.IsPositive() {
		return fail(KindValidation, "price", "price must be greater than zero")
	}
	// Range checks above run on the parsed value; storage keeps cents.
	price = price.Round(2)
	if v.policy.RequirePositivePrice && !price.IsPositive() {
		return fail(KindValidation, "price", "price must be at least 0.01")
	}
	if price.Abs().GreaterThanOrEqual(model.MaxPrice) {
		return fail(KindValidation, "price", "price is too large")
	}

	rawQuantity, ok := rec["stock_quantity"]
	if !ok {
		rawQuantity = "0"
	}
	quantity, ok := parseInt(rawQuantity)
	if !ok {
		return fail(KindValidation, "stock_quantity", "invalid quantity format '%s'", formatRaw(rawQuantity))
	}
	if quantity < 0 {
		return fail(KindValidation, "stock_quantity", "quantity must not be negative")
	}
	if quantity > math.MaxInt32 {
		return fail(KindValidation, "stock_quantity", "quantity is too large")
	}

	title, ok := rec["title"].(string)
	if !ok || strings.TrimSpace(title) == "" || len([]rune(title)) > model.TitleMaxLen {
		return fail(KindValidation, "title", "invalid title")
	}

	description := ""
	if rawDescription, ok := rec["description"]; ok && rawDescription != nil {
		description, ok = rawDescription.(string)
		if !ok {
			return fail(KindValidation, "description", "invalid description format '%s'", formatRaw(rawDescription))
		}
	}

	isAvailable := true
	if rawAvailable, ok := rec["is_available"]; ok {
		isAvailable, ok = parseBool(rawAvailable)
		if !ok {
			return fail(KindValidation, "is_available", "invalid availability format '%s'", formatRaw(rawAvailable))
		}
	}

	sku, ok := rec["sku"].(string)
	if !ok || sku == "" || len(sku) > model.SkuMaxLen {
		return fail(KindValidation, "sku", "invalid sku format '%s'", formatRaw(rec["sku"]))
	}
	if v.policy.RequireAlphanumericSku && !validator.IsAlnumText(sku) {
		return fail(KindValidation, "sku", "sku must contain only letters and digits")
	}

	exists, err := v.skuExists(ctx, sku)
	if err != nil {
		return Result{}, fmt.Errorf("check sku %q: %w", sku, err)
	}
	if exists {
		return fail(KindConflict, "sku", "SKU '%s' already exists", sku)
	}

	return Result{Input: model.ProductInput{
		Title:         title,
		ProductType:   model.ProductType(productType),
		Description:   description,
		Price:         price,
		Discount:      discount.Round(2),
		Sku:           sku,
		IsAvailable:   isAvailable,
		StockQuantity: quantity,
	}}, nil
}

// parseDecimal accepts JSON numbers and numeric strings. Booleans, null and
// non-finite values are rejected.
func parseDecimal(raw any) (decimal.Decimal, bool) {
	var s string
	switch v := raw.(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimPrefix(strings.TrimSpace(v), "+")
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromFloat(v), true
	default:
		return decimal.Decimal{}, false
	}

	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// parseInt accepts integral JSON numbers and integer strings. A fractional
// value is a format error rather than being truncated.
func parseInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	case json.Number:
		if n, err := strconv.Atoi(v.String()); err == nil {
			return n, true
		}
		d, err := decimal.NewFromString(v.String())
		if err != nil || !d.IsInteger() || !d.Abs().LessThanOrEqual(decimal.NewFromInt(math.MaxInt64)) {
			return 0, false
		}
		return int(d.IntPart()), true
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int(v), true
	default:
		return 0, false
	}
}

func parseBool(raw any) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, false
		}
		return b, true
	case json.Number:
		switch v.String() {
		case "0":
			return false, true
		case "1":
			return true, true
		}
	}
	return false, false
}

// formatRaw renders a raw JSON value for an error message.
func formatRaw(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return "null"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
