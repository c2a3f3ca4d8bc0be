package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/planner-shop/api-contract"
	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/config"
	"github.com/tuanvumaihuynh/planner-shop/internal/importer"
	"github.com/tuanvumaihuynh/planner-shop/internal/importfile"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/service"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
)

type fakeProductService struct {
	mu       sync.Mutex
	products []model.Product
}

func (s *fakeProductService) add(input model.ProductInput) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if p.Sku == input.Sku {
			return model.Product{}, apperr.SkuConflictErr
		}
	}

	p := model.Product{
		ID:            uuid.New(),
		Title:         input.Title,
		ProductType:   input.ProductType,
		Price:         input.Price,
		Discount:      input.Discount,
		Sku:           input.Sku,
		IsAvailable:   input.IsAvailable,
		StockQuantity: input.StockQuantity,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	s.products = append(s.products, p)
	return p, nil
}

func (s *fakeProductService) CreateProduct(_ context.Context, params service.CreateProductParams) (model.Product, error) {
	return s.add(model.ProductInput{
		Title:       params.Title,
		ProductType: params.ProductType,
		Price:       params.Price,
		Discount:    params.Discount,
		Sku:         params.Sku,
		IsAvailable: params.IsAvailable,
	})
}

func (s *fakeProductService) CreateImportedProduct(_ context.Context, input model.ProductInput) (model.Product, error) {
	return s.add(input)
}

func (s *fakeProductService) ExistsBySku(_ context.Context, sku string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.Sku == sku {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeProductService) GetProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, apperr.ProductNotFoundErr
}

func (s *fakeProductService) ListAllProducts(context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Product(nil), s.products...), nil
}

func (s *fakeProductService) DeleteProduct(_ context.Context, id uuid.UUID) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return p, nil
		}
	}
	return model.Product{}, apperr.ProductNotFoundErr
}

func (s *fakeProductService) ExportProduct(_ context.Context, params service.CreateProductParams, format service.ExportFormat, w io.Writer) error {
	_, err := io.WriteString(w, string(format)+":"+params.Sku)
	return err
}

type fakeCategoryService struct{}

func (fakeCategoryService) CreateCategory(_ context.Context, params service.CreateCategoryParams) (model.Category, error) {
	return model.Category{ID: uuid.New(), Name: params.Name}, nil
}

func (fakeCategoryService) ListAllCategories(context.Context) ([]model.Category, error) {
	return []model.Category{}, nil
}

type fakeHealth struct{ err error }

func (h fakeHealth) IsHealthy(context.Context) (bool, error) { return h.err == nil, h.err }

type env struct {
	router   chi.Router
	products *fakeProductService
}

func newEnv(t *testing.T, health HealthChecker) env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	d, err := disk.NewLocal(t.TempDir())
	require.NoError(t, err)

	products := &fakeProductService{}
	files := importfile.NewStore(logger, d, "temp_imports")
	runner := importer.New(logger, products, files, importer.Options{})

	reg := prometheus.NewRegistry()
	svc := New(config.HTTP{Swagger: true, MaxUploadBytes: 1 << 20}, logger, reg, reg, Deps{
		ProductSvc:  products,
		CategorySvc: fakeCategoryService{},
		Importer:    runner,
		ImportFiles: files,
		Health:      health,
	})

	return env{router: svc.Router(), products: products}
}

func (e env) do(req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	e.router.ServeHTTP(resp, req)
	return resp
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("json_file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/imports", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v))
	return v
}

func TestImportRoutes(t *testing.T) {
	t.Parallel()

	t.Run("Should import a batch and report failing records by index", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(uploadRequest(t, "catalog.json", `[
			{"title":"Planner","product_type":"planner","price":"10.00","sku":"P1"},
			{"title":"Kit","product_type":"kit","price":5,"sku":"K1","stock_quantity":3},
			{"title":"Broken","product_type":"planner","sku":"B1"}
		]`))

		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		report := decode[importer.Report](t, resp)
		assert.Equal(t, 2, report.Imported)
		assert.Equal(t, []string{"P1", "K1"}, report.Skus)
		require.Len(t, report.Errors, 1)
		assert.Equal(t, "record #3: missing field 'price'", report.Errors[0])
		assert.Len(t, e.products.products, 2)

		// staged file is removed after the run
		files := decode[importFilesResponse](t, e.do(httptest.NewRequest(http.MethodGet, "/imports/files", nil)))
		assert.Empty(t, files.Files)
		assert.Equal(t, "No uploaded files to display.", files.Message)
	})

	t.Run("Should answer 422 when nothing was imported", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(uploadRequest(t, "one.json", `{"title":"x","product_type":"poster","price":"1","sku":"S1"}`))

		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		report := decode[importer.Report](t, resp)
		assert.Zero(t, report.Imported)
		assert.Equal(t, "No products were imported. Errors: invalid product type", report.Message)
	})

	t.Run("Should reject a file that is not JSON", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(uploadRequest(t, "bad.json", `{not json`))

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ImportFileInvalidCode, decode[map[string]any](t, resp)["code"])
		assert.Empty(t, e.products.products)
	})

	t.Run("Should reject a non json file name", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(uploadRequest(t, "catalog.csv", `[]`))

		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.ImportFileNameInvalidCode, decode[map[string]any](t, resp)["code"])
	})

	t.Run("Should require the json_file field", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("other", "x"))
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/imports", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp := e.do(req)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should report a missing file on delete", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(httptest.NewRequest(http.MethodDelete, "/imports/files/import_deadbeef_20250101_000000.json", nil))

		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, "file not found", decode[map[string]any](t, resp)["message"])
	})

	t.Run("Should report nothing to delete on an empty staging directory", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(httptest.NewRequest(http.MethodDelete, "/imports/files", nil))

		require.Equal(t, http.StatusOK, resp.Code)
		res := decode[importfile.DeleteAllResult](t, resp)
		assert.Zero(t, res.Deleted)
		assert.Equal(t, "No files to delete.", res.Message)
	})
}

func TestProductRoutes(t *testing.T) {
	t.Parallel()

	t.Run("Should list products with the discounted price", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})
		_, err := e.products.add(model.ProductInput{
			Title:       "Planner",
			ProductType: model.ProductTypePlanner,
			Price:       decimal.RequireFromString("20"),
			Discount:    decimal.RequireFromString("25"),
			Sku:         "P1",
		})
		require.NoError(t, err)

		resp := e.do(httptest.NewRequest(http.MethodGet, "/products", nil))

		require.Equal(t, http.StatusOK, resp.Code)
		items := decode[[]map[string]any](t, resp)
		require.Len(t, items, 1)
		assert.Equal(t, "15", items[0]["discounted_price"])
	})

	t.Run("Should create a product from json", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		req := httptest.NewRequest(http.MethodPost, "/products",
			strings.NewReader(`{"title":"Planner","product_type":"planner","price":"9.90","sku":"P1"}`))
		req.Header.Set("Content-Type", "application/json")

		resp := e.do(req)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		assert.NotEmpty(t, resp.Header().Get("Location"))
		assert.Equal(t, true, decode[map[string]any](t, resp)["is_available"])
	})

	t.Run("Should create a product from a multipart form", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		for k, v := range map[string]string{
			"title": "Sticker", "product_type": "sticker", "price": "1.5", "sku": "S1", "is_available": "false",
		} {
			require.NoError(t, mw.WriteField(k, v))
		}
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/products", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		resp := e.do(req)
		require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
		assert.Equal(t, false, decode[map[string]any](t, resp)["is_available"])
	})

	t.Run("Should reject a malformed price in a form", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader("title=x&product_type=kit&price=abc&sku=S1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp := e.do(req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		res := decode[map[string]any](t, resp)
		assert.Equal(t, apperr.ValidationErrorCode, res["code"])
		assert.NotEmpty(t, res["details"])
	})

	t.Run("Should return conflict for a duplicate sku", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		for _, want := range []int{http.StatusCreated, http.StatusConflict} {
			req := httptest.NewRequest(http.MethodPost, "/products",
				strings.NewReader(`{"title":"Planner","product_type":"planner","price":"9.90","sku":"P1"}`))
			assert.Equal(t, want, e.do(req).Code)
		}
	})

	t.Run("Should return the export as an attachment", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		req := httptest.NewRequest(http.MethodPost, "/products?export=xml",
			strings.NewReader(`{"title":"Planner","product_type":"planner","price":"9.90","sku":"P1"}`))

		resp := e.do(req)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "application/xml", resp.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename=product_export.xml`, resp.Header().Get("Content-Disposition"))
		assert.Equal(t, "xml:P1", resp.Body.String())
		assert.Empty(t, e.products.products)
	})

	t.Run("Should reject an unknown export format", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		req := httptest.NewRequest(http.MethodPost, "/products?export=csv",
			strings.NewReader(`{"title":"Planner","product_type":"planner","price":"9.90","sku":"P1"}`))

		resp := e.do(req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, apperr.UnsupportedExportFormatCode, decode[map[string]any](t, resp)["code"])
	})

	t.Run("Should reject a malformed id", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(httptest.NewRequest(http.MethodGet, "/products/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should return 404 when deleting a missing product", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})

		resp := e.do(httptest.NewRequest(http.MethodDelete, "/products/"+uuid.NewString(), nil))
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, apperr.ProductNotFoundCode, decode[map[string]any](t, resp)["code"])
	})

	t.Run("Should delete a product by id", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})
		p, err := e.products.add(model.ProductInput{Title: "Kit", ProductType: model.ProductTypeKit, Sku: "K1"})
		require.NoError(t, err)

		resp := e.do(httptest.NewRequest(http.MethodDelete, "/products/"+p.ID.String(), nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, `Product "Kit" deleted successfully!`, decode[messageResponse](t, resp).Message)
	})
}

func TestSystemRoutes(t *testing.T) {
	t.Parallel()

	t.Run("Should report healthy", func(t *testing.T) {
		t.Parallel()
		resp := newEnv(t, fakeHealth{}).do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should report unhealthy when the database is down", func(t *testing.T) {
		t.Parallel()
		resp := newEnv(t, fakeHealth{err: errors.New("ping failed")}).do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	})

	t.Run("Should answer unknown routes with a json 404", func(t *testing.T) {
		t.Parallel()
		resp := newEnv(t, fakeHealth{}).do(httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, apperr.RouteNotFoundCode, decode[map[string]any](t, resp)["code"])
	})

	t.Run("Should expose metrics", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, fakeHealth{})
		e.do(httptest.NewRequest(http.MethodGet, "/products", nil))

		resp := e.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "planner_shop_http_requests_total")
	})
}

func TestRoutesAreDocumented(t *testing.T) {
	t.Parallel()

	doc, err := openapi3.NewLoader().LoadFromData(apicontract.GetSpecBytes())
	require.NoError(t, err)

	undocumented := map[string]struct{}{
		"/metrics": {}, "/docs": {}, "/docs/openapi.yml": {},
	}

	e := newEnv(t, fakeHealth{})
	err = chi.Walk(e.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if route != "/" {
			route = strings.TrimSuffix(route, "/")
		}
		if _, skip := undocumented[route]; skip {
			return nil
		}

		item := doc.Paths.Find(route)
		if assert.NotNil(t, item, "route %s is not documented", route) {
			assert.NotNil(t, item.GetOperation(method), "%s %s is not documented", method, route)
		}
		return nil
	})
	require.NoError(t, err)
}
