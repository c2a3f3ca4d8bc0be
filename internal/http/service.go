package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	apicontract "github.com/tuanvumaihuynh/planner-shop/api-contract"
	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/config"
	"github.com/tuanvumaihuynh/planner-shop/internal/http/metric"
	"github.com/tuanvumaihuynh/planner-shop/internal/http/middleware"
	"github.com/tuanvumaihuynh/planner-shop/internal/http/swagger"
	"github.com/tuanvumaihuynh/planner-shop/internal/service"
)

var tracer = otel.Tracer("github.com/tuanvumaihuynh/planner-shop/internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	metrics  *metric.Metrics
	gatherer prometheus.Gatherer

	productSvc  service.ProductService
	categorySvc service.CategoryService
	importer    ImportRunner
	importFiles ImportFileStore
	health      HealthChecker
}

type CleanupFunc func(ctx context.Context) error

// Deps are the collaborators the HTTP service routes to.
type Deps struct {
	ProductSvc  service.ProductService
	CategorySvc service.CategoryService
	Importer    ImportRunner
	ImportFiles ImportFileStore
	Health      HealthChecker
}

func New(
	cfg config.HTTP,
	log *slog.Logger,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	deps Deps,
) *Service {
	return &Service{
		cfg:         cfg,
		logger:      log.With(slog.String("service", "http")),
		metrics:     metric.New(reg),
		gatherer:    gatherer,
		productSvc:  deps.ProductSvc,
		categorySvc: deps.CategorySvc,
		importer:    deps.Importer,
		importFiles: deps.ImportFiles,
		health:      deps.Health,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	return s.RunWithServer(ctx, s.Router())
}

// Router builds the fully wired handler.
func (s *Service) Router() chi.Router {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		swagger.Register(r, "Planner Shop API", apicontract.GetSpecBytes())
	}

	s.RegisterHandlers(r)

	return r
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) {
	rs := responder{logger: s.logger}

	products := newProductHandler(rs, s.productSvc, s.cfg.MaxUploadBytes)
	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.ListProducts)
		r.Post("/", products.CreateProduct)
		r.Get("/{id}", products.GetProduct)
		r.Delete("/{id}", products.DeleteProduct)
	})

	categories := newCategoryHandler(rs, s.categorySvc)
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", categories.ListCategories)
		r.Post("/", categories.CreateCategory)
	})

	imports := newImportHandler(rs, s.importer, s.importFiles, s.metrics, s.cfg.MaxUploadBytes)
	r.Route("/imports", func(r chi.Router) {
		r.Post("/", imports.CreateImport)
		r.Get("/files", imports.ListImportFiles)
		r.Delete("/files", imports.DeleteAllImportFiles)
		r.Delete("/files/{filename}", imports.DeleteImportFile)
	})

	health := &healthHandler{responder: rs, checker: s.health}
	r.Get("/healthz", health.Healthz)

	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.writeError(w, r, apperr.RouteNotFoundErr)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rs.writeError(w, r, apperr.MethodNotAllowedErr)
	})
}
