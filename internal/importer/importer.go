package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
)

// ProductStore is the persistence handle used by an import.
type ProductStore interface {
	ExistsBySku(ctx context.Context, sku string) (bool, error)
	// CreateImportedProduct persists one record. A sku collision must be
	// reported as apperr.SkuConflictErr.
	CreateImportedProduct(ctx context.Context, input model.ProductInput) (model.Product, error)
}

// StagingArea removes staged uploads once they have been processed.
type StagingArea interface {
	Remove(ctx context.Context, name string) error
}

// Options configures an Importer.
type Options struct {
	Policy Policy
	// KeepInvalidFiles retains uploads that fail to parse so they can be
	// inspected through the file listing.
	KeepInvalidFiles bool
}

// Importer runs the batch import of a staged JSON file.
type Importer struct {
	logger    *slog.Logger
	store     ProductStore
	staging   StagingArea
	validator *RecordValidator
	opts      Options
}

func New(logger *slog.Logger, store ProductStore, staging StagingArea, opts Options) *Importer {
	return &Importer{
		logger:    logger.With(slog.String("component", "importer")),
		store:     store,
		staging:   staging,
		validator: NewRecordValidator(opts.Policy, store.ExistsBySku),
		opts:      opts,
	}
}

// Run imports every record of content, which was staged as stagedName.
//
// Records are processed in order and persisted one by one: a failing record
// is added to the report and never rolls back earlier ones. A file that is
// not valid JSON aborts the run with apperr.ImportFileInvalidErr. The staged
// file is removed once the run ends.
func (i *Importer) Run(ctx context.Context, content []byte, stagedName string) (Report, error) {
	logger := i.logger.With(slog.String("staged_name", stagedName))

	doc, err := ParseDocument(content)
	if err != nil {
		if !i.opts.KeepInvalidFiles {
			i.removeStaged(ctx, logger, stagedName)
		}
		logger.WarnContext(ctx, "import file rejected", slog.Any("error", err))
		return Report{}, apperr.ImportFileInvalidErr.
			WithMsg(fmt.Sprintf("import file is not valid: %v", err)).
			WrapParent(err)
	}
	defer i.removeStaged(ctx, logger, stagedName)

	report := Report{
		StagedName: stagedName,
		Batch:      doc.Batch,
		Total:      len(doc.Records),
		Skus:       []string{},
		Errors:     []string{},
	}

	for n, raw := range doc.Records {
		index := 0
		if doc.Batch {
			index = n + 1
		}

		res, err := i.importRecord(ctx, index, raw)
		if err != nil {
			logger.ErrorContext(ctx, "import aborted",
				slog.Int("record", n+1),
				slog.Int("imported", report.Imported),
				slog.Any("error", err))
			return Report{}, fmt.Errorf("import record %d: %w", n+1, err)
		}

		if !res.OK() {
			logger.DebugContext(ctx, "record rejected", slog.String("reason", res.Err.Error()))
			report.reject(*res.Err)
			continue
		}
		report.accept(res.Input.Sku, res.Input.Title)
	}

	report.finish()
	logger.InfoContext(ctx, "import finished",
		slog.Int("total", report.Total),
		slog.Int("imported", report.Imported),
		slog.Int("errors", len(report.Errors)))

	return report, nil
}

func (i *Importer) importRecord(ctx context.Context, index int, raw any) (Result, error) {
	res, err := i.validator.Validate(ctx, index, raw)
	if err != nil || !res.OK() {
		return res, err
	}

	if _, err := i.store.CreateImportedProduct(ctx, res.Input); err != nil {
		if errors.Is(err, apperr.SkuConflictErr) {
			// lost a race with a concurrent insert after the existence check
			return Result{Err: &RecordError{
				Index: index,
				Kind:  KindConflict,
				Field: "sku",
				Msg:   fmt.Sprintf("SKU '%s' already exists", res.Input.Sku),
			}}, nil
		}
		return Result{}, fmt.Errorf("create product: %w", err)
	}

	return res, nil
}

func (i *Importer) removeStaged(ctx context.Context, logger *slog.Logger, name string) {
	if err := i.staging.Remove(ctx, name); err != nil {
		logger.WarnContext(ctx, "error removing staged import file", slog.Any("error", err))
	}
}
