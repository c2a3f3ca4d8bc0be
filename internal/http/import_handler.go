package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/http/metric"
	"github.com/tuanvumaihuynh/planner-shop/internal/importer"
	"github.com/tuanvumaihuynh/planner-shop/internal/importfile"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
)

const importFileField = "json_file"

// ImportRunner imports a staged file.
type ImportRunner interface {
	Run(ctx context.Context, content []byte, stagedName string) (importer.Report, error)
}

// ImportFileStore is the staging directory of uploaded import files.
type ImportFileStore interface {
	Stage(ctx context.Context, r io.Reader) (string, error)
	List(ctx context.Context) ([]model.ImportFile, error)
	Delete(ctx context.Context, filename string) error
	DeleteAll(ctx context.Context) (importfile.DeleteAllResult, error)
}

type importFilesResponse struct {
	Files   []model.ImportFile `json:"files"`
	Message string             `json:"message,omitempty"`
}

type importHandler struct {
	responder
	importer       ImportRunner
	files          ImportFileStore
	metrics        *metric.Metrics
	maxUploadBytes int64
}

func newImportHandler(rs responder, runner ImportRunner, files ImportFileStore, metrics *metric.Metrics, maxUploadBytes int64) *importHandler {
	return &importHandler{
		responder:      rs,
		importer:       runner,
		files:          files,
		metrics:        metrics,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateImport stages the uploaded json_file and imports it. The response is
// 200 when at least one product was imported and 422 otherwise.
func (h *importHandler) CreateImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		if isMaxBytesError(err) {
			h.writeError(w, r, apperr.UploadTooLargeErr)
			return
		}
		h.writeError(w, r, apperr.ValidationErr.WithMsg(importFileField+" is required").WrapParent(err))
		return
	}

	file, header, err := r.FormFile(importFileField)
	if err != nil {
		h.writeError(w, r, apperr.ValidationErr.WithMsg(importFileField+" is required").WrapParent(err))
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".json") {
		h.writeError(w, r, apperr.ImportFileNameInvalidErr)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("read upload: %w", err))
		return
	}

	stagedName, err := h.files.Stage(ctx, bytes.NewReader(content))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("stage import file: %w", err))
		return
	}

	h.logger.InfoContext(ctx, "import upload received",
		slog.String("upload_name", header.Filename),
		slog.String("staged_name", stagedName),
		slog.Int("size", len(content)),
	)

	report, err := h.importer.Run(ctx, content, stagedName)
	if err != nil {
		if errors.Is(err, apperr.ImportFileInvalidErr) {
			h.metrics.ImportRunsTotal.WithLabelValues("invalid").Inc()
		}
		h.writeError(w, r, fmt.Errorf("run import: %w", err))
		return
	}

	h.metrics.ImportRecordsTotal.WithLabelValues("imported").Add(float64(report.Imported))
	h.metrics.ImportRecordsTotal.WithLabelValues("failed").Add(float64(len(report.Errors)))

	status := http.StatusOK
	if report.Succeeded() {
		h.metrics.ImportRunsTotal.WithLabelValues("imported").Inc()
	} else {
		h.metrics.ImportRunsTotal.WithLabelValues("rejected").Inc()
		status = http.StatusUnprocessableEntity
	}

	h.writeJSON(w, r, status, report)
}

func (h *importHandler) ListImportFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("list import files: %w", err))
		return
	}

	res := importFilesResponse{Files: files}
	if len(files) == 0 {
		res.Files = []model.ImportFile{}
		res.Message = "No uploaded files to display."
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

func (h *importHandler) DeleteImportFile(w http.ResponseWriter, r *http.Request) {
	filename, err := pathString(r, "filename")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.files.Delete(r.Context(), filename); err != nil {
		h.writeError(w, r, fmt.Errorf("delete import file: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, messageResponse{
		Message: fmt.Sprintf("File %q deleted successfully!", filename),
	})
}

func (h *importHandler) DeleteAllImportFiles(w http.ResponseWriter, r *http.Request) {
	res, err := h.files.DeleteAll(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("delete all import files: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, res)
}
