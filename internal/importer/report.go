package importer

import (
	"fmt"
	"strings"
)

// Report summarizes one import run.
type Report struct {
	StagedName string   `json:"staged_name"`
	Batch      bool     `json:"batch"`
	Total      int      `json:"total"`
	Imported   int      `json:"imported"`
	Skus       []string `json:"skus"`
	Errors     []string `json:"errors"`
	Message    string   `json:"message"`

	title string
}

// Succeeded reports whether at least one product was imported.
func (r Report) Succeeded() bool {
	return r.Imported > 0
}

func (r *Report) accept(sku, title string) {
	r.Imported++
	r.Skus = append(r.Skus, sku)
	r.title = title
}

func (r *Report) reject(err RecordError) {
	r.Errors = append(r.Errors, err.Error())
}

func (r *Report) finish() {
	errs := strings.Join(r.Errors, ", ")

	switch {
	case r.Imported > 0 && !r.Batch:
		r.Message = fmt.Sprintf("Product %q imported successfully!", r.title)
	case r.Imported > 0:
		r.Message = fmt.Sprintf("Successfully imported %d products!", r.Imported)
		if len(r.Errors) > 0 {
			r.Message += " Errors: " + errs
		}
	case r.Total == 0:
		r.Message = "The import file contains no records."
	default:
		r.Message = "No products were imported. Errors: " + errs
	}
}
