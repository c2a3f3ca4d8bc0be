package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var (
	errNotUTF8      = errors.New("file is not UTF-8 encoded")
	errTrailingData = errors.New("unexpected data after the JSON value")
	errNotRecords   = errors.New("document must be a JSON object or an array of objects")
)

// Document is a parsed import file.
type Document struct {
	// Batch is true when the file held an array of records.
	Batch   bool
	Records []any
}

// ParseDocument parses content as exactly one JSON value. Numbers are kept as
// json.Number so no precision is lost before field coercion.
func ParseDocument(content []byte) (Document, error) {
	if !utf8.Valid(content) {
		return Document{}, errNotUTF8
	}

	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Document{}, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Document{}, errTrailingData
	}

	switch doc := v.(type) {
	case []any:
		return Document{Batch: true, Records: doc}, nil
	case map[string]any:
		return Document{Records: []any{doc}}, nil
	default:
		return Document{}, errNotRecords
	}
}
