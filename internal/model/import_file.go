package model

import "encoding/json"

// ImportFile is a staged upload awaiting review or cleanup.
// Content is nil and Error is set when the file is not a valid import document.
type ImportFile struct {
	Filename string          `json:"filename"`
	Content  json.RawMessage `json:"content,omitempty"`
	Size     int64           `json:"size"`
	Error    string          `json:"error,omitempty"`
}
