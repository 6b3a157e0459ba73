package report

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes the report as indented JSON
type JSONRenderer struct{}

// NewJSONRenderer creates a JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render implements Renderer
func (r *JSONRenderer) Render(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// Format implements Renderer
func (r *JSONRenderer) Format() string { return "json" }

// Extension implements Renderer
func (r *JSONRenderer) Extension() string { return ".json" }
