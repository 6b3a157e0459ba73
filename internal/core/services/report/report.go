package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rcastellanos/csv-insight-service/internal/core/domain"
)

// Report is the renderable outcome of one analysis run
type Report struct {
	RunID       string                   `json:"run_id"`
	FileName    string                   `json:"file_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Summary     *domain.DataSummary      `json:"summary"`
	Errors      []domain.ValidationError `json:"errors,omitempty"`
}

// Renderer writes a report in one output format
type Renderer interface {
	Render(w io.Writer, rep *Report) error
	Format() string
	Extension() string
}

// statOrder fixes the display order of aggregates in rendered output
var statOrder = []domain.StatisticType{
	domain.StatCount,
	domain.StatSum,
	domain.StatAverage,
	domain.StatMin,
	domain.StatMax,
	domain.StatMedian,
	domain.StatStandardDeviation,
}

// Registry maps format names to renderers
type Registry struct {
	renderers map[string]Renderer
}

// NewRegistry creates a registry with all built-in renderers
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[string]Renderer)}

	r.Register(NewJSONRenderer())
	r.Register(NewHTMLRenderer())
	r.Register(NewXMLRenderer())
	r.Register(NewXLSXRenderer())

	return r
}

// Register adds a renderer, replacing any previous one for its format
func (r *Registry) Register(renderer Renderer) {
	r.renderers[strings.ToLower(renderer.Format())] = renderer
}

// Get returns the renderer for a format name
func (r *Registry) Get(format string) (Renderer, error) {
	renderer, ok := r.renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("no renderer registered for format: %s", format)
	}
	return renderer, nil
}

// Render writes the report in the given format
func (r *Registry) Render(format string, w io.Writer, rep *Report) error {
	renderer, err := r.Get(format)
	if err != nil {
		return err
	}
	return renderer.Render(w, rep)
}

// SupportedFormats returns all registered format names
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.renderers))
	for format := range r.renderers {
		formats = append(formats, format)
	}
	return formats
}

// IsSupported checks whether a format name has a renderer
func (r *Registry) IsSupported(format string) bool {
	_, ok := r.renderers[strings.ToLower(format)]
	return ok
}
