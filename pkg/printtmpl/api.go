package printtmpl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/render"
)

// SampleDataProvider supplies a representative data context for an entity
// type, used to preview templates without real records.
type SampleDataProvider interface {
	SampleData(ctx context.Context, entityType string) (map[string]interface{}, error)
}

// Engine parses, validates and renders print templates. An Engine is safe
// for concurrent use once configured; options must not be applied while it
// is serving calls.
type Engine struct {
	config   *Config
	cache    *DocumentCache
	registry FormatterRegistry
	logger   *Logger
	samples  SampleDataProvider
	validate *validator.Validate

	mu     sync.Mutex
	custom []Formatter
}

// New creates a new engine with the global configuration.
func New() *Engine {
	return NewWithConfig(GetGlobalConfig())
}

// NewWithConfig creates a new engine with a custom configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		cache: NewDocumentCacheWithConfig(CacheConfig{
			MaxSize: config.CacheMaxSize,
			TTL:     config.CacheTTL,
		}),
		registry: NewDefaultFormatterRegistry(FormatOptionsFromConfig(config)),
		validate: newRequestValidator(config),
	}
}

// Option represents a configuration option for the engine.
type Option func(*Engine)

// WithConfig returns an option that replaces the engine configuration. The
// cache, built-in formatters and request limits are rebuilt from it; custom
// formatters registered earlier are kept.
func WithConfig(config *Config) Option {
	return func(e *Engine) {
		fresh := NewWithConfig(config)
		e.mu.Lock()
		defer e.mu.Unlock()
		for _, f := range e.custom {
			if err := fresh.registry.RegisterFormatter(f); err != nil {
				e.log().Warn("formatter %s not carried over: %v", f.Name(), err)
			}
		}
		e.config = fresh.config
		e.cache = fresh.cache
		e.registry = fresh.registry
		e.validate = fresh.validate
	}
}

// WithCache returns an option that sets the cache size (0 disables caching).
func WithCache(maxSize int) Option {
	return func(e *Engine) {
		config := *e.config
		config.CacheMaxSize = maxSize
		e.config = &config
		e.cache = NewDocumentCacheWithConfig(CacheConfig{MaxSize: maxSize, TTL: config.CacheTTL})
	}
}

// WithFormatter returns an option that registers a custom formatter.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		if err := e.RegisterFormatter(f); err != nil {
			e.log().Warn("formatter not registered: %v", err)
		}
	}
}

// WithSampleProvider returns an option that sets the preview data source.
func WithSampleProvider(p SampleDataProvider) Option {
	return func(e *Engine) {
		e.samples = p
	}
}

// WithLogger returns an option that sets the engine logger. Without it the
// global logger is used.
func WithLogger(l *Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewWithOptions creates a new engine with the specified options.
func NewWithOptions(opts ...Option) *Engine {
	engine := New()
	for _, opt := range opts {
		opt(engine)
	}
	return engine
}

func (e *Engine) log() *Logger {
	if e.logger != nil {
		return e.logger
	}
	return GetLogger()
}

// Config returns the engine's configuration.
func (e *Engine) Config() *Config {
	return e.config
}

// Formatters returns the engine's formatter registry.
func (e *Engine) Formatters() FormatterRegistry {
	return e.registry
}

// RegisterFormatter adds a custom formatter that templates can name in
// format attributes. A formatter with a built-in name replaces it.
func (e *Engine) RegisterFormatter(f Formatter) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.registry.RegisterFormatter(f); err != nil {
		return err
	}
	e.custom = append(e.custom, f)
	return nil
}

// Parse converts XML text into a Document, using the engine cache.
func (e *Engine) Parse(xmlText string) (*Document, error) {
	if err := checkInput(xmlText, e.config.MaxInputSize); err != nil {
		e.log().WithField("size", len(xmlText)).Debug("template rejected: %v", err)
		return nil, err
	}

	doc, err := e.cache.Parse(xmlText, func(src string) (*Document, error) {
		return ParseTemplate(src, ParseOptions{
			MaxInputSize: e.config.MaxInputSize,
			MaxDepth:     e.config.MaxDepth,
		})
	})
	if err != nil {
		e.log().WithField("size", len(xmlText)).Debug("template parse failed: %v", err)
		return nil, err
	}
	return doc, nil
}

// ParseFile reads and parses a template file.
func (e *Engine) ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}
	return e.Parse(string(data))
}

// Validate applies the semantic rules to a parsed document.
func (e *Engine) Validate(doc *Document) ValidationResult {
	if doc == nil {
		return parseFailure(errors.New("no document to validate"))
	}
	result := ValidateDocument(doc, e.registry)
	if !result.Valid {
		e.log().WithField("issues", len(result.Issues)).Debug("template has validation issues")
	}
	return result
}

// ValidateXML parses and validates raw XML text. Parse failures are
// reported in the result, never returned as an error.
func (e *Engine) ValidateXML(xmlText string) ValidationResult {
	doc, err := e.Parse(xmlText)
	if err != nil {
		return parseFailure(err)
	}
	return e.Validate(doc)
}

// Render evaluates doc against data. Missing data never fails a render;
// the only error is a nil document.
func (e *Engine) Render(doc *Document, data interface{}) (result *RenderResult, err error) {
	if doc == nil {
		return nil, errors.New("no document to render")
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = nil, RecoverError(r)
			e.log().Error("render failed: %v", err)
		}
	}()

	result = RenderDocument(doc, data, e.registry)
	if e.config.SanitizeHTML {
		result.HTML = render.Sanitize(result.HTML)
	}
	if e.config.MinifyHTML {
		result.HTML = render.MinifyHTML(result.HTML)
	}
	e.log().WithFields(Fields{
		"format":     string(result.Format),
		"html_bytes": len(result.HTML),
	}).Debug("template rendered")
	return result, nil
}

// RenderXML parses, validates and renders XML text in one call. A template
// that does not validate is not rendered.
func (e *Engine) RenderXML(xmlText string, data interface{}) (*RenderResult, error) {
	doc, err := e.Parse(xmlText)
	if err != nil {
		return nil, err
	}
	if result := e.Validate(doc); !result.Valid {
		return nil, result.Err()
	}
	return e.Render(doc, data)
}

// ClearCache removes all documents from the cache.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// DefaultEngine is the global default engine instance.
// It uses the global configuration.
var DefaultEngine = New()

// Module-level convenience functions that use the default engine.

// Parse converts XML text into a Document using the default engine.
func Parse(xmlText string) (*Document, error) {
	return DefaultEngine.Parse(xmlText)
}

// ParseFile reads and parses a template file using the default engine.
func ParseFile(path string) (*Document, error) {
	return DefaultEngine.ParseFile(path)
}

// Validate applies the semantic rules to doc using the default engine.
func Validate(doc *Document) ValidationResult {
	return DefaultEngine.Validate(doc)
}

// ValidateXML parses and validates XML text using the default engine.
func ValidateXML(xmlText string) ValidationResult {
	return DefaultEngine.ValidateXML(xmlText)
}

// Render evaluates doc against data using the default engine.
func Render(doc *Document, data interface{}) (*RenderResult, error) {
	return DefaultEngine.Render(doc, data)
}

// Preview renders XML text against sample data using the default engine.
func Preview(ctx context.Context, req PreviewRequest) PreviewResponse {
	return DefaultEngine.Preview(ctx, req)
}

// RegisterGlobalFormatter adds a custom formatter to the default engine.
func RegisterGlobalFormatter(f Formatter) error {
	return DefaultEngine.RegisterFormatter(f)
}
