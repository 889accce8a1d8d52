package printtmpl

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Formatter converts a resolved value into display text. Formatters never
// see undefined or nil values; those always render as the empty string.
type Formatter interface {
	// Name returns the key used in format="..." attributes
	Name() string

	// Format returns the display text for value
	Format(value interface{}) string
}

// FormatterRegistry manages available formatters
type FormatterRegistry interface {
	// RegisterFormatter adds a formatter, replacing one with the same name
	RegisterFormatter(f Formatter) error

	// GetFormatter retrieves a formatter by name
	GetFormatter(name string) (Formatter, bool)

	// ListFormatters returns all registered formatter names, sorted
	ListFormatters() []string
}

// DefaultFormatterRegistry is the default implementation of FormatterRegistry
type DefaultFormatterRegistry struct {
	formatters map[string]Formatter
	mutex      sync.RWMutex
}

// NewFormatterRegistry creates an empty formatter registry
func NewFormatterRegistry() *DefaultFormatterRegistry {
	return &DefaultFormatterRegistry{
		formatters: make(map[string]Formatter),
	}
}

// NewDefaultFormatterRegistry creates a registry holding the built-in
// formatters configured with opts.
func NewDefaultFormatterRegistry(opts FormatOptions) *DefaultFormatterRegistry {
	registry := NewFormatterRegistry()
	registerBuiltinFormatters(registry, opts)
	return registry
}

func (r *DefaultFormatterRegistry) RegisterFormatter(f Formatter) error {
	if f == nil {
		return fmt.Errorf("formatter cannot be nil")
	}

	name := f.Name()
	if name == "" {
		return fmt.Errorf("formatter name cannot be empty")
	}
	if strings.ContainsAny(name, " \t\r\n|{}\"'") {
		return fmt.Errorf("formatter name %q contains invalid characters", name)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.formatters[name] = f
	return nil
}

func (r *DefaultFormatterRegistry) GetFormatter(name string) (Formatter, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	f, exists := r.formatters[name]
	return f, exists
}

func (r *DefaultFormatterRegistry) ListFormatters() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasFormatter reports whether name is registered.
func HasFormatter(registry FormatterRegistry, name string) bool {
	_, ok := registry.GetFormatter(name)
	return ok
}

// Format applies the named formatter to value. Undefined and nil values give
// the empty string. An empty name, or a name that is not registered, falls
// back to FormatValue. A formatter that panics yields the empty string.
func Format(registry FormatterRegistry, value interface{}, name string) (out string) {
	if isNilValue(value) {
		return ""
	}
	value = derefValue(value)
	if name == "" || registry == nil {
		return FormatValue(value)
	}

	f, ok := registry.GetFormatter(name)
	if !ok {
		return FormatValue(value)
	}

	defer func() {
		if r := recover(); r != nil {
			GetLogger().WithField("formatter", name).Warn("formatter failed: %v", RecoverError(r))
			out = ""
		}
	}()
	return f.Format(value)
}

// SimpleFormatter adapts a function to the Formatter interface
type SimpleFormatter struct {
	name string
	fn   func(value interface{}) string
}

func NewSimpleFormatter(name string, fn func(value interface{}) string) Formatter {
	return &SimpleFormatter{
		name: name,
		fn:   fn,
	}
}

func (f *SimpleFormatter) Name() string {
	return f.name
}

func (f *SimpleFormatter) Format(value interface{}) string {
	return f.fn(value)
}

func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// derefValue follows non-nil pointers so formatters see the pointed-to value.
func derefValue(value interface{}) interface{} {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer {
		return value
	}
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	return rv.Interface()
}

// FormatValue converts a value to its locale-agnostic string representation.
// Nil gives the empty string, never "null" or "<nil>".
func FormatValue(value interface{}) string {
	if isNilValue(value) {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return strconv.FormatInt(reflect.ValueOf(v).Int(), 10)
	case uint, uint8, uint16, uint32, uint64:
		return strconv.FormatUint(reflect.ValueOf(v).Uint(), 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	case *time.Time:
		return v.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return v.String()
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	}

	rv := indirect(reflect.ValueOf(value))
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			parts = append(parts, FormatValue(rv.Index(i).Interface()))
		}
		return strings.Join(parts, ", ")
	case reflect.Map, reflect.Struct:
		return ""
	}
	return fmt.Sprintf("%v", value)
}

// toNumber converts numeric values and numeric strings to float64.
func toNumber(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(v).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(v).Uint()), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	}

	rv := indirect(reflect.ValueOf(val))
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(rv.String()), 64)
		return f, err == nil
	}
	return 0, false
}
