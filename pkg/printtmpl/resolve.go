package printtmpl

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type segmentType int

const (
	segmentKey segmentType = iota
	segmentIndex
)

// pathSegment is one step of a path: a field name or a bracketed index.
type pathSegment struct {
	typ   segmentType
	key   string
	index int
}

// parsePath splits a path such as "member.contacts[0].value" into segments.
// The grammar is a field name followed by any number of ".name" or "[n]"
// steps; names use letters, digits and underscores.
func parsePath(path string) ([]pathSegment, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	pos := 0
	readName := func() string {
		start := pos
		for pos < len(path) && isNameByte(path[pos]) {
			pos++
		}
		return path[start:pos]
	}

	first := readName()
	if first == "" {
		return nil, fmt.Errorf("path %q must start with a field name", path)
	}
	segments := []pathSegment{{typ: segmentKey, key: first}}

	for pos < len(path) {
		switch path[pos] {
		case '.':
			pos++
			name := readName()
			if name == "" {
				return nil, fmt.Errorf("path %q: expected a field name after '.' at offset %d", path, pos)
			}
			segments = append(segments, pathSegment{typ: segmentKey, key: name})
		case '[':
			end := strings.IndexByte(path[pos:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path %q: unterminated '[' at offset %d", path, pos)
			}
			digits := path[pos+1 : pos+end]
			idx, err := strconv.Atoi(digits)
			if err != nil || idx < 0 || strings.TrimLeft(digits, "0123456789") != "" {
				return nil, fmt.Errorf("path %q: index %q is not a non-negative integer", path, digits)
			}
			segments = append(segments, pathSegment{typ: segmentIndex, index: idx})
			pos += end + 1
		default:
			return nil, fmt.Errorf("path %q: unexpected character %q at offset %d", path, path[pos], pos)
		}
	}

	return segments, nil
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// ValidatePath reports whether path follows the path grammar.
func ValidatePath(path string) error {
	_, err := parsePath(path)
	return err
}

// Scope is the data a path is resolved against. Loops create child scopes:
// a lookup checks the loop item first, then the loop variables, then the
// enclosing scopes, so item keys shadow outer names.
type Scope struct {
	data   interface{}
	locals map[string]interface{}
	parent *Scope
}

// NewScope creates the root scope for a data context.
func NewScope(data interface{}) *Scope {
	return &Scope{data: data}
}

// Child creates a nested scope for one loop iteration.
func (s *Scope) Child(item interface{}, locals map[string]interface{}) *Scope {
	return &Scope{data: item, locals: locals, parent: s}
}

func (s *Scope) lookup(key string) (interface{}, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := field(sc.data, key); ok {
			return v, true
		}
		if v, ok := sc.locals[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// Resolve returns the value at path. The second result is false when the
// value is undefined: a missing key, an out of range index, a step through a
// non-container, or a malformed path. Missing data is never an error.
func (s *Scope) Resolve(path string) (interface{}, bool) {
	segments, err := parsePath(path)
	if err != nil {
		return nil, false
	}

	current, ok := s.lookup(segments[0].key)
	if !ok {
		return nil, false
	}

	for _, seg := range segments[1:] {
		switch seg.typ {
		case segmentKey:
			current, ok = field(current, seg.key)
		case segmentIndex:
			current, ok = index(current, seg.index)
		}
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// Resolve resolves path against a plain data context.
func Resolve(path string, data interface{}) (interface{}, bool) {
	return NewScope(data).Resolve(path)
}

// field reads key from a map or struct. A numeric key on a sequence is
// treated as an index so "items.0" works like "items[0]".
func field(container interface{}, key string) (interface{}, bool) {
	switch v := container.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		val, ok := v[key]
		return val, ok
	case map[string]string:
		val, ok := v[key]
		return val, ok
	case []interface{}:
		if idx, err := strconv.Atoi(key); err == nil {
			return index(v, idx)
		}
		return nil, false
	}

	rv := indirect(reflect.ValueOf(container))
	if !rv.IsValid() {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Struct:
		return structField(rv, key)
	case reflect.Slice, reflect.Array:
		if idx, err := strconv.Atoi(key); err == nil {
			return index(container, idx)
		}
	}
	return nil, false
}

// structField matches key against the json tag, the yaml tag, then the field
// name of exported fields.
func structField(rv reflect.Value, key string) (interface{}, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		if tagName(sf.Tag.Get("json")) == key || tagName(sf.Tag.Get("yaml")) == key || sf.Name == key {
			return rv.Field(i).Interface(), true
		}
	}
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.IsExported() && strings.EqualFold(sf.Name, key) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}

func tagName(tag string) string {
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "-" {
		return ""
	}
	return tag
}

func index(container interface{}, i int) (interface{}, bool) {
	if v, ok := container.([]interface{}); ok {
		if i >= 0 && i < len(v) {
			return v[i], true
		}
		return nil, false
	}

	rv := indirect(reflect.ValueOf(container))
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if i < 0 || i >= rv.Len() {
		return nil, false
	}
	return rv.Index(i).Interface(), true
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

// toSequence converts a resolved value into loop items. Strings, byte slices
// and maps are not sequences.
func toSequence(val interface{}) ([]interface{}, bool) {
	switch v := val.(type) {
	case nil:
		return nil, false
	case []interface{}:
		return v, true
	case []map[string]interface{}:
		items := make([]interface{}, len(v))
		for i, item := range v {
			items[i] = item
		}
		return items, true
	case []byte:
		return nil, false
	}

	rv := indirect(reflect.ValueOf(val))
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isTruthy applies scripting-language truthiness: undefined, nil, false, zero,
// the empty string and empty sequences are false; everything else is true.
func isTruthy(val interface{}) bool {
	if val == nil {
		return false
	}

	switch v := val.(type) {
	case bool:
		return v
	case int, int8, int16, int32, int64:
		return reflect.ValueOf(v).Int() != 0
	case uint, uint8, uint16, uint32, uint64:
		return reflect.ValueOf(v).Uint() != 0
	case float32, float64:
		return truthyFloat(reflect.ValueOf(v).Float())
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err == nil && truthyFloat(f)
	case []interface{}:
		return len(v) > 0
	}

	rv := indirect(reflect.ValueOf(val))
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return truthyFloat(rv.Float())
	}
	return true
}

// truthyFloat treats zero and NaN as false.
func truthyFloat(f float64) bool {
	return f != 0 && !math.IsNaN(f)
}
