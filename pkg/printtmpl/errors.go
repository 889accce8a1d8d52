package printtmpl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies parse errors.
type ErrorKind string

const (
	// KindMalformedDocument is input that is not well-formed XML or lacks the
	// XML declaration.
	KindMalformedDocument ErrorKind = "MalformedDocument"
	// KindTooLarge is input above the size ceiling or nested too deeply.
	KindTooLarge ErrorKind = "TooLarge"
)

// ParseError represents a single structural or syntactic problem in a template.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	} else if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// NewParseError creates a parse error with position information.
func NewParseError(kind ErrorKind, message string, line, column int) *ParseError {
	return &ParseError{
		Kind:    kind,
		Message: message,
		Line:    line,
		Column:  column,
	}
}

// ParseErrors is the list of problems found while parsing. It is returned as
// the error of Parse so every problem can be reported at once.
type ParseErrors []*ParseError

func (e ParseErrors) Error() string {
	switch len(e) {
	case 0:
		return "parse error"
	case 1:
		return e[0].Error()
	}

	parts := make([]string, 0, len(e)+1)
	parts = append(parts, fmt.Sprintf("%d parse errors:", len(e)))
	for _, pe := range e {
		parts = append(parts, "  "+pe.Error())
	}
	return strings.Join(parts, "\n")
}

// Kind returns the kind of the first error, which decides how the whole
// failure is presented (a TooLarge input has nothing else to report).
func (e ParseErrors) Kind() ErrorKind {
	if len(e) == 0 {
		return KindMalformedDocument
	}
	return e[0].Kind
}

// Messages returns the display string of every error.
func (e ParseErrors) Messages() []string {
	out := make([]string, len(e))
	for i, pe := range e {
		out[i] = pe.Error()
	}
	return out
}

// SemanticKind classifies validation issues found on a well-formed document.
type SemanticKind string

const (
	SemanticInvalidRoot         SemanticKind = "InvalidRoot"
	SemanticMissingBody         SemanticKind = "MissingBody"
	SemanticDuplicateSection    SemanticKind = "DuplicateSection"
	SemanticInvalidVariableName SemanticKind = "InvalidVariableName"
	SemanticUnknownFormat       SemanticKind = "UnknownFormat"
	SemanticMissingAttribute    SemanticKind = "MissingAttribute"
	SemanticMisplacedElse       SemanticKind = "MisplacedElse"
	SemanticInvalidPageSetting  SemanticKind = "InvalidPageSetting"
	SemanticInvalidEntityType   SemanticKind = "InvalidEntityType"
	SemanticUnexpectedElement   SemanticKind = "UnexpectedElement"
)

// SemanticError is one validation issue. Path locates the element in the
// document, e.g. "template/body/loop[1]/variable[2]".
type SemanticError struct {
	Kind    SemanticKind
	Path    string
	Message string
}

func (e *SemanticError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

func newSemanticError(kind SemanticKind, path, format string, args ...interface{}) *SemanticError {
	return &SemanticError{
		Kind:    kind,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}

// RequestCode identifies why an entry point rejected a request.
type RequestCode string

const (
	CodeInvalidRequest    RequestCode = "invalid_request"
	CodeTooLarge          RequestCode = "too_large"
	CodeInvalidEntityType RequestCode = "invalid_entity_type"
	CodeValidationFailed  RequestCode = "validation_failed"
	CodeSampleData        RequestCode = "sample_data"
	CodeInternal          RequestCode = "internal"
)

// RequestError is the typed rejection returned by the preview and validate
// entry points.
type RequestError struct {
	Code    RequestCode `json:"code"`
	Message string      `json:"message"`
	Details []string    `json:"details,omitempty"`
	Cause   error       `json:"-"`
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors.
func (m *MultiError) Errors() []error {
	return m.errors
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsParseError reports whether err is or wraps a parse failure.
func IsParseError(err error) bool {
	var list ParseErrors
	if errors.As(err, &list) {
		return true
	}
	var single *ParseError
	return errors.As(err, &single)
}

// IsTooLarge reports whether err is a parse failure caused by the size or
// depth ceiling.
func IsTooLarge(err error) bool {
	var list ParseErrors
	if errors.As(err, &list) {
		return list.Kind() == KindTooLarge
	}
	var single *ParseError
	return errors.As(err, &single) && single.Kind == KindTooLarge
}

// IsSemanticError reports whether err is a validation issue.
func IsSemanticError(err error) bool {
	var se *SemanticError
	return errors.As(err, &se)
}
