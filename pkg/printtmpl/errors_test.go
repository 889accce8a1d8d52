package printtmpl

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorTypes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "ParseError with position",
			err:     NewParseError(KindMalformedDocument, "unclosed element <loop>", 4, 5),
			wantMsg: "line 4, column 5: unclosed element <loop>",
		},
		{
			name:    "ParseError with line only",
			err:     NewParseError(KindMalformedDocument, "unexpected EOF", 9, 0),
			wantMsg: "line 9: unexpected EOF",
		},
		{
			name:    "ParseError without position",
			err:     NewParseError(KindTooLarge, "template is too large", 0, 0),
			wantMsg: "template is too large",
		},
		{
			name:    "ParseErrors single",
			err:     ParseErrors{NewParseError(KindMalformedDocument, "bad", 1, 2)},
			wantMsg: "line 1, column 2: bad",
		},
		{
			name: "ParseErrors list",
			err: ParseErrors{
				NewParseError(KindMalformedDocument, "first", 1, 1),
				NewParseError(KindMalformedDocument, "second", 2, 0),
			},
			wantMsg: "2 parse errors:\n  line 1, column 1: first\n  line 2: second",
		},
		{
			name:    "SemanticError with path",
			err:     newSemanticError(SemanticUnknownFormat, "template/body/variable[1]", "unknown format %q", "x"),
			wantMsg: `template/body/variable[1]: unknown format "x"`,
		},
		{
			name:    "SemanticError without path",
			err:     &SemanticError{Kind: SemanticMissingBody, Message: "missing <body> section"},
			wantMsg: "missing <body> section",
		},
		{
			name:    "RequestError",
			err:     &RequestError{Code: CodeTooLarge, Message: "too big"},
			wantMsg: "too big",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	tooLarge := ParseErrors{NewParseError(KindTooLarge, "big", 0, 0)}
	malformed := ParseErrors{NewParseError(KindMalformedDocument, "bad", 1, 1)}
	semantic := newSemanticError(SemanticMissingBody, "template", "missing <body> section")
	wrapped := fmt.Errorf("preview: %w", malformed)

	if !IsParseError(tooLarge) || !IsTooLarge(tooLarge) {
		t.Error("too large parse error not classified")
	}
	if !IsParseError(wrapped) || IsTooLarge(wrapped) {
		t.Error("wrapped malformed error not classified")
	}
	if !IsParseError(malformed[0]) {
		t.Error("single ParseError not classified")
	}
	if IsParseError(semantic) || !IsSemanticError(semantic) {
		t.Error("semantic error misclassified")
	}

	req := &RequestError{Code: CodeValidationFailed, Message: "invalid", Cause: malformed}
	if !IsParseError(req) {
		t.Error("RequestError should unwrap to its cause")
	}
	if IsParseError(errors.New("plain")) || IsSemanticError(errors.New("plain")) {
		t.Error("plain errors must not be classified")
	}
}

func TestMultiError(t *testing.T) {
	multi := NewMultiError()
	if multi.Err() != nil {
		t.Error("empty MultiError should return nil")
	}

	multi.Add(nil)
	multi.Add(errors.New("first"))
	if multi.Len() != 1 {
		t.Errorf("Len() = %d, want 1", multi.Len())
	}
	if multi.Err().Error() != "first" {
		t.Errorf("single error should be returned as is, got %v", multi.Err())
	}

	issue := newSemanticError(SemanticUnknownFormat, "p", "unknown")
	multi.Add(issue)
	err := multi.Err()
	if !strings.Contains(err.Error(), "2 errors occurred:") {
		t.Errorf("unexpected message %q", err.Error())
	}

	var se *SemanticError
	if !errors.As(err, &se) || se != issue {
		t.Error("errors.As should find the semantic error inside the MultiError")
	}
}

func TestRecoverError(t *testing.T) {
	base := errors.New("base")
	tests := []struct {
		value   interface{}
		wantMsg string
	}{
		{base, "panic recovered: base"},
		{"text", "panic recovered: text"},
		{42, "panic recovered: 42"},
	}

	for _, tt := range tests {
		err := RecoverError(tt.value)
		if err.Error() != tt.wantMsg {
			t.Errorf("RecoverError(%v) = %q, want %q", tt.value, err.Error(), tt.wantMsg)
		}
	}
	if !errors.Is(RecoverError(base), base) {
		t.Error("RecoverError should wrap error values")
	}
}
