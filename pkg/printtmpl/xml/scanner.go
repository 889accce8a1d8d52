package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// DiagnosticKind classifies a well-formedness problem.
type DiagnosticKind int

const (
	// DiagSyntax is a hard syntax error reported by the XML tokenizer.
	DiagSyntax DiagnosticKind = iota
	// DiagUnclosed is an element that is never closed.
	DiagUnclosed
	// DiagMismatch is a closing tag without a matching opening tag.
	DiagMismatch
	// DiagStructure covers content outside the single root element.
	DiagStructure
	// DiagDepth is nesting beyond the configured maximum depth.
	DiagDepth
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagSyntax:
		return "syntax"
	case DiagUnclosed:
		return "unclosed"
	case DiagMismatch:
		return "mismatch"
	case DiagStructure:
		return "structure"
	case DiagDepth:
		return "depth"
	default:
		return "unknown"
	}
}

// Diagnostic is one well-formedness problem with its position in the input.
// Line and Column are 1-based; Column is 0 when the tokenizer did not report it.
type Diagnostic struct {
	Kind    DiagnosticKind
	Line    int
	Column  int
	Message string
}

func (d Diagnostic) String() string {
	if d.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %s", d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

type openElement struct {
	name   string
	line   int
	column int
}

// Check scans src token by token and returns every well-formedness problem it
// finds. Tag mismatches are recovered from so that one missing closing tag does
// not hide the rest; a syntax error ends the scan. maxDepth <= 0 disables the
// depth limit.
func Check(src string, maxDepth int) []Diagnostic {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = true
	dec.CharsetReader = CharsetReader

	var (
		diags   []Diagnostic
		stack   []openElement
		sawRoot bool
	)

	for {
		line, column := dec.InputPos()
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return append(diags, syntaxDiagnostic(dec, err))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				if sawRoot {
					diags = append(diags, Diagnostic{
						Kind:    DiagStructure,
						Line:    line,
						Column:  column,
						Message: fmt.Sprintf("element <%s> appears after the root element", name),
					})
				}
				sawRoot = true
			}
			if maxDepth > 0 && len(stack) >= maxDepth {
				return append(diags, Diagnostic{
					Kind:    DiagDepth,
					Line:    line,
					Column:  column,
					Message: fmt.Sprintf("element <%s> exceeds the maximum nesting depth of %d", name, maxDepth),
				})
			}
			stack = append(stack, openElement{name: name, line: line, column: column})

		case xml.EndElement:
			var closed []Diagnostic
			stack, closed = closeElement(stack, qualifiedName(t.Name), line, column)
			diags = append(diags, closed...)

		case xml.CharData:
			if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				diags = append(diags, Diagnostic{
					Kind:    DiagStructure,
					Line:    line,
					Column:  column,
					Message: "text content outside the root element",
				})
			}
		}
	}

	for _, open := range stack {
		diags = append(diags, Diagnostic{
			Kind:    DiagUnclosed,
			Line:    open.line,
			Column:  open.column,
			Message: fmt.Sprintf("unclosed element <%s> at end of document", open.name),
		})
	}

	if !sawRoot {
		diags = append(diags, Diagnostic{Kind: DiagStructure, Line: 1, Message: "document has no root element"})
	}

	return diags
}

// closeElement pops the stack down to the element named by a closing tag.
// Elements left open above it are reported as unclosed.
func closeElement(stack []openElement, name string, line, column int) ([]openElement, []Diagnostic) {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].name != name {
			continue
		}
		var diags []Diagnostic
		for j := len(stack) - 1; j > i; j-- {
			open := stack[j]
			diags = append(diags, Diagnostic{
				Kind:    DiagUnclosed,
				Line:    open.line,
				Column:  open.column,
				Message: fmt.Sprintf("unclosed element <%s> (closed implicitly by </%s> at line %d)", open.name, name, line),
			})
		}
		return stack[:i], diags
	}

	return stack, []Diagnostic{{
		Kind:    DiagMismatch,
		Line:    line,
		Column:  column,
		Message: fmt.Sprintf("closing tag </%s> has no matching opening tag", name),
	}}
}

func syntaxDiagnostic(dec *xml.Decoder, err error) Diagnostic {
	line, column := dec.InputPos()

	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		if syntaxErr.Line != line {
			line, column = syntaxErr.Line, 0
		}
		return Diagnostic{Kind: DiagSyntax, Line: line, Column: column, Message: syntaxErr.Msg}
	}
	return Diagnostic{Kind: DiagSyntax, Line: line, Column: column, Message: err.Error()}
}

func qualifiedName(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}
