package printtmpl

import (
	"fmt"
	"strings"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/xml"
)

// ParseOptions bound the work the parser is willing to do.
type ParseOptions struct {
	// MaxInputSize is the largest input accepted, in bytes.
	MaxInputSize int
	// MaxDepth is the deepest element nesting accepted. 0 disables the limit.
	MaxDepth int
}

// DefaultParseOptions returns the limits from the default configuration.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		MaxInputSize: DefaultMaxInputSize,
		MaxDepth:     DefaultMaxDepth,
	}
}

// ParseTemplate converts XML text into a Document. Every well-formedness
// problem is reported, as ParseErrors, instead of stopping at the first one.
// The size ceiling is enforced before any parser state is allocated.
func ParseTemplate(src string, opts ParseOptions) (*Document, error) {
	if opts.MaxInputSize <= 0 {
		opts.MaxInputSize = DefaultMaxInputSize
	}

	if err := checkInput(src, opts.MaxInputSize); err != nil {
		return nil, err
	}

	src = strings.TrimPrefix(src, "\ufeff")
	if !hasXMLDeclaration(src) {
		return nil, ParseErrors{NewParseError(KindMalformedDocument,
			`missing XML declaration, the template must start with <?xml version="1.0"?>`, 1, 1)}
	}

	if diags := xml.Check(src, opts.MaxDepth); len(diags) > 0 {
		errs := make(ParseErrors, 0, len(diags))
		for _, d := range diags {
			kind := KindMalformedDocument
			if d.Kind == xml.DiagDepth {
				kind = KindTooLarge
			}
			errs = append(errs, NewParseError(kind, d.Message, d.Line, d.Column))
		}
		return nil, errs
	}

	tree, err := xml.Load(src)
	if err != nil {
		return nil, ParseErrors{NewParseError(KindMalformedDocument, err.Error(), 0, 0)}
	}

	return liftDocument(tree), nil
}

// checkInput rejects empty and oversized input. It runs before the input is
// copied, hashed or scanned.
func checkInput(src string, maxSize int) error {
	if maxSize <= 0 {
		maxSize = DefaultMaxInputSize
	}
	if len(src) > maxSize {
		return ParseErrors{NewParseError(KindTooLarge,
			fmt.Sprintf("template is %d bytes, the maximum is %d bytes", len(src), maxSize), 0, 0)}
	}
	if strings.TrimSpace(src) == "" {
		return ParseErrors{NewParseError(KindMalformedDocument, "template is empty", 0, 0)}
	}
	return nil
}

// hasXMLDeclaration reports whether src starts with an XML declaration,
// ignoring a byte order mark and leading whitespace.
func hasXMLDeclaration(src string) bool {
	s := strings.TrimLeft(strings.TrimPrefix(src, "\ufeff"), " \t\r\n")
	if !strings.HasPrefix(s, "<?xml") || len(s) < 6 {
		return false
	}
	switch s[5] {
	case ' ', '\t', '\r', '\n', '?':
		return true
	}
	return false
}
