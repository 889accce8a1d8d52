package xml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Load builds the generic element tree for src. It is meant to be called after
// Check reported no problems; errors returned here are still well-formedness
// errors, just without position information.
func Load(src string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: CharsetReader,
		PreserveCData: true,
	}

	if err := doc.ReadFromString(src); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}
	if doc.Root() == nil {
		return nil, errors.New("document has no root element")
	}
	return doc, nil
}

// InnerText concatenates the character data directly under e, CDATA included.
// Text inside child elements is ignored.
func InnerText(e *etree.Element) string {
	var sb strings.Builder
	for _, tok := range e.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// Attr returns the value of the attribute with the given key and whether it
// was present.
func Attr(e *etree.Element, key string) (string, bool) {
	a := e.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}
