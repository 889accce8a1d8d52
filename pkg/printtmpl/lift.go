package printtmpl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/xml"
)

// Directive and section tag names
const (
	tagTemplate  = "template"
	tagMetadata  = "metadata"
	tagPage      = "page"
	tagMargins   = "margins"
	tagStyles    = "styles"
	tagBody      = "body"
	tagVariable  = "variable"
	tagLoop      = "loop"
	tagCondition = "condition"
	tagElse      = "else"
)

// placeholderPattern matches {{path}} and {{ path | format }} in text and
// attribute values.
var placeholderPattern = regexp.MustCompile(`\{\{([^}]*)\}\}`)

// lifter turns the generic element tree into typed nodes and records the
// semantic problems it notices on the way.
type lifter struct {
	issues []*SemanticError
}

func (l *lifter) issue(kind SemanticKind, path, format string, args ...interface{}) {
	l.issues = append(l.issues, newSemanticError(kind, path, format, args...))
}

func liftDocument(tree *etree.Document) *Document {
	root := tree.Root()
	doc := &Document{
		Root:     root.FullTag(),
		Metadata: make(map[string]string),
		Page: Page{
			Format:      PageA4,
			Orientation: Portrait,
			Margins:     DefaultMargins,
		},
	}
	if v, ok := xml.Attr(root, "version"); ok {
		doc.Version = v
	}

	l := &lifter{}
	seen := make(map[string]bool)
	for _, child := range root.ChildElements() {
		tag := child.FullTag()
		path := doc.Root + "/" + tag

		switch tag {
		case tagMetadata, tagPage, tagStyles, tagBody:
			if seen[tag] {
				l.issue(SemanticDuplicateSection, path, "duplicate <%s> section, only the first one is used", tag)
				continue
			}
			seen[tag] = true
		}

		switch tag {
		case tagMetadata:
			l.liftMetadata(child, doc)
		case tagPage:
			l.liftPage(child, path, doc)
		case tagStyles:
			doc.Styles = xml.InnerText(child)
			doc.HasStyles = true
		case tagBody:
			doc.Body = l.liftNodes(child.Child, path, make(map[string]int))
			doc.HasBody = true
		default:
			l.issue(SemanticUnexpectedElement, path, "unexpected element <%s> in <%s>", tag, doc.Root)
		}
	}

	doc.issues = l.issues
	return doc
}

// liftMetadata stores the text of each child element, and each attribute of
// the metadata element itself, under its name.
func (l *lifter) liftMetadata(e *etree.Element, doc *Document) {
	for _, a := range e.Attr {
		doc.Metadata[a.FullKey()] = strings.TrimSpace(a.Value)
	}
	for _, child := range e.ChildElements() {
		doc.Metadata[child.FullTag()] = strings.TrimSpace(xml.InnerText(child))
	}
}

func (l *lifter) liftPage(e *etree.Element, path string, doc *Document) {
	if v, ok := xml.Attr(e, "format"); ok && v != "" {
		if format, valid := parsePageFormat(v); valid {
			doc.Page.Format = format
		} else {
			l.issue(SemanticInvalidPageSetting, path, "invalid page format %q, expected A4, A3 or Letter", v)
		}
	}

	if v, ok := xml.Attr(e, "orientation"); ok && v != "" {
		switch Orientation(strings.ToLower(v)) {
		case Portrait:
			doc.Page.Orientation = Portrait
		case Landscape:
			doc.Page.Orientation = Landscape
		default:
			l.issue(SemanticInvalidPageSetting, path, "invalid page orientation %q, expected portrait or landscape", v)
		}
	}

	if m := e.SelectElement(tagMargins); m != nil {
		mpath := path + "/" + tagMargins
		sides := []struct {
			name string
			dst  *float64
		}{
			{"top", &doc.Page.Margins.Top},
			{"right", &doc.Page.Margins.Right},
			{"bottom", &doc.Page.Margins.Bottom},
			{"left", &doc.Page.Margins.Left},
		}
		for _, side := range sides {
			v, ok := xml.Attr(m, side.name)
			if !ok || strings.TrimSpace(v) == "" {
				continue
			}
			mm, err := parseMargin(v)
			if err != nil {
				l.issue(SemanticInvalidPageSetting, mpath, "invalid %s margin %q: %v", side.name, v, err)
				continue
			}
			*side.dst = mm
		}
	}
}

func parsePageFormat(v string) (PageFormat, bool) {
	for _, f := range []PageFormat{PageA4, PageA3, PageLetter} {
		if strings.EqualFold(v, string(f)) {
			return f, true
		}
	}
	return "", false
}

// parseMargin reads a millimetre value, with or without an "mm" suffix.
func parseMargin(v string) (float64, error) {
	s := strings.TrimSuffix(strings.TrimSpace(v), "mm")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number")
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return f, nil
}

// liftNodes converts the tokens under an element into nodes. counts numbers
// sibling elements by tag for the node paths.
func (l *lifter) liftNodes(tokens []etree.Token, parent string, counts map[string]int) []Node {
	var nodes []Node
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.CharData:
			if t.IsWhitespace() && !t.IsCData() {
				continue
			}
			nodes = append(nodes, splitPlaceholders(t.Data, parent)...)
		case *etree.Element:
			if n := l.liftElement(t, parent, counts); n != nil {
				nodes = append(nodes, n)
			}
		}
	}
	return nodes
}

func (l *lifter) liftElement(e *etree.Element, parent string, counts map[string]int) Node {
	tag := e.FullTag()
	counts[tag]++
	path := fmt.Sprintf("%s/%s[%d]", parent, tag, counts[tag])

	switch tag {
	case tagVariable:
		n := &VariableNode{Path: path}
		n.Name, _ = xml.Attr(e, "name")
		n.Name = strings.TrimSpace(n.Name)
		n.Format, _ = xml.Attr(e, "format")
		n.Format = strings.TrimSpace(n.Format)
		n.Default, n.HasDefault = xml.Attr(e, "default")
		return n

	case tagLoop:
		n := &LoopNode{Path: path}
		n.Source, _ = xml.Attr(e, "source")
		n.Source = strings.TrimSpace(n.Source)
		n.Children = l.liftNodes(e.Child, path, make(map[string]int))
		return n

	case tagCondition:
		return l.liftCondition(e, path)

	case tagElse:
		l.issue(SemanticMisplacedElse, path, "<else/> is only allowed directly inside <condition>")
		return nil
	}

	n := &ElementNode{Tag: tag, Path: path}
	for _, a := range e.Attr {
		attr := Attribute{Name: a.FullKey(), Value: a.Value}
		if strings.Contains(a.Value, "{{") {
			attr.Parts = splitPlaceholders(a.Value, path)
		}
		n.Attrs = append(n.Attrs, attr)
	}
	n.Children = l.liftNodes(e.Child, path, make(map[string]int))
	return n
}

// liftCondition splits the children of a condition at its <else/> marker.
func (l *lifter) liftCondition(e *etree.Element, path string) Node {
	n := &ConditionNode{Path: path}
	n.Test, _ = xml.Attr(e, "test")
	n.Test = strings.TrimSpace(n.Test)

	var then, otherwise []etree.Token
	for _, tok := range e.Child {
		if el, ok := tok.(*etree.Element); ok && el.FullTag() == tagElse {
			if n.HasElse {
				l.issue(SemanticMisplacedElse, path, "condition has more than one <else/>")
				continue
			}
			if len(el.Child) > 0 && !isBlank(el.Child) {
				l.issue(SemanticMisplacedElse, path, "<else/> must be empty, the else branch follows it")
			}
			n.HasElse = true
			continue
		}
		if n.HasElse {
			otherwise = append(otherwise, tok)
		} else {
			then = append(then, tok)
		}
	}

	counts := make(map[string]int)
	n.Then = l.liftNodes(then, path, counts)
	n.Else = l.liftNodes(otherwise, path, counts)
	return n
}

func isBlank(tokens []etree.Token) bool {
	for _, tok := range tokens {
		switch t := tok.(type) {
		case *etree.CharData:
			if !t.IsWhitespace() {
				return false
			}
		case *etree.Element:
			return false
		}
	}
	return true
}

// splitPlaceholders breaks text into literal and inline variable nodes.
func splitPlaceholders(text, path string) []Node {
	matches := placeholderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Node{&TextNode{Content: text}}
	}

	var nodes []Node
	last := 0
	for _, m := range matches {
		if m[0] > last {
			nodes = append(nodes, &TextNode{Content: text[last:m[0]]})
		}
		nodes = append(nodes, parsePlaceholder(text[m[2]:m[3]], path))
		last = m[1]
	}
	if last < len(text) {
		nodes = append(nodes, &TextNode{Content: text[last:]})
	}
	return nodes
}

// parsePlaceholder reads "path" or "path | format".
func parsePlaceholder(expr, path string) *VariableNode {
	n := &VariableNode{Inline: true, Path: path}
	name, format, found := strings.Cut(expr, "|")
	n.Name = strings.TrimSpace(name)
	if found {
		n.Format = strings.TrimSpace(format)
	}
	return n
}
