package printtmpl

import (
	"strings"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/render"
)

// Names added to the scope of each loop iteration
const (
	LoopItem  = "loop_item"
	LoopIndex = "loop_index"
	LoopFirst = "loop_first"
	LoopLast  = "loop_last"
)

// RenderResult is a rendered template: the HTML fragment of the body, the
// stylesheet and the page settings needed to print it.
type RenderResult struct {
	HTML        string      `json:"html"`
	CSS         string      `json:"css"`
	Format      PageFormat  `json:"format"`
	Orientation Orientation `json:"orientation"`
	Margins     Margins     `json:"margins"`
	Title       string      `json:"title,omitempty"`
}

// Document wraps the fragment in a complete HTML page whose @page rule
// carries the format, orientation and margins.
func (r *RenderResult) Document() string {
	return render.Page(render.PageOptions{
		Title:        r.Title,
		Size:         string(r.Format),
		Orientation:  string(r.Orientation),
		MarginTop:    r.Margins.Top,
		MarginRight:  r.Margins.Right,
		MarginBottom: r.Margins.Bottom,
		MarginLeft:   r.Margins.Left,
		CSS:          r.CSS,
		Body:         r.HTML,
	})
}

// RenderDocument evaluates doc against data. Missing data renders as empty
// output or a false condition, never as an error. doc is only read, so the
// same document can be rendered concurrently with different data.
func RenderDocument(doc *Document, data interface{}, registry FormatterRegistry) *RenderResult {
	r := &renderer{registry: registry}
	r.renderNodes(doc.Body, NewScope(data))

	return &RenderResult{
		HTML:        r.sb.String(),
		CSS:         doc.Styles,
		Format:      doc.Page.Format,
		Orientation: doc.Page.Orientation,
		Margins:     doc.Page.Margins,
		Title:       doc.Name(),
	}
}

type renderer struct {
	registry FormatterRegistry
	sb       strings.Builder
}

func (r *renderer) renderNodes(nodes []Node, scope *Scope) {
	for _, n := range nodes {
		r.renderNode(n, scope)
	}
}

func (r *renderer) renderNode(n Node, scope *Scope) {
	switch v := n.(type) {
	case *TextNode:
		r.sb.WriteString(render.EscapeText(v.Content))
	case *VariableNode:
		r.sb.WriteString(render.EscapeText(r.variable(v, scope)))
	case *ElementNode:
		r.renderElement(v, scope)
	case *LoopNode:
		r.renderLoop(v, scope)
	case *ConditionNode:
		r.renderCondition(v, scope)
	}
}

// variable returns the formatted, unescaped text of a variable. The default
// is used, and formatted, when the path is undefined or nil.
func (r *renderer) variable(v *VariableNode, scope *Scope) string {
	value, ok := scope.Resolve(v.Name)
	if (!ok || isNilValue(value)) && v.HasDefault {
		value = v.Default
	}
	return Format(r.registry, value, v.Format)
}

func (r *renderer) renderElement(e *ElementNode, scope *Scope) {
	tag := render.HTMLTag(e.Tag)
	if render.IsActive(tag) {
		r.renderNodes(e.Children, scope)
		return
	}

	attrs := make([]render.Attr, 0, len(e.Attrs))
	for _, a := range e.Attrs {
		value := a.Value
		if a.Parts != nil {
			value = r.interpolate(a.Parts, scope)
		}
		attrs = append(attrs, render.Attr{Name: a.Name, Value: value})
	}

	render.WriteStartTag(&r.sb, tag, attrs)
	if render.IsVoid(tag) {
		return
	}
	r.renderNodes(e.Children, scope)
	render.WriteEndTag(&r.sb, tag)
}

// interpolate builds an attribute value from its parts. The result is
// escaped once, when the attribute is written.
func (r *renderer) interpolate(parts []Node, scope *Scope) string {
	var sb strings.Builder
	for _, p := range parts {
		switch v := p.(type) {
		case *TextNode:
			sb.WriteString(v.Content)
		case *VariableNode:
			sb.WriteString(r.variable(v, scope))
		}
	}
	return sb.String()
}

func (r *renderer) renderLoop(l *LoopNode, scope *Scope) {
	value, ok := scope.Resolve(l.Source)
	if !ok {
		return
	}
	items, ok := toSequence(value)
	if !ok {
		return
	}

	for i, item := range items {
		child := scope.Child(item, map[string]interface{}{
			LoopItem:  item,
			LoopIndex: i,
			LoopFirst: i == 0,
			LoopLast:  i == len(items)-1,
		})
		r.renderNodes(l.Children, child)
	}
}

func (r *renderer) renderCondition(c *ConditionNode, scope *Scope) {
	cond, err := parseCondition(c.Test)
	if err != nil {
		// Malformed tests behave like an undefined value.
		if c.HasElse {
			r.renderNodes(c.Else, scope)
		}
		return
	}

	if cond.eval(scope) {
		r.renderNodes(c.Then, scope)
	} else if c.HasElse {
		r.renderNodes(c.Else, scope)
	}
}
