package printtmpl

import (
	"fmt"
	"strings"
)

// NodeKind identifies the concrete type of a Node.
type NodeKind int

const (
	KindText NodeKind = iota
	KindElement
	KindVariable
	KindLoop
	KindCondition
)

func (k NodeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	case KindVariable:
		return "variable"
	case KindLoop:
		return "loop"
	case KindCondition:
		return "condition"
	default:
		return "unknown"
	}
}

// Node is one entry of a template body. The set of implementations is closed:
// *TextNode, *ElementNode, *VariableNode, *LoopNode and *ConditionNode.
// Nodes are never modified after parsing.
type Node interface {
	Kind() NodeKind
	String() string
	node()
}

// TextNode is literal text. It is HTML-escaped when rendered.
type TextNode struct {
	Content string
}

func (n *TextNode) Kind() NodeKind { return KindText }
func (n *TextNode) node()          {}

func (n *TextNode) String() string {
	return fmt.Sprintf("Text(%q)", n.Content)
}

// Attribute is an attribute of a pass-through element. Parts is set when the
// value contains {{path}} placeholders and holds the text and variable pieces
// the value is built from.
type Attribute struct {
	Name  string
	Value string
	Parts []Node
}

// ElementNode is any markup tag that is not a template directive. It is
// emitted with its attributes and rendered children.
type ElementNode struct {
	Tag      string
	Attrs    []Attribute
	Children []Node
	Path     string
}

func (n *ElementNode) Kind() NodeKind { return KindElement }
func (n *ElementNode) node()          {}

func (n *ElementNode) String() string {
	return fmt.Sprintf("Element(%s)", n.Tag)
}

// VariableNode outputs the formatted value at Name.
type VariableNode struct {
	Name       string
	Format     string
	Default    string
	HasDefault bool
	// Inline is true for {{path}} placeholders found in text.
	Inline bool
	Path   string
}

func (n *VariableNode) Kind() NodeKind { return KindVariable }
func (n *VariableNode) node()          {}

func (n *VariableNode) String() string {
	if n.Format != "" {
		return fmt.Sprintf("Variable(%s|%s)", n.Name, n.Format)
	}
	return fmt.Sprintf("Variable(%s)", n.Name)
}

// LoopNode renders Children once per item of the sequence at Source.
type LoopNode struct {
	Source   string
	Children []Node
	Path     string
}

func (n *LoopNode) Kind() NodeKind { return KindLoop }
func (n *LoopNode) node()          {}

func (n *LoopNode) String() string {
	return fmt.Sprintf("Loop(%s)", n.Source)
}

// ConditionNode renders Then when Test is truthy and Else otherwise.
type ConditionNode struct {
	Test    string
	Then    []Node
	Else    []Node
	HasElse bool
	Path    string
}

func (n *ConditionNode) Kind() NodeKind { return KindCondition }
func (n *ConditionNode) node()          {}

func (n *ConditionNode) String() string {
	if n.HasElse {
		return fmt.Sprintf("Condition(%s) Else", n.Test)
	}
	return fmt.Sprintf("Condition(%s)", n.Test)
}

// PageFormat is the paper size of a template.
type PageFormat string

const (
	PageA4     PageFormat = "A4"
	PageA3     PageFormat = "A3"
	PageLetter PageFormat = "Letter"
)

// Orientation is the page orientation of a template.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Margins are page margins in millimetres.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins are used for any margin the template leaves out.
var DefaultMargins = Margins{Top: 20, Right: 15, Bottom: 20, Left: 15}

// Page holds the page settings of a template.
type Page struct {
	Format      PageFormat
	Orientation Orientation
	Margins     Margins
}

// Document is a parsed print template.
type Document struct {
	// Root is the tag name of the root element; valid templates use "template".
	Root     string
	Version  string
	Metadata map[string]string
	Page     Page
	// Styles is the raw CSS of the styles section, passed through untouched.
	Styles    string
	HasStyles bool
	Body      []Node
	HasBody   bool

	// issues are semantic problems noticed while building the tree, reported
	// by the validator together with its own checks.
	issues []*SemanticError
}

// EntityType returns the entity type declared in the metadata, if any.
func (d *Document) EntityType() string {
	return d.Metadata["entity_type"]
}

// Name returns the template name declared in the metadata, if any.
func (d *Document) Name() string {
	return d.Metadata["name"]
}

func (d *Document) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Document(%s %s/%s", d.Root, d.Page.Format, d.Page.Orientation)
	if d.HasBody {
		fmt.Fprintf(&sb, ", %d body nodes", len(d.Body))
	}
	sb.WriteByte(')')
	return sb.String()
}

// Walk calls fn for every node in document order, descending into element,
// loop and condition children (both branches). Returning false from fn skips
// the children of that node.
func Walk(nodes []Node, fn func(Node) bool) {
	for _, n := range nodes {
		if !fn(n) {
			continue
		}
		switch v := n.(type) {
		case *ElementNode:
			for _, a := range v.Attrs {
				Walk(a.Parts, fn)
			}
			Walk(v.Children, fn)
		case *LoopNode:
			Walk(v.Children, fn)
		case *ConditionNode:
			Walk(v.Then, fn)
			Walk(v.Else, fn)
		}
	}
}
