package render

import (
	"html"
	"strings"
)

// Attr is one attribute of an emitted element. Value is unescaped.
type Attr struct {
	Name  string
	Value string
}

// layoutTags maps template layout tags to the HTML element they produce.
var layoutTags = map[string]string{
	"section": "div",
	"text":    "span",
	"image":   "img",
}

var voidElements = map[string]bool{
	"area":  true,
	"base":  true,
	"br":    true,
	"col":   true,
	"embed": true,
	"hr":    true,
	"img":   true,
	"input": true,
	"link":  true,
	"meta":  true,
	"wbr":   true,
}

// activeTags run code, load other documents or restyle the page. They are
// never written; their children render in their place.
var activeTags = map[string]bool{
	"applet":   true,
	"base":     true,
	"embed":    true,
	"frame":    true,
	"frameset": true,
	"iframe":   true,
	"link":     true,
	"meta":     true,
	"object":   true,
	"script":   true,
	"style":    true,
}

// urlAttrs hold URLs the browser may follow or load.
var urlAttrs = map[string]bool{
	"action":     true,
	"background": true,
	"cite":       true,
	"codebase":   true,
	"data":       true,
	"formaction": true,
	"href":       true,
	"poster":     true,
	"src":        true,
	"xlink:href": true,
}

// HTMLTag returns the HTML element name emitted for a template tag.
func HTMLTag(tag string) string {
	if mapped, ok := layoutTags[tag]; ok {
		return mapped
	}
	return tag
}

// IsVoid reports whether the HTML element has no closing tag.
func IsVoid(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// IsActive reports whether the element is one that is never emitted.
func IsActive(tag string) bool {
	return activeTags[strings.ToLower(tag)]
}

// EscapeText escapes s for use as HTML text or a quoted attribute value.
func EscapeText(s string) string {
	return html.EscapeString(s)
}

// WriteStartTag writes an opening tag. Void elements are written self-closed.
func WriteStartTag(sb *strings.Builder, tag string, attrs []Attr) {
	sb.WriteByte('<')
	sb.WriteString(tag)
	for _, a := range attrs {
		if !validAttrName(a.Name) || !safeAttr(a) {
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		sb.WriteString(`="`)
		sb.WriteString(EscapeText(a.Value))
		sb.WriteByte('"')
	}
	if IsVoid(tag) {
		sb.WriteString(" />")
		return
	}
	sb.WriteByte('>')
}

// WriteEndTag writes a closing tag unless the element is void.
func WriteEndTag(sb *strings.Builder, tag string) {
	if IsVoid(tag) {
		return
	}
	sb.WriteString("</")
	sb.WriteString(tag)
	sb.WriteByte('>')
}

// validAttrName rejects names that would break out of the tag. XML already
// restricts names, this guards attributes built programmatically.
func validAttrName(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, " \t\r\n\"'<>/=")
}

// safeAttr drops event handlers, inline documents and script URLs.
func safeAttr(a Attr) bool {
	name := strings.ToLower(a.Name)
	if strings.HasPrefix(name, "on") || name == "srcdoc" {
		return false
	}
	if !urlAttrs[name] {
		return true
	}
	scheme := strings.ToLower(strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, a.Value))
	for _, bad := range []string{"javascript:", "vbscript:", "data:text/html"} {
		if strings.HasPrefix(scheme, bad) {
			return false
		}
	}
	return true
}
