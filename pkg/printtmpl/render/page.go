package render

import (
	"fmt"
	"strconv"
	"strings"
)

// PageOptions describes a printable page wrapping a rendered fragment.
// Margins are in millimetres.
type PageOptions struct {
	Title        string
	Lang         string
	Size         string
	Orientation  string
	MarginTop    float64
	MarginRight  float64
	MarginBottom float64
	MarginLeft   float64
	CSS          string
	Body         string
}

// Page returns a complete HTML document for the fragment with an @page rule
// matching the page settings, ready to be printed or handed to a PDF tool.
func Page(opts PageOptions) string {
	lang := opts.Lang
	if lang == "" {
		lang = "it"
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n")
	fmt.Fprintf(&sb, "<html lang=\"%s\">\n<head>\n<meta charset=\"utf-8\">\n", EscapeText(lang))
	if opts.Title != "" {
		fmt.Fprintf(&sb, "<title>%s</title>\n", EscapeText(opts.Title))
	}
	sb.WriteString("<style>\n")
	fmt.Fprintf(&sb, "@page { size: %s %s; margin: %smm %smm %smm %smm; }\n",
		opts.Size, opts.Orientation,
		mm(opts.MarginTop), mm(opts.MarginRight), mm(opts.MarginBottom), mm(opts.MarginLeft))
	if css := strings.TrimSpace(opts.CSS); css != "" {
		sb.WriteString(css)
		sb.WriteByte('\n')
	}
	sb.WriteString("</style>\n</head>\n<body>\n")
	sb.WriteString(opts.Body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}

func mm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
