package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/render"
)

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// outputOptions controls how a rendered template is written.
type outputOptions struct {
	full      bool
	minifyCSS bool
	outPath   string
}

func (o outputOptions) write(w io.Writer, jsonOutput bool, result *printtmpl.RenderResult) error {
	if o.minifyCSS {
		result.CSS = render.MinifyCSS(result.CSS)
	}

	var body string
	switch {
	case jsonOutput:
		var sb strings.Builder
		if err := writeJSON(&sb, result); err != nil {
			return err
		}
		body = sb.String()
	case o.full:
		body = result.Document()
	default:
		body = fragment(result)
	}

	if o.outPath != "" {
		if err := os.WriteFile(o.outPath, []byte(body), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	_, err := io.WriteString(w, body)
	return err
}

func fragment(result *printtmpl.RenderResult) string {
	var sb strings.Builder
	if result.CSS != "" {
		sb.WriteString("<style>")
		sb.WriteString(result.CSS)
		sb.WriteString("</style>\n")
	}
	sb.WriteString(result.HTML)
	sb.WriteString("\n")
	return sb.String()
}

func writeRequestError(w io.Writer, rerr *printtmpl.RequestError) {
	fmt.Fprintf(w, "%s (%s)\n", rerr.Message, rerr.Code)
	for _, d := range rerr.Details {
		fmt.Fprintf(w, "  - %s\n", d)
	}
}
