package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

var (
	minifier     *minify.M
	minifierOnce sync.Once

	sanitizer     *bluemonday.Policy
	sanitizerOnce sync.Once
)

func getMinifier() *minify.M {
	minifierOnce.Do(func() {
		minifier = minify.New()
		minifier.Add("text/html", &html.Minifier{
			KeepDocumentTags: true,
			KeepEndTags:      true,
			KeepQuotes:       true,
		})
		minifier.AddFunc("text/css", css.Minify)
	})
	return minifier
}

// MinifyHTML removes insignificant whitespace from a rendered fragment. The
// input is returned unchanged if minification fails.
func MinifyHTML(fragment string) string {
	out, err := getMinifier().String("text/html", fragment)
	if err != nil {
		return fragment
	}
	return out
}

// MinifyCSS minifies a stylesheet. The input is returned unchanged if
// minification fails.
func MinifyCSS(stylesheet string) string {
	out, err := getMinifier().String("text/css", stylesheet)
	if err != nil {
		return stylesheet
	}
	return out
}

func getSanitizer() *bluemonday.Policy {
	sanitizerOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowAttrs("class", "style", "id", "title").Globally()
		policy.AllowAttrs("colspan", "rowspan", "align", "valign", "width", "height").OnElements("td", "th", "col", "colgroup", "img", "table")
		policy.AllowDataURIImages()
		sanitizer = policy
	})
	return sanitizer
}

// Sanitize strips scripts, event handlers and other active content from a
// rendered fragment while keeping layout markup and classes.
func Sanitize(fragment string) string {
	return getSanitizer().Sanitize(fragment)
}
