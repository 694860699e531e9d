package render

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/glamour"
	"github.com/cockroachdb/errors"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

// StyleAuto picks a terminal style from the background color.
const StyleAuto = "auto"

var (
	sanitizerOnce sync.Once
	sanitizer     *bluemonday.Policy
)

func policy() *bluemonday.Policy {
	sanitizerOnce.Do(func() { sanitizer = bluemonday.UGCPolicy() })
	return sanitizer
}

// HTML renders md and strips everything a user-generated-content policy
// does not allow.
func HTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	out := markdown.Render(doc, renderer)
	return strings.TrimSpace(string(policy().SanitizeBytes(out)))
}

// PlainText renders md and returns its visible text with runs of
// whitespace collapsed to one space.
func PlainText(md string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(HTML(md)))
	if err != nil {
		return "", errors.Wrap(err, "parse rendered html")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " "), nil
}

// Terminal renders md for a terminal of the given width. style is
// StyleAuto or a glamour standard style name such as "dark" or "notty".
func Terminal(md string, width int, style string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", errors.Wrap(err, "create terminal renderer")
	}
	out, err := r.Render(md)
	if err != nil {
		return "", errors.Wrap(err, "render markdown")
	}
	return out, nil
}
