package interpret

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// markdown is the shared converter for interpretation text. The generation
// service is instructed to answer in Markdown; pages render the converted
// HTML.
var markdown = goldmark.New()

// RenderMarkdown converts interpretation Markdown to display HTML. On
// conversion failure the raw text is returned HTML-escaped so the visitor
// still sees something.
func RenderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}

	return template.HTML(buf.String())
}
