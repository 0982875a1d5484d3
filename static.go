package runblock

import (
	"bytes"
	"fmt"
	"html/template"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/util"
)

// RenderStatic renders a markdown document as self-contained HTML: code
// blocks are highlighted with inline styles and carry a language header,
// but no actions or preview.
func RenderStatic(content []byte, style string) (string, error) {
	fm, remaining, err := extractFrontmatter(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	if style == "" {
		style = DefaultStyle
	}
	if fm.Style != "" {
		style = fm.Style
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(false)),
				highlighting.WithWrapperRenderer(staticWrapper),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)

	var buf bytes.Buffer
	if err := md.Convert(remaining, &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return buf.String(), nil
}

func staticWrapper(w util.BufWriter, ctx highlighting.CodeBlockContext, entering bool) {
	if !entering {
		_, _ = w.WriteString("</div></div>\n")
		return
	}
	tag, _ := ctx.Language()
	label := Classify(string(tag)).Label()
	fmt.Fprintf(w, `<div class="code-block-container" data-language="%s">`, template.HTMLEscapeString(label))
	fmt.Fprintf(w, `<div class="code-block-header"><span class="code-language">%s</span></div>`, template.HTMLEscapeString(label))
	_, _ = w.WriteString(`<div class="code-block-body">`)
}
