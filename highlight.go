package runblock

import (
	"html/template"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "onedark"

// RenderConfig controls how code blocks are highlighted.
type RenderConfig struct {
	Style       string // chroma style name
	LineNumbers bool
	TabWidth    int
}

// DefaultRenderConfig returns the default highlighting settings.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Style:    DefaultStyle,
		TabWidth: 4,
	}
}

// Highlighter turns code into class-annotated HTML using chroma.
type Highlighter struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

// NewHighlighter creates a highlighter for cfg. Unknown style names fall
// back to chroma's default style.
func NewHighlighter(cfg RenderConfig) *Highlighter {
	opts := []chromahtml.Option{
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(cfg.LineNumbers),
	}
	if cfg.TabWidth > 0 {
		opts = append(opts, chromahtml.TabWidth(cfg.TabWidth))
	}
	return &Highlighter{
		style:     styles.Get(cfg.Style),
		formatter: chromahtml.New(opts...),
	}
}

// Highlight writes code highlighted for language tag lang. When the code
// cannot be tokenised it is written as an escaped plain block.
func (h *Highlighter) Highlight(w io.Writer, code, lang string) error {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return writePlain(w, code)
	}
	return h.formatter.Format(w, h.style, iterator)
}

// WriteCSS writes the stylesheet for the highlighter's classes.
func (h *Highlighter) WriteCSS(w io.Writer) error {
	return h.formatter.WriteCSS(w, h.style)
}

func writePlain(w io.Writer, code string) error {
	_, err := io.WriteString(w, `<pre class="chroma"><code>`+template.HTMLEscapeString(code)+`</code></pre>`)
	return err
}
