package runblock

import (
	"bytes"
	"fmt"
	"html/template"
	"log"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// blockIDAttr carries the block ID from the parser to the renderer.
const blockIDAttr = "data-block-id"

// codeBlocks is a goldmark extension that renders fenced code blocks with
// highlighting and action buttons, and code spans as plain inline code.
type codeBlocks struct {
	cfg RenderConfig
}

// CodeBlocks returns the goldmark extension for cfg.
func CodeBlocks(cfg RenderConfig) goldmark.Extender {
	return &codeBlocks{cfg: cfg}
}

func (e *codeBlocks) Extend(m goldmark.Markdown) {
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&codeBlockRenderer{highlighter: NewHighlighter(e.cfg)}, 200),
	))
}

type codeBlockRenderer struct {
	highlighter *Highlighter
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
	reg.Register(ast.KindCodeSpan, r.renderCodeSpan)
}

func (r *codeBlockRenderer) renderCodeSpan(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</code>")
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<code class="inline-code">`)
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		text, ok := c.(*ast.Text)
		if !ok {
			continue
		}
		value := text.Segment.Value(source)
		if bytes.HasSuffix(value, []byte("\n")) {
			_, _ = w.Write(util.EscapeHTML(value[:len(value)-1]))
			_ = w.WriteByte(' ')
		} else {
			_, _ = w.Write(util.EscapeHTML(value))
		}
	}
	return ast.WalkSkipChildren, nil
}

func (r *codeBlockRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	id := ""
	if v, ok := n.AttributeString(blockIDAttr); ok {
		switch v := v.(type) {
		case []byte:
			id = string(v)
		case string:
			id = v
		}
	}

	lang := Classify(string(n.Language(source)))
	code := fencedContent(n, source)

	var body bytes.Buffer
	if err := r.highlighter.Highlight(&body, code, lang.Tag); err != nil {
		log.Printf("[Block] %s: highlight failed: %v", id, err)
		body.Reset()
		_ = writePlain(&body, code)
	}

	// Initial chrome matches a fresh block state: preview hidden, not copied.
	view := NewBlockState(id, code, lang).View()
	writeBlockChrome(w, view, body.Bytes())
	return ast.WalkSkipChildren, nil
}

// fencedContent returns the block text without its final newline.
func fencedContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(source))
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

func writeBlockChrome(w util.BufWriter, v View, highlighted []byte) {
	esc := template.HTMLEscapeString

	_, _ = w.WriteString(`<div class="code-block-container"`)
	if v.BlockID != "" {
		fmt.Fprintf(w, ` data-block-id="%s"`, esc(v.BlockID))
	}
	fmt.Fprintf(w, ` data-language="%s" data-runnable="%t">`+"\n", esc(v.Language), v.Runnable)

	_, _ = w.WriteString(`<div class="code-block-header">`)
	fmt.Fprintf(w, `<span class="code-language">%s</span>`, esc(v.Language))
	_, _ = w.WriteString(`<div class="code-actions">`)
	if v.Runnable {
		fmt.Fprintf(w, `<button type="button" class="code-action-button" data-action="%s" title="%s">`+
			`<span class="icon icon-%s" aria-hidden="true"></span><span class="label">%s</span></button>`,
			ActionToggle, esc(v.ToggleTitle), v.ToggleIcon, esc(v.ToggleLabel))
	}
	fmt.Fprintf(w, `<button type="button" class="code-action-button" data-action="%s" title="Copy code">`+
		`<span class="icon icon-%s" aria-hidden="true"></span><span class="label">%s</span></button>`,
		ActionCopy, v.CopyIcon, esc(v.CopyLabel))
	_, _ = w.WriteString("</div></div>\n")

	_, _ = w.WriteString(`<div class="code-block-body">`)
	_, _ = w.Write(highlighted)
	_, _ = w.WriteString("</div>\n")

	if v.Runnable {
		_, _ = w.WriteString(`<div class="sandpack-container" data-preview-mount hidden></div>` + "\n")
	}
	_, _ = w.WriteString("</div>\n")
}
