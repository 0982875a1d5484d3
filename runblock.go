// Package runblock renders fenced code blocks in markdown documents with
// syntax highlighting, a copy action, and an optional live-preview sandbox
// for JavaScript and React snippets.
//
// The preview sandbox is fed a virtual multi-file project. ExtractFiles
// derives it from file-marker comments in the snippet; when there are none,
// DefaultFiles synthesizes a minimal runnable project instead.
package runblock

// Page is a parsed markdown document.
type Page struct {
	ID         string
	Title      string
	SourceFile string // absolute path of the source .md file, for error messages
	StaticHTML string
	Blocks     []*CodeBlock // fenced code blocks, in document order
	Config     RenderConfig
}

// New creates an empty Page with the given ID.
func New(id string) *Page {
	return &Page{
		ID:     id,
		Config: DefaultRenderConfig(),
	}
}

// Block returns the block with the given ID.
func (p *Page) Block(id string) (*CodeBlock, bool) {
	for _, b := range p.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// RunnableBlocks returns the blocks that can be shown in the live preview.
func (p *Page) RunnableBlocks() []*CodeBlock {
	var out []*CodeBlock
	for _, b := range p.Blocks {
		if b.Lang().Runnable() {
			out = append(out, b)
		}
	}
	return out
}
