package runblock

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Frontmatter represents the YAML frontmatter at the top of a markdown file.
type Frontmatter struct {
	Title       string `yaml:"title"`
	Style       string `yaml:"style"`        // chroma style override
	LineNumbers *bool  `yaml:"line_numbers"` // nil = use site config
}

// CodeBlock represents a fenced code block extracted from markdown.
type CodeBlock struct {
	ID       string
	Language string            // bare tag from the info string, e.g. "jsx"
	Metadata map[string]string // key=value tokens from the info string
	Content  string            // block text without its final newline
	Line     int               // line of the opening fence in the source file
}

// Lang classifies the block's language tag.
func (b *CodeBlock) Lang() Language {
	return Classify(b.Language)
}

// Preview returns the live-preview request for the block, or nil when it
// cannot run.
func (b *CodeBlock) Preview() *Preview {
	return NewPreview(b.Content, b.Lang())
}

// apply merges frontmatter overrides into cfg.
func (fm *Frontmatter) apply(cfg RenderConfig) RenderConfig {
	if fm.Style != "" {
		cfg.Style = fm.Style
	}
	if fm.LineNumbers != nil {
		cfg.LineNumbers = *fm.LineNumbers
	}
	return cfg
}

// ParseMarkdown parses a markdown document, collects its fenced code blocks
// and renders it to HTML with interactive code block chrome.
func ParseMarkdown(content []byte, cfg RenderConfig) (*Frontmatter, []*CodeBlock, string, error) {
	frontmatter, remaining, err := extractFrontmatter(content)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	cfg = frontmatter.apply(cfg)

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM, CodeBlocks(cfg)),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)

	doc := md.Parser().Parse(text.NewReader(remaining))
	lineOffset := bytes.Count(content[:len(content)-len(remaining)], []byte("\n"))

	var codeBlocks []*CodeBlock
	seen := make(map[string]int)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		block := parseCodeBlock(fenced, remaining, lineOffset, len(codeBlocks))
		if !validBlockID(block.ID) {
			return ast.WalkStop, NewParseError("", block.Line, fmt.Sprintf("invalid block id %q", block.ID)).
				WithHint("block ids name files and directories; leave out path separators and \".\" or \"..\"")
		}
		if first, dup := seen[block.ID]; dup {
			return ast.WalkStop, NewParseError("", block.Line, fmt.Sprintf("duplicate block id %q", block.ID)).
				WithHint("give each block a unique id=... in its info string").
				WithRelated(fmt.Sprintf("first defined at line %d", first))
		}
		seen[block.ID] = block.Line

		fenced.SetAttributeString(blockIDAttr, []byte(block.ID))
		codeBlocks = append(codeBlocks, block)
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, nil, "", err
	}

	var htmlBuf bytes.Buffer
	if err := md.Renderer().Render(&htmlBuf, remaining, doc); err != nil {
		return nil, nil, "", fmt.Errorf("failed to render HTML: %w", err)
	}

	return frontmatter, codeBlocks, htmlBuf.String(), nil
}

// validBlockID reports whether id can be used as a single path element.
func validBlockID(id string) bool {
	return id != "." && id != ".." && !strings.ContainsAny(id, `/\`)
}

// extractFrontmatter extracts YAML frontmatter from the beginning of content.
// Returns the parsed frontmatter and the remaining content.
func extractFrontmatter(content []byte) (*Frontmatter, []byte, error) {
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return &Frontmatter{}, content, nil
	}

	endIdx := bytes.Index(content[4:], []byte("\n---\n"))
	if endIdx == -1 {
		return nil, nil, fmt.Errorf("unclosed frontmatter")
	}

	yamlContent := content[4 : 4+endIdx]
	remaining := content[4+endIdx+5:] // Skip "\n---\n"

	var fm Frontmatter
	if err := yaml.Unmarshal(yamlContent, &fm); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &fm, remaining, nil
}

// parseCodeBlock reads the language, metadata and content of a fenced block.
// Info string format: "jsx id=counter title=demo".
func parseCodeBlock(fenced *ast.FencedCodeBlock, source []byte, lineOffset, index int) *CodeBlock {
	block := &CodeBlock{
		Metadata: make(map[string]string),
		Content:  fencedContent(fenced, source),
		Line:     fenceLine(fenced, source, lineOffset),
	}

	if fenced.Info != nil {
		parts := strings.Fields(string(fenced.Info.Segment.Value(source)))
		if len(parts) > 0 {
			block.Language = parts[0]
		}
		for _, part := range parts[min(1, len(parts)):] {
			if k, v, ok := strings.Cut(part, "="); ok {
				block.Metadata[k] = strings.Trim(v, `"'`)
			}
		}
	}

	block.ID = block.Metadata["id"]
	if block.ID == "" {
		block.ID = fmt.Sprintf("block-%d", index)
	}
	return block
}

// fenceLine returns the 1-indexed line of the opening fence.
func fenceLine(fenced *ast.FencedCodeBlock, source []byte, lineOffset int) int {
	if lines := fenced.Lines(); lines.Len() > 0 {
		// The first content line sits directly below the fence.
		return lineOffset + bytes.Count(source[:lines.At(0).Start], []byte("\n"))
	}
	if fenced.Info != nil {
		return lineOffset + bytes.Count(source[:fenced.Info.Segment.Start], []byte("\n")) + 1
	}
	return lineOffset
}
