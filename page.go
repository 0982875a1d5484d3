package runblock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ParseFile parses a markdown file and creates a Page.
func ParseFile(path string, cfg RenderConfig) (*Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// Absolute path for better error messages
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	page, err := parsePage(filepath.Base(path), absPath, content, cfg)
	if err != nil {
		return nil, err
	}
	return page, nil
}

// ParseString parses markdown content held in memory, e.g. a document
// posted by an editor, and creates a Page.
func ParseString(content string, cfg RenderConfig) (*Page, error) {
	page, err := parsePage("inline", "", []byte(content), cfg)
	if err != nil {
		return nil, err
	}
	if page.Title == "" {
		page.Title = "Untitled"
	}
	return page, nil
}

func parsePage(id, sourceFile string, content []byte, cfg RenderConfig) (*Page, error) {
	fm, blocks, staticHTML, err := ParseMarkdown(content, cfg)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = sourceFile
			return nil, pe.WithSource(content)
		}
		return nil, NewParseError(sourceFile, 1, fmt.Sprintf("Failed to parse markdown: %v", err)).
			WithSource(content)
	}

	page := New(id)
	page.Title = fm.Title
	page.SourceFile = sourceFile
	page.StaticHTML = staticHTML
	page.Blocks = blocks
	page.Config = fm.apply(cfg)
	return page, nil
}
