package runblock

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	yes := true
	tests := []struct {
		name     string
		content  string
		wantFM   Frontmatter
		wantBody string
	}{
		{
			name: "complete frontmatter",
			content: `---
title: "Demo"
style: dracula
line_numbers: true
---

# Hello World`,
			wantFM: Frontmatter{
				Title:       "Demo",
				Style:       "dracula",
				LineNumbers: &yes,
			},
			wantBody: "# Hello World",
		},
		{
			name:     "no frontmatter",
			content:  "# Hello World\n\nSome content",
			wantFM:   Frontmatter{},
			wantBody: "# Hello World\n\nSome content",
		},
		{
			name: "minimal frontmatter",
			content: `---
title: "Simple"
---

Content`,
			wantFM:   Frontmatter{Title: "Simple"},
			wantBody: "Content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, remaining, err := extractFrontmatter([]byte(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantFM, *fm)
			assert.Equal(t, tt.wantBody, strings.TrimSpace(string(remaining)))
		})
	}
}

func TestParseFrontmatterUnclosed(t *testing.T) {
	_, _, err := extractFrontmatter([]byte("---\ntitle: x\n\n# Body"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed frontmatter")
}

func TestParseCodeBlocks(t *testing.T) {
	content := "# Blocks\n\n" +
		"```jsx id=counter title='demo'\n" +
		"function App() {}\n" +
		"```\n\n" +
		"```python\n" +
		"print(1)\n" +
		"print(2)\n" +
		"```\n\n" +
		"```\n" +
		"plain\n" +
		"```\n"

	_, blocks, _, err := ParseMarkdown([]byte(content), DefaultRenderConfig())
	require.NoError(t, err)
	require.Len(t, blocks, 3)

	assert.Equal(t, "counter", blocks[0].ID)
	assert.Equal(t, "jsx", blocks[0].Language)
	assert.Equal(t, map[string]string{"id": "counter", "title": "demo"}, blocks[0].Metadata)
	assert.Equal(t, "function App() {}", blocks[0].Content)
	assert.Equal(t, 3, blocks[0].Line)

	assert.Equal(t, "block-1", blocks[1].ID)
	assert.Equal(t, "python", blocks[1].Language)
	assert.Equal(t, "print(1)\nprint(2)", blocks[1].Content)
	assert.Equal(t, 7, blocks[1].Line)

	assert.Equal(t, "block-2", blocks[2].ID)
	assert.Empty(t, blocks[2].Language)
	assert.Equal(t, 12, blocks[2].Line)
}

func TestParseCodeBlockLineAfterFrontmatter(t *testing.T) {
	content := "---\ntitle: x\n---\n\n```js\nx\n```\n"
	_, blocks, _, err := ParseMarkdown([]byte(content), DefaultRenderConfig())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 5, blocks[0].Line)
}

func TestParseEmptyCodeBlockLine(t *testing.T) {
	_, blocks, _, err := ParseMarkdown([]byte("text\n\n```js\n```\n"), DefaultRenderConfig())
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].Line)
	assert.Empty(t, blocks[0].Content)
}

func TestParseRejectsPathLikeBlockIDs(t *testing.T) {
	tests := []string{"../../escaped", "a/b", `a\b`, "..", "."}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			content := "# Doc\n\n```js id=" + id + "\n1\n```\n"
			_, _, _, err := ParseMarkdown([]byte(content), DefaultRenderConfig())
			require.Error(t, err)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, 3, pe.Line)
			assert.Contains(t, pe.Message, "invalid block id")
		})
	}

	_, blocks, _, err := ParseMarkdown([]byte("```js id=..ok\n1\n```\n"), DefaultRenderConfig())
	require.NoError(t, err)
	assert.Equal(t, "..ok", blocks[0].ID)
}

func TestParseDuplicateBlockID(t *testing.T) {
	content := "```js id=a\n1\n```\n\n```jsx id=a\n2\n```\n"
	_, _, _, err := ParseMarkdown([]byte(content), DefaultRenderConfig())
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 5, pe.Line)
	assert.Contains(t, pe.Message, `duplicate block id "a"`)
	assert.Equal(t, "first defined at line 1", pe.Related)
}

func TestRenderCodeBlockChrome(t *testing.T) {
	content := "```jsx id=counter\nfunction App() { return <p/>; }\n```\n\n```python\nprint(1)\n```\n"
	_, _, html, err := ParseMarkdown([]byte(content), DefaultRenderConfig())
	require.NoError(t, err)

	runnable, static, ok := strings.Cut(html, `data-block-id="block-1"`)
	require.True(t, ok, "second block should carry its generated id:\n%s", html)

	assert.Contains(t, runnable, `data-block-id="counter" data-language="jsx" data-runnable="true"`)
	assert.Contains(t, runnable, `<span class="code-language">jsx</span>`)
	assert.Contains(t, runnable, `data-action="toggle" title="Show live preview"`)
	assert.Contains(t, runnable, `<span class="label">Run Code</span>`)
	assert.Contains(t, runnable, `data-action="copy" title="Copy code"`)
	assert.Contains(t, runnable, `<span class="label">Copy</span>`)
	assert.Contains(t, runnable, `class="chroma"`)
	assert.Contains(t, runnable, `<div class="sandpack-container" data-preview-mount hidden></div>`)

	assert.Contains(t, static, `data-language="python" data-runnable="false"`)
	assert.Contains(t, static, `data-action="copy"`)
	assert.NotContains(t, static, `data-action="toggle"`)
	assert.NotContains(t, static, "sandpack-container")
}

func TestRenderUnlabeledBlock(t *testing.T) {
	_, _, html, err := ParseMarkdown([]byte("```\n<b>raw</b>\n```\n"), DefaultRenderConfig())
	require.NoError(t, err)

	assert.Contains(t, html, `<span class="code-language">text</span>`)
	assert.NotContains(t, html, "<b>raw</b>")
}

func TestRenderInlineCode(t *testing.T) {
	_, blocks, html, err := ParseMarkdown([]byte("Use `a < b` here.\n"), DefaultRenderConfig())
	require.NoError(t, err)

	assert.Empty(t, blocks)
	assert.Contains(t, html, `<code class="inline-code">a &lt; b</code>`)
	assert.NotContains(t, html, "code-block-container")
}

func TestRenderEscapesBlockID(t *testing.T) {
	_, _, html, err := ParseMarkdown([]byte("```js id=\"<x>\"\n1\n```\n"), DefaultRenderConfig())
	require.NoError(t, err)
	assert.Contains(t, html, `data-block-id="&lt;x&gt;"`)
}

func TestParseStringAppliesFrontmatter(t *testing.T) {
	content := "---\nstyle: monokai\nline_numbers: true\n---\n\n```js\n1\n```\n"
	page, err := ParseString(content, DefaultRenderConfig())
	require.NoError(t, err)

	assert.Equal(t, "inline", page.ID)
	assert.Equal(t, "Untitled", page.Title)
	assert.Equal(t, "monokai", page.Config.Style)
	assert.True(t, page.Config.LineNumbers)
	assert.Len(t, page.RunnableBlocks(), 1)
}

func TestParseStringError(t *testing.T) {
	_, err := ParseString("---\ntitle: x\n", DefaultRenderConfig())
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, pe.Message, "unclosed frontmatter")
}

func TestPageBlockLookup(t *testing.T) {
	page, err := ParseString("```js id=one\n1\n```\n\n```go id=two\n2\n```\n", DefaultRenderConfig())
	require.NoError(t, err)

	b, ok := page.Block("two")
	require.True(t, ok)
	assert.Equal(t, "go", b.Language)
	assert.Nil(t, b.Preview())

	_, ok = page.Block("three")
	assert.False(t, ok)

	runnable := page.RunnableBlocks()
	require.Len(t, runnable, 1)
	assert.Equal(t, "one", runnable[0].ID)
	require.NotNil(t, runnable[0].Preview())
	assert.Equal(t, TemplateVanilla, runnable[0].Preview().Template)
}
