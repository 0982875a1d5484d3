package runblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderStatic(t *testing.T) {
	content := "---\ntitle: Doc\n---\n\n# Doc\n\n```js\nconst a = 1;\n```\n"
	html, err := RenderStatic([]byte(content), "")
	require.NoError(t, err)

	assert.Contains(t, html, `<h1 id="doc">Doc</h1>`)
	assert.Contains(t, html, `<div class="code-block-container" data-language="js">`)
	assert.Contains(t, html, `<span class="code-language">js</span>`)
	// inline styles, no stylesheet needed
	assert.Contains(t, html, `style="`)
	assert.NotContains(t, html, "data-action")
	assert.NotContains(t, html, "title: Doc")
}

func TestRenderStaticFrontmatterStyleWins(t *testing.T) {
	body := "```go\nfunc main() {}\n```\n"
	withStyle, err := RenderStatic([]byte("---\nstyle: github\n---\n"+body), "monokai")
	require.NoError(t, err)
	explicit, err := RenderStatic([]byte(body), "github")
	require.NoError(t, err)

	assert.Equal(t, explicit, withStyle)
}
