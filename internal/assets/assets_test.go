package assets

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientJS(t *testing.T) {
	data, err := GetClientJS()
	if err != nil {
		t.Fatalf("GetClientJS failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("GetClientJS returned empty data")
	}
}

func TestGetClientCSS(t *testing.T) {
	data, err := GetClientCSS()
	if err != nil {
		t.Fatalf("GetClientCSS failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("GetClientCSS returned empty data")
	}
}

func TestClientFS(t *testing.T) {
	_, err := fs.Stat(ClientFS(), ClientJS)
	assert.NoError(t, err)
}

func TestBundleRaw(t *testing.T) {
	b, err := NewBundle(false)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ClientJS, ClientCSS}, b.Names())

	raw, err := GetClientJS()
	require.NoError(t, err)

	js, ok := b.Get(ClientJS)
	require.True(t, ok)
	assert.Equal(t, raw, js.Data)
	assert.Equal(t, "application/javascript; charset=utf-8", js.ContentType)

	css, ok := b.Get(ClientCSS)
	require.True(t, ok)
	assert.Equal(t, "text/css; charset=utf-8", css.ContentType)

	_, ok = b.Get("missing.js")
	assert.False(t, ok)
}

func TestBundleMinified(t *testing.T) {
	raw, err := NewBundle(false)
	require.NoError(t, err)
	small, err := NewBundle(true)
	require.NoError(t, err)

	for _, name := range []string{ClientJS, ClientCSS} {
		t.Run(name, func(t *testing.T) {
			r, _ := raw.Get(name)
			m, ok := small.Get(name)
			require.True(t, ok)
			assert.NotEmpty(t, m.Data)
			assert.Less(t, len(m.Data), len(r.Data))
		})
	}

	js, _ := small.Get(ClientJS)
	assert.True(t, strings.Contains(string(js.Data), "runblock:preview"), "string literals survive minification")
}
