package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/livetemplate/runblock/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.API = &config.APIConfig{Enabled: true}
	srv := newTestServer(t, cfg, map[string]string{
		"index.md": "# Home\n",
		"guide.md": demoPage,
	})
	return testHandler(t, srv)
}

func getJSON(t *testing.T, h http.Handler, target string, v any) int {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
	if v != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
	}
	return w.Code
}

func TestAPIPages(t *testing.T) {
	var pages []PageInfo
	code := getJSON(t, apiServer(t), "/api/pages", &pages)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, pages, 2)
	assert.Equal(t, PageInfo{Route: "/", File: "index.md", Blocks: 0, Runnable: 0}, pages[0])
	assert.Equal(t, PageInfo{Route: "/guide", File: "guide.md", Title: "Demo", Blocks: 2, Runnable: 1}, pages[1])
}

func TestAPIBlocks(t *testing.T) {
	h := apiServer(t)

	t.Run("list", func(t *testing.T) {
		var blocks []BlockInfo
		code := getJSON(t, h, "/api/blocks?page=/guide", &blocks)

		require.Equal(t, http.StatusOK, code)
		require.Len(t, blocks, 2)
		assert.Equal(t, "counter", blocks[0].ID)
		assert.Equal(t, "jsx", blocks[0].Language)
		assert.True(t, blocks[0].Runnable)
		assert.Nil(t, blocks[0].Preview, "list omits previews")
		assert.Equal(t, "main", blocks[1].ID)
		assert.False(t, blocks[1].Runnable)
	})

	t.Run("detail", func(t *testing.T) {
		var block BlockInfo
		code := getJSON(t, h, "/api/blocks?page=/guide&id=counter", &block)

		require.Equal(t, http.StatusOK, code)
		require.NotNil(t, block.Preview)
		assert.Equal(t, "react", block.Preview.Template)
		assert.Contains(t, block.Files, "/App.js")
		assert.Contains(t, block.Files["/App.js"].Code, "function App()")
	})

	t.Run("detail of non-runnable block has no files", func(t *testing.T) {
		var block BlockInfo
		code := getJSON(t, h, "/api/blocks?page=/guide&id=main", &block)

		require.Equal(t, http.StatusOK, code)
		assert.Nil(t, block.Preview)
		assert.Empty(t, block.Files)
	})
}

func TestAPIErrors(t *testing.T) {
	h := apiServer(t)

	tests := []struct {
		name   string
		target string
		status int
		msg    string
	}{
		{"missing page", "/api/blocks", http.StatusBadRequest, "missing page parameter"},
		{"unknown page", "/api/blocks?page=/nope", http.StatusNotFound, "page not found: /nope"},
		{"unknown block", "/api/blocks?page=/guide&id=nope", http.StatusNotFound, "block not found: nope"},
		{"unknown endpoint", "/api/other", http.StatusNotFound, "unknown endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]string
			code := getJSON(t, h, tt.target, &body)
			assert.Equal(t, tt.status, code)
			assert.Equal(t, tt.msg, body["error"])
		})
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("POST", "/api/pages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestAPIDisabled(t *testing.T) {
	srv := newTestServer(t, nil, map[string]string{"index.md": "# Home\n"})

	var body map[string]string
	code := getJSON(t, testHandler(t, srv), "/api/pages", &body)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "api is disabled", body["error"])
}

func TestAPICORS(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API = &config.APIConfig{
		Enabled: true,
		CORS:    &config.CORSConfig{Origins: []string{"http://localhost:3000"}},
	}
	h := testHandler(t, newTestServer(t, cfg, map[string]string{"index.md": "# Home\n"}))

	tests := []struct {
		origin string
		want   string
	}{
		{"http://localhost:3000", "http://localhost:3000"},
		{"http://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/pages", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}

	req := httptest.NewRequest("OPTIONS", "/api/pages", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GET, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestAPIRateLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API = &config.APIConfig{
		Enabled:   true,
		RateLimit: &config.RateLimitConfig{RequestsPerSecond: 0.001, Burst: 1},
	}
	h := testHandler(t, newTestServer(t, cfg, map[string]string{"index.md": "# Home\n"}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/pages", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/api/pages", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Pages are not rate limited
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
