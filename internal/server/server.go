package server

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/livetemplate/runblock"
	"github.com/livetemplate/runblock/internal/assets"
	"github.com/livetemplate/runblock/internal/config"
)

// Route represents a discovered page route.
type Route struct {
	Pattern  string         // URL pattern (e.g., "/counter")
	FilePath string         // Relative file path (e.g., "counter.md")
	Page     *runblock.Page // Parsed page
}

// Server is the runblock development server.
type Server struct {
	rootDir string
	config  *config.Config
	assets  *assets.Bundle

	mu     sync.RWMutex
	routes []*Route

	cssMu        sync.Mutex
	highlightCSS map[string][]byte // chroma stylesheet per style name

	clients  map[*client]bool // Connected WebSocket clients
	clientMu sync.RWMutex     // Separate mutex for clients

	watcher *Watcher // File watcher for live reload
}

// New creates a new server for the given root directory.
func New(rootDir string) (*Server, error) {
	return NewWithConfig(rootDir, config.DefaultConfig())
}

// NewWithConfig creates a new server with a specific configuration.
func NewWithConfig(rootDir string, cfg *config.Config) (*Server, error) {
	bundle, err := assets.NewBundle(cfg.Features.Minify)
	if err != nil {
		return nil, fmt.Errorf("failed to load client assets: %w", err)
	}
	return &Server{
		rootDir:      rootDir,
		config:       cfg,
		assets:       bundle,
		routes:       make([]*Route, 0),
		highlightCSS: make(map[string][]byte),
		clients:      make(map[*client]bool),
	}, nil
}

// Config returns the server configuration.
func (s *Server) Config() *config.Config {
	return s.config
}

// Discover scans the directory for .md files and creates routes.
// Files that fail to parse are logged and skipped.
func (s *Server) Discover() error {
	routes := make([]*Route, 0)
	renderCfg := s.config.RenderConfig()

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(s.rootDir, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip directories starting with _ or .
			name := d.Name()
			if path != s.rootDir && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			if relPath != "." && s.config.IsIgnored(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		// Only process .md files
		if filepath.Ext(path) != ".md" {
			return nil
		}
		if strings.HasPrefix(d.Name(), "_") || strings.HasPrefix(d.Name(), ".") || s.config.IsIgnored(relPath) {
			return nil
		}

		page, err := runblock.ParseFile(path, renderCfg)
		if err != nil {
			log.Printf("[Server] Failed to parse %s:\n%v", relPath, err)
			return nil // Continue with other files
		}

		routes = append(routes, &Route{
			Pattern:  mdToPattern(relPath),
			FilePath: relPath,
			Page:     page,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk directory: %w", err)
	}

	sortRoutes(routes)

	s.mu.Lock()
	s.routes = routes
	s.mu.Unlock()

	if s.config.Server.Debug {
		log.Printf("[Server] Discovered %d page(s) in %s", len(routes), s.rootDir)
	}
	return nil
}

// Routes returns the discovered routes.
func (s *Server) Routes() []*Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes
}

// Route returns the route with the given pattern.
func (s *Server) Route(pattern string) (*Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, route := range s.routes {
		if route.Pattern == pattern {
			return route, true
		}
	}
	return nil, false
}

// Handler returns the server wrapped in its middleware stack. ctx bounds the
// lifetime of the rate limiter's cleanup goroutine.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWebSocket)
	mux.HandleFunc("/assets/", s.serveAsset)

	var api http.Handler = NewAPIHandler(s)
	if s.config.IsAPIEnabled() {
		rateLimit, _ := RateLimitMiddleware(ctx,
			s.config.API.GetRateLimitRPS(),
			s.config.API.GetRateLimitBurst(),
			s.config.API.GetMaxTrackedIPs())
		api = CORSMiddleware(s.config.API.GetCORSOrigins())(rateLimit(api))
	} else {
		api = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSONError(w, http.StatusNotFound, "api is disabled")
		})
	}
	mux.Handle("/api/", api)
	mux.Handle("/", s)

	var h http.Handler = mux
	if s.config.Features.Compression {
		h = WithCompression(h)
	}
	return SecurityHeadersMiddleware()(h)
}

// ServeHTTP serves discovered pages.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if route, ok := s.Route(r.URL.Path); ok {
		s.servePage(w, r, route)
		return
	}

	// Unknown pages go home when there is a home page
	if _, ok := s.Route("/"); ok && r.URL.Path != "/" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.NotFound(w, r)
}

// serveWebSocket handles WebSocket connections for the page named by ?page=.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("page")
	if pattern == "" {
		pattern = "/"
	}
	route, ok := s.Route(pattern)
	if !ok {
		http.Error(w, "No such page: "+pattern, http.StatusNotFound)
		return
	}

	NewWebSocketHandler(route, s, s.config.Server.Debug).ServeHTTP(w, r)
}

// serveAsset serves embedded client assets and the generated highlight CSS.
func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/assets/")

	if name == "highlight.css" {
		style := r.URL.Query().Get("style")
		if style == "" {
			style = s.config.RenderConfig().Style
		}
		css, err := s.stylesheet(style)
		if err != nil {
			http.Error(w, "Failed to generate stylesheet", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(css)
		return
	}

	asset, ok := s.assets.Get(name)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", asset.ContentType)
	_, _ = w.Write(asset.Data)
}

// stylesheet returns the chroma CSS for a style, generating it once.
func (s *Server) stylesheet(style string) ([]byte, error) {
	s.cssMu.Lock()
	defer s.cssMu.Unlock()

	if css, ok := s.highlightCSS[style]; ok {
		return css, nil
	}

	cfg := s.config.RenderConfig()
	cfg.Style = style
	var buf bytes.Buffer
	if err := runblock.NewHighlighter(cfg).WriteCSS(&buf); err != nil {
		return nil, err
	}
	s.highlightCSS[style] = buf.Bytes()
	return buf.Bytes(), nil
}

// servePage serves a page.
func (s *Server) servePage(w http.ResponseWriter, r *http.Request, route *Route) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.renderPage(route)))
}

// renderPage wraps a page's rendered markdown in the HTML shell.
func (s *Server) renderPage(route *Route) string {
	page := route.Page
	title := page.Title
	if title == "" {
		title = s.config.Title
	}
	esc := template.HTMLEscapeString

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <meta name="runblock-page" content="%s">
    <title>%s</title>
    <link rel="stylesheet" href="/assets/%s">
    <link rel="stylesheet" href="/assets/highlight.css?style=%s">
</head>
<body>
<main class="content-wrapper">
%s
</main>
<script src="/assets/%s"></script>
</body>
</html>
`, esc(route.Pattern), esc(title), assets.ClientCSS, template.URLQueryEscaper(page.Config.Style), page.StaticHTML, assets.ClientJS)
}

// mdToPattern converts a markdown file path to a URL pattern.
// Examples:
//   - "index.md" → "/"
//   - "counter.md" → "/counter"
//   - "tutorials/intro.md" → "/tutorials/intro"
//   - "tutorials/index.md" → "/tutorials/"
func mdToPattern(relPath string) string {
	path := filepath.ToSlash(strings.TrimSuffix(relPath, ".md"))

	if path == "index" {
		return "/"
	}
	if strings.HasSuffix(path, "/index") {
		return "/" + strings.TrimSuffix(path, "index")
	}
	return "/" + path
}

// sortRoutes orders routes: / first, then directory indexes, then the rest,
// alphabetically within each group.
func sortRoutes(routes []*Route) {
	rank := func(r *Route) int {
		switch {
		case r.Pattern == "/":
			return 0
		case strings.HasSuffix(r.Pattern, "/"):
			return 1
		default:
			return 2
		}
	}
	slices.SortStableFunc(routes, func(a, b *Route) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return ra - rb
		}
		return strings.Compare(a.Pattern, b.Pattern)
	})
}

// registerClient adds a WebSocket client to the tracked clients.
func (s *Server) registerClient(c *client) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	s.clients[c] = true
	log.Printf("[Server] WebSocket connection registered: %d active connections", len(s.clients))
}

// unregisterClient removes a WebSocket client from tracked clients.
func (s *Server) unregisterClient(c *client) {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	delete(s.clients, c)
	log.Printf("[Server] WebSocket connection unregistered: %d active connections", len(s.clients))
}

// BroadcastReload swaps re-parsed pages into every connected session and
// tells the browsers to reload.
func (s *Server) BroadcastReload(filePath string) {
	s.clientMu.RLock()
	defer s.clientMu.RUnlock()

	if len(s.clients) == 0 {
		return
	}

	log.Printf("[Server] Broadcasting reload for %s to %d connections", filePath, len(s.clients))

	for c := range s.clients {
		if route, ok := s.Route(c.pattern); ok {
			c.session.Reload(route.Page, c.stateOptions()...)
		}
		if err := c.send(outgoing{Action: "reload", FilePath: filePath}); err != nil {
			log.Printf("[Server] Failed to send reload to connection: %v", err)
		}
	}
}

// EnableWatch enables file watching for live reload.
func (s *Server) EnableWatch(debug bool) error {
	watcher, err := NewWatcher(s.rootDir, s.config.IsIgnored, func(filePath string) error {
		log.Printf("[Watch] File changed: %s", filePath)

		// Re-discover pages
		if err := s.Discover(); err != nil {
			return fmt.Errorf("failed to re-discover pages: %w", err)
		}

		// Broadcast reload to all connected clients
		s.BroadcastReload(filePath)

		return nil
	}, debug)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	s.watcher = watcher
	s.watcher.Start()

	log.Printf("[Watch] File watcher started for %s", s.rootDir)
	return nil
}

// StopWatch stops the file watcher if it's running.
func (s *Server) StopWatch() error {
	if s.watcher != nil {
		return s.watcher.Stop()
	}
	return nil
}
