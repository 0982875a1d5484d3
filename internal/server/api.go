package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/livetemplate/runblock"
)

// APIHandler serves read-only JSON about discovered pages and their blocks.
//
//	GET /api/pages                 all pages with block counts
//	GET /api/blocks?page=/x        every block of a page
//	GET /api/blocks?page=/x&id=b   one block, including its virtual files
type APIHandler struct {
	server *Server
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(s *Server) *APIHandler {
	return &APIHandler{server: s}
}

// PageInfo describes one page in /api/pages.
type PageInfo struct {
	Route    string `json:"route"`
	File     string `json:"file"`
	Title    string `json:"title"`
	Blocks   int    `json:"blocks"`
	Runnable int    `json:"runnable"`
}

// BlockInfo describes one block in /api/blocks.
type BlockInfo struct {
	ID       string            `json:"id"`
	Language string            `json:"language"`
	Line     int               `json:"line"`
	Runnable bool              `json:"runnable"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Files    runblock.Files    `json:"files,omitempty"`
	Preview  *runblock.Preview `json:"preview,omitempty"`
}

// ServeHTTP routes API requests.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/pages":
		h.handlePages(w)
	case "/api/blocks":
		h.handleBlocks(w, r)
	default:
		writeError(w, http.StatusNotFound, "unknown endpoint")
	}
}

func (h *APIHandler) handlePages(w http.ResponseWriter) {
	routes := h.server.Routes()
	pages := make([]PageInfo, 0, len(routes))
	for _, route := range routes {
		pages = append(pages, PageInfo{
			Route:    route.Pattern,
			File:     route.FilePath,
			Title:    route.Page.Title,
			Blocks:   len(route.Page.Blocks),
			Runnable: len(route.Page.RunnableBlocks()),
		})
	}
	writeJSON(w, http.StatusOK, pages)
}

func (h *APIHandler) handleBlocks(w http.ResponseWriter, r *http.Request) {
	pattern := r.URL.Query().Get("page")
	if pattern == "" {
		writeError(w, http.StatusBadRequest, "missing page parameter")
		return
	}
	route, ok := h.server.Route(pattern)
	if !ok {
		writeError(w, http.StatusNotFound, "page not found: "+pattern)
		return
	}

	if id := r.URL.Query().Get("id"); id != "" {
		block, ok := route.Page.Block(id)
		if !ok {
			writeError(w, http.StatusNotFound, "block not found: "+id)
			return
		}
		writeJSON(w, http.StatusOK, describeBlock(block, true))
		return
	}

	blocks := make([]BlockInfo, 0, len(route.Page.Blocks))
	for _, b := range route.Page.Blocks {
		blocks = append(blocks, describeBlock(b, false))
	}
	writeJSON(w, http.StatusOK, blocks)
}

// describeBlock summarizes a block; detail adds its files and preview payload.
func describeBlock(b *runblock.CodeBlock, detail bool) BlockInfo {
	lang := b.Lang()
	info := BlockInfo{
		ID:       b.ID,
		Language: lang.Label(),
		Line:     b.Line,
		Runnable: lang.Runnable(),
		Metadata: b.Metadata,
	}
	if len(info.Metadata) == 0 {
		info.Metadata = nil
	}
	if detail {
		info.Preview = b.Preview()
		if info.Preview != nil {
			info.Files = info.Preview.Files
		}
	}
	return info
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSONError(w, status, message)
}
