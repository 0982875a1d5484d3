// Package assets embeds the client JavaScript and CSS
package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/js"
)

//go:embed client/*
var clientFS embed.FS

// Client asset names, as served under /assets/.
const (
	ClientJS  = "runblock.js"
	ClientCSS = "runblock.css"
)

var mediaTypes = map[string]string{
	".js":  "application/javascript",
	".css": "text/css",
}

// Asset is one servable client file.
type Asset struct {
	Name        string
	ContentType string
	Data        []byte
}

// Bundle holds the client files, minified or as written.
type Bundle struct {
	assets map[string]Asset
}

// ClientFS returns the embedded client files
func ClientFS() fs.FS {
	sub, err := fs.Sub(clientFS, "client")
	if err != nil {
		panic(err)
	}
	return sub
}

// NewBundle loads every embedded client file. With minified set, files are
// run through the minifier; a file that fails to minify is kept as is.
func NewBundle(minified bool) (*Bundle, error) {
	var m *minify.M
	if minified {
		m = minify.New()
		m.AddFunc("application/javascript", js.Minify)
		m.AddFunc("text/css", css.Minify)
	}

	b := &Bundle{assets: make(map[string]Asset)}
	err := fs.WalkDir(clientFS, "client", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		mediaType, ok := mediaTypes[strings.ToLower(path.Ext(p))]
		if !ok {
			return nil
		}
		raw, err := clientFS.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		data := raw
		if m != nil {
			out, err := m.Bytes(mediaType, raw)
			if err != nil {
				log.Printf("[Assets] minify warning: %s: %v (using original)", p, err)
			} else {
				data = out
			}
		}

		name := path.Base(p)
		b.assets[name] = Asset{
			Name:        name,
			ContentType: mediaType + "; charset=utf-8",
			Data:        data,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Get returns the asset with the given name.
func (b *Bundle) Get(name string) (Asset, bool) {
	a, ok := b.assets[name]
	return a, ok
}

// Names returns the names of all assets in the bundle.
func (b *Bundle) Names() []string {
	names := make([]string, 0, len(b.assets))
	for name := range b.assets {
		names = append(names, name)
	}
	return names
}

// GetClientJS returns the browser JavaScript as written
func GetClientJS() ([]byte, error) {
	return clientFS.ReadFile("client/" + ClientJS)
}

// GetClientCSS returns the browser CSS as written
func GetClientCSS() ([]byte, error) {
	return clientFS.ReadFile("client/" + ClientCSS)
}
