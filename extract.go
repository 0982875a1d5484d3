package runblock

import (
	"maps"
	"path"
	"regexp"
	"slices"
	"strings"
)

// File is one entry of a virtual project handed to the preview sandbox.
type File struct {
	Code   string `json:"code"`
	Hidden bool   `json:"hidden,omitempty"`
}

// Files maps absolute-style paths ("/App.js") to their content.
type Files map[string]File

// Paths returns the file paths in lexical order.
func (f Files) Paths() []string {
	return slices.Sorted(maps.Keys(f))
}

// Marker patterns. All markers occupy a whole line.
var (
	// "// FILE: App.js"
	lineMarkerRe = regexp.MustCompile(`(?m)^[ \t]*//[ \t]*FILE:[ \t]*(\S+)[ \t\r]*$`)
	// "/* FILE: App.js */"
	blockMarkerRe = regexp.MustCompile(`(?m)^[ \t]*/\*[ \t]*FILE:[ \t]*([^\s*]+)[ \t]*\*/[ \t\r]*$`)
	// "// App.js": any single-token line comment is a candidate
	filenameCommentRe = regexp.MustCompile(`(?m)^[ \t]*//[ \t]*(\S+)[ \t\r]*$`)
	// name.extension, extension letters only, no path separators
	validFilenameRe = regexp.MustCompile(`^[^/\s]+\.[A-Za-z]+$`)
)

// extractor is one file-splitting strategy. It returns nil when the code has
// no markers it recognizes.
type extractor func(code string) Files

// extractors are tried in priority order; the first non-empty result wins.
var extractors = []extractor{
	lineMarkerFiles,
	blockMarkerFiles,
	filenameCommentFiles,
}

// ExtractFiles splits a snippet into a virtual multi-file project using
// file-marker comments. It returns an empty map when the snippet has no
// markers at all.
//
// Text before the first marker is not assigned to any file.
func ExtractFiles(code string) Files {
	for _, extract := range extractors {
		if files := extract(code); len(files) > 0 {
			return files
		}
	}
	return Files{}
}

func lineMarkerFiles(code string) Files {
	return splitAtMarkers(code, findMarkers(code, lineMarkerRe, nil))
}

func blockMarkerFiles(code string) Files {
	return splitAtMarkers(code, findMarkers(code, blockMarkerRe, nil))
}

func filenameCommentFiles(code string) Files {
	return splitAtMarkers(code, findMarkers(code, filenameCommentRe, validFilenameRe.MatchString))
}

// marker is a file boundary: the marker line spans [start, end).
type marker struct {
	name       string
	start, end int
}

// findMarkers returns every match of re whose captured name passes accept.
// Rejected candidates are not boundaries; their text stays in the
// surrounding segment.
func findMarkers(code string, re *regexp.Regexp, accept func(string) bool) []marker {
	var markers []marker
	for _, idx := range re.FindAllStringSubmatchIndex(code, -1) {
		name := code[idx[2]:idx[3]]
		if accept != nil && !accept(name) {
			continue
		}
		// Names such as "./" or ".." clean to the root and name no file
		if filePath(name) == "/" {
			continue
		}
		markers = append(markers, marker{name: name, start: idx[0], end: idx[1]})
	}
	return markers
}

// splitAtMarkers assigns the text between consecutive markers to the file
// named by the earlier marker. A repeated name keeps the last segment.
func splitAtMarkers(code string, markers []marker) Files {
	if len(markers) == 0 {
		return nil
	}

	files := make(Files, len(markers))
	for i, m := range markers {
		end := len(code)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		files[filePath(m.name)] = File{Code: strings.TrimSpace(code[m.end:end])}
	}
	return files
}

// filePath turns a marker or import name into a sandbox path:
// "App.js", "./App.js" and "/App.js" all become "/App.js".
func filePath(name string) string {
	return path.Clean("/" + strings.TrimSpace(name))
}
