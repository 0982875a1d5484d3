package runblock

import (
	"fmt"
	"os"
	"strings"
)

// ParseError is an authoring error in a markdown document, with enough
// context to point at the offending line.
type ParseError struct {
	File    string // Source file path
	Line    int    // Line number (1-indexed)
	Column  int    // Column number (1-indexed, optional)
	Message string
	Hint    string // Helpful suggestion
	Related string // Related information (e.g., "first defined at line 20")

	source []byte // in-memory source, used instead of reading File
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Format()
}

// Format returns the error with surrounding source lines, hint and related
// information.
func (e *ParseError) Format() string {
	var b strings.Builder

	name := e.File
	if name == "" {
		name = "document"
	}
	fmt.Fprintf(&b, "❌ Error in %s\n\n", name)
	fmt.Fprintf(&b, "Line %d: %s\n", e.Line, e.Message)

	b.WriteString(e.codeContext())

	if e.Hint != "" {
		fmt.Fprintf(&b, "\n💡 Tip: %s\n", e.Hint)
	}
	if e.Related != "" {
		fmt.Fprintf(&b, "\n🔗 %s\n", e.Related)
	}
	return b.String()
}

// codeContext renders two lines either side of the error line.
func (e *ParseError) codeContext() string {
	src := e.source
	if src == nil && e.File != "" {
		data, err := os.ReadFile(e.File)
		if err != nil {
			return ""
		}
		src = data
	}
	if src == nil {
		return ""
	}

	lines := strings.Split(strings.TrimSuffix(string(src), "\n"), "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	start := max(1, e.Line-2)
	end := min(len(lines), e.Line+2)
	for i := start; i <= end; i++ {
		prefix := fmt.Sprintf("  %2d | ", i)
		b.WriteString(prefix + lines[i-1] + "\n")
		if i == e.Line && e.Column > 0 {
			b.WriteString(strings.Repeat(" ", len(prefix)+e.Column-1) + "^\n")
		}
	}
	return b.String()
}

// NewParseError creates a new ParseError.
func NewParseError(file string, line int, message string) *ParseError {
	return &ParseError{
		File:    file,
		Line:    line,
		Message: message,
	}
}

// WithColumn adds column information to the error.
func (e *ParseError) WithColumn(col int) *ParseError {
	e.Column = col
	return e
}

// WithHint adds a helpful hint to the error.
func (e *ParseError) WithHint(hint string) *ParseError {
	e.Hint = hint
	return e
}

// WithRelated adds related information to the error.
func (e *ParseError) WithRelated(related string) *ParseError {
	e.Related = related
	return e
}

// WithSource attaches the document text so context can be shown without
// reading File from disk.
func (e *ParseError) WithSource(src []byte) *ParseError {
	e.source = src
	return e
}
