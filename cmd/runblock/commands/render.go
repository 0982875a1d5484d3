package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/livetemplate/runblock"
)

// RenderCommand implements the render command: a standalone HTML export
// with inline highlighting and no live behavior.
func RenderCommand(args []string) error {
	var file, style, out string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--style" || arg == "-s" {
			if i+1 < len(args) {
				style = args[i+1]
				i++
			}
		} else if arg == "--out" || arg == "-o" {
			if i+1 < len(args) {
				out = args[i+1]
				i++
			}
		} else if !strings.HasPrefix(arg, "-") {
			file = arg
		}
	}
	if file == "" {
		return fmt.Errorf("render requires a markdown file")
	}

	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	html, err := runblock.RenderStatic(content, style)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", file, err)
	}

	if out == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(out, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("✅ Rendered %s to %s\n", file, out)
	return nil
}
