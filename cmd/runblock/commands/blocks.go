package commands

import (
	"fmt"
	"strings"

	"github.com/livetemplate/runblock/internal/server"
)

// BlocksCommand implements the blocks command.
func BlocksCommand(args []string) error {
	dir := "."
	verbose := false

	for _, arg := range args {
		if arg == "--verbose" || arg == "-v" {
			verbose = true
		} else if !strings.HasPrefix(arg, "-") {
			dir = arg
		}
	}

	absDir, err := resolveDir(dir)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(absDir, "")
	if err != nil {
		return err
	}

	srv, err := server.NewWithConfig(absDir, cfg)
	if err != nil {
		return err
	}
	if err := srv.Discover(); err != nil {
		return fmt.Errorf("failed to discover pages: %w", err)
	}

	fmt.Printf("🔍 Inspecting blocks in: %s\n\n", absDir)

	var totalBlocks, runnableBlocks int
	for _, route := range srv.Routes() {
		page := route.Page
		if len(page.Blocks) == 0 {
			continue
		}
		fmt.Printf("📄 %s\n", route.FilePath)

		for _, b := range page.Blocks {
			lang := b.Lang()
			totalBlocks++
			marker := "  "
			if lang.Runnable() {
				runnableBlocks++
				marker = "▶ "
			}
			fmt.Printf("  %s%-20s %-12s line %d\n", marker, b.ID, lang.Label(), b.Line)

			if !verbose {
				continue
			}
			if preview := b.Preview(); preview != nil {
				fmt.Printf("      template: %s\n", preview.Template)
				for _, p := range preview.Files.Paths() {
					suffix := ""
					if preview.Files[p].Hidden {
						suffix = " (hidden)"
					}
					fmt.Printf("      %s%s\n", p, suffix)
				}
			}
		}
		fmt.Println()
	}

	fmt.Printf("📊 Summary: %d blocks, %d runnable, %d pages\n", totalBlocks, runnableBlocks, len(srv.Routes()))
	return nil
}
