package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livetemplate/runblock"
	"github.com/livetemplate/runblock/internal/config"
)

// FilesCommand implements the files command. It prints the virtual file
// map a block would hand to the sandbox, or writes it under --out.
func FilesCommand(args []string) error {
	var file, blockID, outDir string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--block" || arg == "-b" {
			if i+1 < len(args) {
				blockID = args[i+1]
				i++
			}
		} else if arg == "--out" || arg == "-o" {
			if i+1 < len(args) {
				outDir = args[i+1]
				i++
			}
		} else if !strings.HasPrefix(arg, "-") {
			file = arg
		}
	}
	if file == "" {
		return fmt.Errorf("files requires a markdown file")
	}

	page, err := parsePageFile(file)
	if err != nil {
		return err
	}

	// Files per block ID
	resolved := make(map[string]runblock.Files)
	if blockID != "" {
		block, ok := page.Block(blockID)
		if !ok {
			return fmt.Errorf("block not found: %s", blockID)
		}
		preview := block.Preview()
		if preview == nil {
			return fmt.Errorf("block %s (%s) is not runnable", blockID, block.Lang().Label())
		}
		resolved[blockID] = preview.Files
	} else {
		for _, b := range page.RunnableBlocks() {
			resolved[b.ID] = b.Preview().Files
		}
	}

	if outDir == "" {
		var out any = resolved
		if blockID != "" {
			out = resolved[blockID]
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for id, files := range resolved {
		dir := outDir
		if blockID == "" {
			if !filepath.IsLocal(id) {
				return fmt.Errorf("block id %q is not a valid directory name", id)
			}
			dir = filepath.Join(outDir, id)
		}
		if err := writeFiles(dir, files); err != nil {
			return err
		}
		fmt.Printf("✅ %s: wrote %d files to %s\n", id, len(files), dir)
	}
	return nil
}

func writeFiles(dir string, files runblock.Files) error {
	for _, p := range files.Paths() {
		rel := filepath.FromSlash(strings.TrimPrefix(p, "/"))
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("refusing to write %s outside %s", p, dir)
		}
		target := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		if err := os.WriteFile(target, []byte(files[p].Code), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", p, err)
		}
	}
	return nil
}

// parsePageFile parses a markdown file with the render settings of the
// config file next to it.
func parsePageFile(file string) (*runblock.Page, error) {
	if _, err := os.Stat(file); err != nil {
		return nil, fmt.Errorf("file does not exist: %s", file)
	}
	cfg, err := config.LoadFromDir(filepath.Dir(file))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return runblock.ParseFile(file, cfg.RenderConfig())
}
