package commands

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/livetemplate/runblock"
)

// systemClipboard writes to the OS clipboard. Tests swap it out.
var systemClipboard runblock.Clipboard = runblock.ClipboardFunc(clipboard.WriteAll)

// CopyCommand implements the copy command.
func CopyCommand(args []string) error {
	var file, blockID string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--block" || arg == "-b" {
			if i+1 < len(args) {
				blockID = args[i+1]
				i++
			}
		} else if !strings.HasPrefix(arg, "-") {
			file = arg
		}
	}
	if file == "" || blockID == "" {
		return fmt.Errorf("usage: runblock copy <file.md> --block ID")
	}

	page, err := parsePageFile(file)
	if err != nil {
		return err
	}
	block, ok := page.Block(blockID)
	if !ok {
		return fmt.Errorf("block not found: %s", blockID)
	}

	if err := systemClipboard.WriteAll(block.Content); err != nil {
		return fmt.Errorf("failed to copy block %s: %w", blockID, err)
	}

	fmt.Printf("📋 Copied %s (%d lines)\n", blockID, strings.Count(block.Content, "\n")+1)
	return nil
}
