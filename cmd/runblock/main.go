// Command runblock serves markdown documents whose code blocks can be
// copied and previewed live in the browser.
package main

import (
	"fmt"
	"os"

	"github.com/livetemplate/runblock/cmd/runblock/commands"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "serve":
		err = commands.ServeCommand(args)
	case "blocks":
		err = commands.BlocksCommand(args)
	case "files":
		err = commands.FilesCommand(args)
	case "copy":
		err = commands.CopyCommand(args)
	case "render":
		err = commands.RenderCommand(args)
	case "version":
		fmt.Printf("runblock version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func printUsage() {
	fmt.Println("runblock - Runnable code blocks for markdown")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  runblock serve [directory]                 Start development server")
	fmt.Println("  runblock blocks [directory]                Inspect code blocks")
	fmt.Println("  runblock files <file.md> [--block ID]      Print resolved preview files")
	fmt.Println("  runblock copy <file.md> --block ID         Copy a block to the clipboard")
	fmt.Println("  runblock render <file.md> [--style S]      Export highlighted static HTML")
	fmt.Println("  runblock version                           Show version")
	fmt.Println("  runblock help                              Show this help")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  runblock serve                             # Serve current directory")
	fmt.Println("  runblock serve ./docs --watch              # Serve with live reload")
	fmt.Println("  runblock blocks . --verbose                # Show detailed block info")
	fmt.Println("  runblock files guide.md --block counter    # Files of one block as JSON")
	fmt.Println("  runblock files guide.md --out ./sandbox    # Write files of every runnable block")
	fmt.Println("  runblock render guide.md --out guide.html  # Write a standalone export")
}
