package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/livetemplate/runblock/internal/config"
	"github.com/livetemplate/runblock/internal/server"
)

// ServeCommand implements the serve command.
func ServeCommand(args []string) error {
	dir := "."
	var configPath string
	var port string
	var host string
	var watch *bool
	debug := false

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--watch" || arg == "-w" {
			watchVal := true
			watch = &watchVal
		} else if arg == "--no-watch" {
			watchVal := false
			watch = &watchVal
		} else if arg == "--port" || arg == "-p" {
			if i+1 < len(args) {
				port = args[i+1]
				i++
			}
		} else if arg == "--host" {
			if i+1 < len(args) {
				host = args[i+1]
				i++
			}
		} else if arg == "--config" || arg == "-c" {
			if i+1 < len(args) {
				configPath = args[i+1]
				i++
			}
		} else if arg == "--debug" {
			debug = true
		} else if !strings.HasPrefix(arg, "-") {
			dir = arg
		}
	}

	absDir, err := resolveDir(dir)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(absDir, configPath)
	if err != nil {
		return err
	}

	// CLI flags override config
	if port != "" {
		portInt, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid port: %s", port)
		}
		cfg.Server.Port = portInt
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if watch != nil {
		cfg.Features.HotReload = *watch
	}
	if debug {
		cfg.Server.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fmt.Printf("📚 Runblock Development Server\n\n")
	fmt.Printf("Serving: %s\n", absDir)

	srv, err := server.NewWithConfig(absDir, cfg)
	if err != nil {
		return err
	}
	if err := srv.Discover(); err != nil {
		return fmt.Errorf("failed to discover pages: %w", err)
	}

	fmt.Printf("\nPages discovered:\n")
	for _, route := range srv.Routes() {
		fmt.Printf("  %-30s %s (%d blocks)\n", route.Pattern, route.FilePath, len(route.Page.Blocks))
	}

	if cfg.Features.HotReload {
		if err := srv.EnableWatch(cfg.Server.Debug); err != nil {
			return fmt.Errorf("failed to enable watch mode: %w", err)
		}
		defer srv.StopWatch()
		fmt.Printf("\n👀 Watch mode enabled - files will auto-reload on changes\n")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	fmt.Printf("\n🌐 Server running at http://%s\n", addr)
	if cfg.IsAPIEnabled() {
		fmt.Printf("🔌 REST API enabled at /api/pages and /api/blocks\n")
	}
	if cfg.Features.Compression {
		fmt.Printf("⚡ Gzip compression enabled\n")
	}
	fmt.Printf("Press Ctrl+C to stop\n\n")

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Printf("\n👋 Shutting down\n")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// resolveDir checks that dir exists and returns its absolute path.
func resolveDir(dir string) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return absDir, nil
}

// loadConfig loads configPath when given, otherwise the config file in dir.
func loadConfig(dir, configPath string) (*config.Config, error) {
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		fmt.Printf("📝 Using config: %s\n", configPath)
		return cfg, nil
	}
	cfg, err := config.LoadFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func init() {
	log.SetFlags(0) // Remove timestamp from logs
}
