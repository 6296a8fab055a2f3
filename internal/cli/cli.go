// Package cli implements the cellforge command-line interface.
//
// # Commands
//
//   - build: generate cells and publish their template records to a store
//   - export: generate cells and write SVG, JSON, PNG, or PDF views
//   - plan: show the placement plan of a cell as DOT or SVG
//   - inspect: list the templates and grids of a technology, or a store's records
//   - browse: pick a stored template interactively
//   - serve: serve a store over HTTP
//   - cache: manage the preview cache
//
// # Configuration
//
// --tech and --store fall back to CELLFORGE_TECH and CELLFORGE_STORE. Without
// a technology file the built-in demo technology is used; without a store,
// records go to <library>_templates.yaml in the working directory.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// is carried on the command context.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cellforge/pkg/tech"
	"github.com/matzehuels/cellforge/pkg/templatedb"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "cellforge"

	// defaultLibrary names the library generated cells go into.
	defaultLibrary = "logic_generated"

	envTech  = "CELLFORGE_TECH"
	envStore = "CELLFORGE_STORE"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Technology and Store
// =============================================================================

// techPath resolves the --tech flag against CELLFORGE_TECH.
func techPath(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(envTech)
}

// loadTech loads the technology file at path, or the demo technology when
// path is empty.
func loadTech(path string, logger *log.Logger) (*tech.Tech, error) {
	if path == "" {
		logger.Debug("using built-in technology", "name", tech.DemoName)
		return tech.Demo()
	}
	logger.Debug("loading technology", "file", path)
	return tech.Load(&tech.FileProvider{Path: path})
}

// storeLocation resolves the --store flag against CELLFORGE_STORE, then
// the per-library default file.
func storeLocation(flag, library string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv(envStore); env != "" {
		return env
	}
	return library + "_templates.yaml"
}

func openStore(ctx context.Context, location string, logger *log.Logger) (templatedb.Store, error) {
	logger.Debug("opening template store", "location", location)
	return templatedb.Open(ctx, location, templatedb.WithLogger(logger))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the preview cache directory using XDG standard
// (~/.cache/cellforge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
