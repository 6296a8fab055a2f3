package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cellforge/pkg/cache"
	"github.com/matzehuels/cellforge/pkg/server"
)

type serveOpts struct {
	addr     string
	store    string
	library  string
	cacheURL string // redis:// URL for a shared preview cache
	noCache  bool
}

// serveCommand creates the serve command: a read-only HTTP view of a store.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: "127.0.0.1:8080", library: defaultLibrary}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored templates over HTTP",
		Long: `Serve stored templates over HTTP:

  GET /templates              list
  GET /templates/{cell}       record as JSON
  GET /templates/{cell}/svg   preview

Previews are cached in the user cache directory, or in Redis with --cache.`,
		Example: `  cellforge serve -s mongodb://localhost:27017/cellforge
  cellforge serve --addr :9000 --cache redis://localhost:6379/1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.store, "store", "s", "", "template store (default $"+envStore+" or <library>_templates.yaml)")
	cmd.Flags().StringVar(&opts.library, "library", opts.library, "library used for the default store file")
	cmd.Flags().StringVar(&opts.cacheURL, "cache", "", "redis:// URL of a shared preview cache")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "render every preview")

	return cmd
}

func runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	location := storeLocation(opts.store, opts.library)
	spin := newSpinnerWithContext(ctx, "Connecting to "+location)
	spin.Start()
	store, err := openStore(ctx, location, logger)
	if err != nil {
		spin.StopWithError("Could not open " + location)
		return err
	}
	spin.StopWithSuccess("Opened " + location)
	defer store.Close()

	previews, err := newPreviewCache(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer previews.Close()

	srv := server.New(store, server.WithLogger(logger), server.WithCache(previews))
	printSuccess("Serving templates on %s", StyleHighlight.Render("http://"+opts.addr+"/templates"))
	err = srv.ListenAndServe(ctx, opts.addr)
	if errors.Is(err, context.Canceled) {
		printInfo("Server stopped")
		return nil
	}
	return err
}

func newPreviewCache(ctx context.Context, opts *serveOpts, logger *log.Logger) (cache.Cache, error) {
	switch {
	case opts.noCache:
		return cache.NewNullCache(), nil
	case strings.HasPrefix(opts.cacheURL, "redis://"), strings.HasPrefix(opts.cacheURL, "rediss://"):
		return cache.OpenRedis(ctx, opts.cacheURL)
	case opts.cacheURL != "":
		return nil, errors.New("--cache must be a redis:// URL")
	}
	dir, err := cacheDir()
	if err != nil {
		logger.Warn("no cache directory, previews are not cached", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}
