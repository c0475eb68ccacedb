package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docindex/internal/config"
	"github.com/sha1n/docindex/internal/extractors"
	"github.com/sha1n/docindex/internal/index"
	"github.com/sha1n/docindex/internal/ingest"
	mcputil "github.com/sha1n/docindex/internal/mcp"
	"github.com/sha1n/docindex/internal/watch"
	"github.com/spf13/pflag"
)

// ServerName is the implementation name the tool server reports
const ServerName = "docindex"

// RunParams contains dependencies for the run function
type RunParams struct {
	LoadSettings      func(*pflag.FlagSet) (*config.Settings, error)
	ValidSettings     func(*config.Settings) error
	NewIndex          func(*config.Settings) ingest.Index
	NewRouter         func() *ingest.Router
	Out               io.Writer     // Run summaries; defaults to stdout
	CustomIOTransport mcp.Transport // Optional: for testing with custom IO
}

// DefaultRunParams returns production dependencies for indexing runs
func DefaultRunParams() RunParams {
	return RunParams{
		LoadSettings:  config.LoadSettingsWithFlags,
		ValidSettings: config.ValidateSettings,
		NewIndex:      NewIndex,
		NewRouter:     NewRouter,
		Out:           os.Stdout,
	}
}

// DefaultServeParams returns production dependencies for the tool server
func DefaultServeParams() RunParams {
	params := DefaultRunParams()
	params.ValidSettings = config.ValidateServeSettings
	return params
}

// NewIndex opens the Bleve store configured in settings
func NewIndex(settings *config.Settings) ingest.Index {
	return index.NewStore(settings.Index.Dir, settings.Index.LockTimeout)
}

// NewRouter returns a router backed by the PDF and DOCX extractors
func NewRouter() *ingest.Router {
	return ingest.NewRouter(extractors.PDF{}, extractors.DOCX{})
}

// RunWithDeps indexes the configured directory once, or keeps re-indexing it in watch mode
func RunWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := setup(params, flags, version)
	if err != nil {
		return err
	}

	pipeline := newPipeline(params, settings, settings.InputDir, settings.NoIndex)
	out := params.Out
	if out == nil {
		out = os.Stdout
	}

	run := func(ctx context.Context) error {
		report, err := pipeline.Run(ctx)
		if err != nil {
			return err
		}
		printReport(out, report)
		return nil
	}

	if !settings.Watch {
		return run(ctx)
	}

	var ignore []string
	if !settings.NoIndex {
		ignore = append(ignore, settings.Index.Dir, settings.Index.Dir+index.LockSuffix)
	}
	slog.Info("Watching for changes", "root", settings.InputDir, "debounce", settings.WatchDebounce)
	return watch.New(settings.InputDir, settings.WatchDebounce, run, ignore...).Watch(ctx)
}

// ServeWithDeps runs the MCP tool server until the client disconnects or ctx is done
func ServeWithDeps(ctx context.Context, params RunParams, flags *pflag.FlagSet, version string) error {
	settings, err := setup(params, flags, version)
	if err != nil {
		return err
	}

	server := mcputil.CreateServer(mcputil.ServerConfig{
		Name:    ServerName,
		Version: version,
		Run: func(ctx context.Context, root string, dryRun bool) (*ingest.Report, error) {
			return newPipeline(params, settings, root, dryRun || settings.NoIndex).Run(ctx)
		},
	})

	// Use custom transport if provided (for testing), otherwise use stdio
	transport := params.CustomIOTransport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}
	return server.Run(ctx, transport)
}

// setup loads and validates settings and configures logging
func setup(params RunParams, flags *pflag.FlagSet, version string) (*config.Settings, error) {
	settings, err := params.LoadSettings(flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if err := params.ValidSettings(settings); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := config.ParseLogLevel(settings.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}

	// Always log to stderr; stdout carries run summaries and the stdio transport
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	slog.Info("Starting docindex", "version", version)
	config.Log(settings)

	return settings, nil
}

func newPipeline(params RunParams, settings *config.Settings, root string, dryRun bool) *ingest.Pipeline {
	var idx ingest.Index
	if !dryRun {
		idx = params.NewIndex(settings)
	}
	cfg := ingest.Config{
		Root:    root,
		Workers: settings.Workers,
		DryRun:  dryRun,
	}
	return ingest.NewPipeline(cfg, params.NewRouter(), idx)
}

func printReport(out io.Writer, r *ingest.Report) {
	switch {
	case r.DryRun:
		_, _ = fmt.Fprintf(out, "Dry run: %d documents prepared, nothing indexed.\n", r.Assembled)
	case r.Indexed > 0:
		_, _ = fmt.Fprintf(out, "Indexed %d documents!\n", r.Indexed)
	default:
		_, _ = fmt.Fprintln(out, "No documents indexed.")
	}
}
