package app

import (
	"github.com/sha1n/docindex/internal/config"
	"github.com/spf13/pflag"
)

// RegisterFlags registers the indexing CLI flags on the given FlagSet
func RegisterFlags(flags *pflag.FlagSet) {
	flags.StringP("input-dir", "i", "", "Directory to scan for PDF and DOCX files")
	flags.BoolP("watch", "w", false, "Keep running and re-index when files change")
	flags.Duration("watch-debounce", config.DefaultWatchDebounce, "Quiet period after a change before re-indexing")
	registerCommonFlags(flags)
}

// RegisterServeFlags registers the flags of the MCP tool server on the given FlagSet
func RegisterServeFlags(flags *pflag.FlagSet) {
	registerCommonFlags(flags)
}

func registerCommonFlags(flags *pflag.FlagSet) {
	flags.BoolP("no-index", "n", false, "Extract documents without submitting them to the index (dry run)")
	flags.Int("workers", config.DefaultWorkers, "Number of files processed concurrently")
	flags.String("index-dir", "", "Search index directory (default ~/.docindex/documents.bleve)")
	flags.Duration("index-lock-timeout", config.DefaultLockTimeout, "How long to wait for another writer to release the index")
	flags.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
}
