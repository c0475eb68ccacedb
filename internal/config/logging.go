package config

import (
	"context"
	"log/slog"
)

// Log logs the resolved settings in a granular way, skipping irrelevant ones
func Log(s *Settings) {
	LogWithLogger(s, slog.Default())
}

// LogWithLogger logs the resolved settings using the provided logger
func LogWithLogger(s *Settings, logger *slog.Logger) {
	ctx := context.Background()
	logger.DebugContext(ctx, "Config: input_dir", "value", s.InputDir)
	logger.DebugContext(ctx, "Config: workers", "value", s.Workers)
	logger.DebugContext(ctx, "Config: log_level", "value", s.LogLevel)

	logger.DebugContext(ctx, "Config: watch", "value", s.Watch)
	if s.Watch {
		logger.DebugContext(ctx, "Config: watch_debounce", "value", s.WatchDebounce)
	}

	logger.DebugContext(ctx, "Config: no_index", "value", s.NoIndex)
	if !s.NoIndex {
		logger.DebugContext(ctx, "Config: index.dir", "value", s.Index.Dir)
		logger.DebugContext(ctx, "Config: index.lock_timeout", "value", s.Index.LockTimeout)
	}
}
