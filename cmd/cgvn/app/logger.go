package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/agentstation/cgvn/pkg/logging"
)

// NewLogger creates the CLI logger at the level chosen by
// Config.ResolveLogLevel. Debug and trace logs carry the caller.
func NewLogger(cfg *Config) zerolog.Logger {
	level, warning := cfg.ResolveLogLevel()
	if warning != "" {
		fmt.Fprintln(os.Stderr, "Warning: "+warning)
	}

	return logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    cfg.LogFormat,
		Output:    cfg.LogOutput,
		NoColor:   cfg.NoColor,
		AddCaller: level == zerolog.LevelDebugValue || level == zerolog.LevelTraceValue,
	})
}
