package commands

import (
	"log/slog"
	"os"

	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/requestid"
)

// Flags holds the global flags shared by every command.
type Flags struct {
	LogLevel  string
	LogFormat string
	EnvFiles  []string
}

// Logger builds the process logger from the global flags.
func (f *Flags) Logger() *slog.Logger {
	format := logger.FormatText
	if f.LogFormat == string(logger.FormatJSON) {
		format = logger.FormatJSON
	}
	return logger.New(
		logger.WithLevelName(f.LogLevel),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
}
