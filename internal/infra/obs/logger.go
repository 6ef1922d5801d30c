package obs

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// NewLogger uses tint's coloured handler for dev/local and JSON elsewhere.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env, slog.LevelInfo)
}

func newLogger(w io.Writer, env string, level slog.Level) *slog.Logger {
	if env == "dev" || env == "local" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	}))
}
