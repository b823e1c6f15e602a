package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goliatone/go-shopadmin/catalog"
)

// SlogLogger adapts slog to catalog.Logger.
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger writes text logs to w at level (debug, info, warn, error).
func NewSlogLogger(w io.Writer, level string) *SlogLogger {
	return &SlogLogger{
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLevel(level)})),
	}
}

func (l *SlogLogger) Debugf(format string, args ...any) {
	l.logger().Debug(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Infof(format string, args ...any) {
	l.logger().Info(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) Errorf(format string, args ...any) {
	l.logger().Error(fmt.Sprintf(format, args...))
}

func (l *SlogLogger) logger() *slog.Logger {
	if l == nil || l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var _ catalog.Logger = (*SlogLogger)(nil)
