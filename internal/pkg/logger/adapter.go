package logger

import (
	"log/slog"

	"portfolio_reporter/internal/app/port"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// slogAdapter implements port.Logger.
// A nil logger falls back to the package-level functions.
type slogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns a port.Logger writing through the process logger.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// FromZap returns a port.Logger writing to z. A non-empty component is attached to every entry.
func FromZap(z *zap.Logger, component string) port.Logger {
	l := slog.New(zapslog.NewHandler(z.Core()))
	if component != "" {
		l = l.With("component", component)
	}
	return &slogAdapter{logger: l}
}

func (a *slogAdapter) Info(msg string, args ...any) {
	if a.logger == nil {
		Info(msg, args...)
		return
	}
	a.logger.Info(msg, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) {
	if a.logger == nil {
		Debug(msg, args...)
		return
	}
	a.logger.Debug(msg, args...)
}

func (a *slogAdapter) Warn(msg string, args ...any) {
	if a.logger == nil {
		Warn(msg, args...)
		return
	}
	a.logger.Warn(msg, args...)
}

func (a *slogAdapter) Error(msg string, args ...any) {
	if a.logger == nil {
		Error(msg, args...)
		return
	}
	a.logger.Error(msg, args...)
}
