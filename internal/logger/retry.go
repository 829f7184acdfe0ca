package logger

import (
	"context"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// retryLogger implements retryablehttp.LeveledLogger on top of a sugared logger.
type retryLogger struct {
	log *zap.SugaredLogger
}

// NewRetryLogger returns a retryablehttp.LeveledLogger that writes through the
// logger stored in ctx. Messages below minLevel are dropped, so the per-attempt
// chatter of the HTTP client only shows up when asked for.
//
//nolint:ireturn // retryablehttp consumes the interface.
func NewRetryLogger(ctx context.Context, minLevel zapcore.Level) retryablehttp.LeveledLogger {
	base := FromContext(ctx).Desugar().WithOptions(WithLevel(minLevel))

	return &retryLogger{log: base.Sugar()}
}

func (l *retryLogger) Error(msg string, keysAndValues ...any) {
	l.log.Errorw(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...any) {
	l.log.Warnw(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...any) {
	l.log.Infow(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...any) {
	l.log.Debugw(msg, keysAndValues...)
}
