package incr

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

// WithTracing attaches a structured logrus.Logger writing to w (or
// os.Stderr if w is nil) to the context, at debug level when Verbose
// is enabled and info level otherwise. Graph-internal events
// (stabilization start, end and failure, per-node recompute and
// cutoff) are logged through the returned context by
// tracePrintf/traceErrorf below.
func WithTracing(ctx context.Context, w io.Writer) context.Context {
	if w == nil {
		w = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	if Verbose() {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithLogger attaches an already-constructed logger to the context,
// for callers embedding the graph inside a larger service with its
// own structured logger.
func WithLogger(ctx context.Context, logger *logrus.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

func loggerFromContext(ctx context.Context) *logrus.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*logrus.Logger); ok && logger != nil {
		return logger
	}
	return nil
}

func tracePrintf(ctx context.Context, stabilizationNum StabilizationNum, format string, args ...any) {
	logger := loggerFromContext(ctx)
	if logger == nil {
		return
	}
	logger.WithField("stabilization", uint64(stabilizationNum)).Debugf(format, args...)
}

func traceErrorf(ctx context.Context, stabilizationNum StabilizationNum, err error, format string, args ...any) {
	logger := loggerFromContext(ctx)
	if logger == nil {
		return
	}
	logger.WithField("stabilization", uint64(stabilizationNum)).WithError(err).Errorf(format, args...)
}
