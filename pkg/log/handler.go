package log

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"

	gderrors "github.com/YuminosukeSato/gdlinear/pkg/errors"
)

// ErrFmtHandler is a slog handler to format stacktrace from cockroachdb/errors.
// It also tags records carrying a library error with a stable error code.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler function wraps the standard slog handler.
// This function returns the slog handler which emits logs with a stacktrace attribute.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{
		handler: handler,
	}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var found error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key == ErrAttrKey {
			if err, ok := attr.Value.Any().(error); ok {
				found = err
			}
			return false
		}
		return true
	})
	if found != nil {
		if stacktrace := extractStacktrace(found); stacktrace != "" {
			r.AddAttrs(slog.String(StacktraceAttrKey, stacktrace))
		}
		if code := ErrorCode(found); code != "" {
			r.AddAttrs(slog.String(ErrorCodeKey, code))
		}
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

// ErrorCode maps library error types to the standard error code values.
// It returns "" for errors it does not know.
func ErrorCode(err error) string {
	var (
		notFitted *gderrors.NotFittedError
		dim       *gderrors.DimensionError
		conv      *gderrors.ConvergenceError
		inst      *gderrors.NumericalInstabilityError
	)
	switch {
	case gderrors.As(err, &notFitted):
		return ErrorNotFitted
	case gderrors.As(err, &dim):
		return ErrorDimensionMismatch
	case gderrors.As(err, &conv):
		return ErrorConvergence
	case gderrors.As(err, &inst):
		return ErrorInstability
	case gderrors.Is(err, gderrors.ErrEmptyData):
		return ErrorEmptyData
	}
	return ""
}

func extractStacktrace(err error) string {
	safeDetails := errors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}
