package log

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextWithBookID returns a context whose logger carries the book id.
func ContextWithBookID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	l := FromContext(ctx).With().Str(FieldBookID, id).Logger()
	return l.WithContext(ctx)
}

// FromContext returns the logger stored in ctx, or the base logger.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return Base()
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return Base()
	}
	return *l
}

// WithComponentFromContext returns the context logger annotated with component.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return FromContext(ctx).With().Str(FieldComponent, component).Logger()
}
