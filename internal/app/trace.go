package app

import (
	"context"
	"os"

	"classjs/internal/shared/observability"
	"classjs/internal/stacktrace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Reconstruct maps a browser stack trace back to Java frames using the
// artifacts under the configured trace root.
func (a *App) Reconstruct(ctx context.Context, text, sep string) ([]stacktrace.Frame, error) {
	return Reconstruct(ctx, a.Config.Trace.Root, text, sep)
}

// Reconstruct is the App-less form used when no build runs, with artifacts
// looked up under root.
func Reconstruct(ctx context.Context, root, text, sep string) ([]stacktrace.Frame, error) {
	_, span := observability.Tracer.Start(ctx, "app.Reconstruct", trace.WithAttributes(
		attribute.String("root", root),
	))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	frames, err := stacktrace.New(os.DirFS(root)).Reconstruct(text, sep)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("frames", len(frames)))
	return frames, nil
}
