package reactive

import (
	"context"
	"log/slog"
)

// guard runs f and, if it panics, logs a breadcrumb at ERROR before
// re-raising. It never swallows the panic — the data path stays infallible
// per the caller's ordinary Go panic semantics, this only adds optional
// diagnostics for whoever configured slog's default handler.
func guard(f func()) {
	defer func() {
		if r := recover(); r != nil {
			if slog.Default().Enabled(context.Background(), slog.LevelError) {
				slog.Error("reactive: observer panic", "panic", r)
			}
			panic(r)
		}
	}()
	f()
}
