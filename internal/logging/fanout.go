package logging

import (
	"context"
	"errors"
	"log/slog"
)

// Fanout duplicates every record to each target handler, so stdout JSON and
// the database sink see the same stream.
type Fanout struct {
	targets []slog.Handler
}

func NewFanout(targets ...slog.Handler) *Fanout {
	return &Fanout{targets: targets}
}

// Enabled reports whether at least one target wants the level.
func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range f.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every interested target. One failing target
// does not starve the others.
func (f *Fanout) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, t := range f.targets {
		if !t.Enabled(ctx, record.Level) {
			continue
		}
		if err := t.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithAttrs(attrs)
	}
	return &Fanout{targets: next}
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.targets))
	for i, t := range f.targets {
		next[i] = t.WithGroup(name)
	}
	return &Fanout{targets: next}
}
