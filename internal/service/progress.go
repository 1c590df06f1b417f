package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/survey-seeder/internal/model"
)

type runIDKey struct{}

// WithRunID tags ctx with the seed run it belongs to.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunIDFromContext returns the run id set by WithRunID, or "".
func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// ProgressReporter receives an event after every creation call the pipeline makes.
// Implementations must not block for long and must be safe for concurrent use:
// with question concurrency above one, events arrive from several goroutines.
type ProgressReporter interface {
	Report(ctx context.Context, event model.ProgressEvent)
}

// NopProgress discards every event.
type NopProgress struct{}

func (NopProgress) Report(context.Context, model.ProgressEvent) {}

// LogProgress writes events to a zerolog logger at debug level.
type LogProgress struct {
	Log zerolog.Logger
}

func (p LogProgress) Report(_ context.Context, e model.ProgressEvent) {
	p.Log.Debug().
		Str("kind", string(e.Kind)).
		Str("template_id", e.TemplateID).
		Int("section_order", e.SectionOrder).
		Int("question_order", e.QuestionOrder).
		Str("entity_id", e.EntityID).
		Msg("progress")
}

// MultiProgress fans an event out to several reporters.
type MultiProgress []ProgressReporter

func (m MultiProgress) Report(ctx context.Context, e model.ProgressEvent) {
	for _, r := range m {
		r.Report(ctx, e)
	}
}

func newEvent(ctx context.Context, kind model.ProgressKind, templateID string) model.ProgressEvent {
	return model.ProgressEvent{
		RunID:      RunIDFromContext(ctx),
		Kind:       kind,
		TemplateID: templateID,
		At:         time.Now().UTC(),
	}
}
