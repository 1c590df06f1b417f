package model

import "time"

// SeedRunStatus enumerates the lifecycle of a seed run.
type SeedRunStatus string

const (
	SeedRunQueued    SeedRunStatus = "queued"
	SeedRunRunning   SeedRunStatus = "running"
	SeedRunCompleted SeedRunStatus = "completed"
	SeedRunFailed    SeedRunStatus = "failed"
)

// SeedRun is one batch materialization, tracked in Redis.
type SeedRun struct {
	ID          string        `json:"id"`
	Status      SeedRunStatus `json:"status"`
	TemplateIDs []string      `json:"template_ids"`
	RequestedBy string        `json:"requested_by"`
	Outcome     *BatchOutcome `json:"outcome,omitempty"`
	Error       string        `json:"error,omitempty"`
	QueuedAt    time.Time     `json:"queued_at"`
	StartedAt   *time.Time    `json:"started_at,omitempty"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
}

// SeedBatchRequest is the payload for triggering a batch seed.
// An empty TemplateIDs means every registered template.
type SeedBatchRequest struct {
	TemplateIDs []string `json:"template_ids" binding:"omitempty,dive,required,max=100"`
	Async       bool     `json:"async"`
}

// ProgressKind identifies what a progress event reports.
type ProgressKind string

const (
	ProgressSurveyCreated   ProgressKind = "survey_created"
	ProgressSurveyFailed    ProgressKind = "survey_failed"
	ProgressSectionCreated  ProgressKind = "section_created"
	ProgressSectionFailed   ProgressKind = "section_failed"
	ProgressQuestionCreated ProgressKind = "question_created"
	ProgressQuestionFailed  ProgressKind = "question_failed"
	ProgressRunFinished     ProgressKind = "run_finished"
)

// ProgressEvent is emitted by the pipeline after every creation call.
type ProgressEvent struct {
	RunID         string       `json:"run_id,omitempty"`
	Kind          ProgressKind `json:"kind"`
	TemplateID    string       `json:"template_id,omitempty"`
	SectionOrder  int          `json:"section_order,omitempty"`
	QuestionOrder int          `json:"question_order,omitempty"`
	EntityID      string       `json:"entity_id,omitempty"`
	Message       string       `json:"message,omitempty"`
	At            time.Time    `json:"at"`
}
