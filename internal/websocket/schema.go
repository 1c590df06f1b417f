package websocket

import "github.com/stemsi/survey-seeder/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError    Event = "error"
	EventSnapshot Event = "snapshot"
	EventProgress Event = "progress"
	EventFinished Event = "finished"
	EventPong     Event = "pong"
)

// SnapshotResponse is sent once after connecting with the run as stored.
type SnapshotResponse struct {
	Event Event          `json:"event"`
	Run   *model.SeedRun `json:"run"`
}

// ProgressResponse relays one pipeline progress event.
type ProgressResponse struct {
	Event    Event               `json:"event"`
	Progress model.ProgressEvent `json:"progress"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// ProgressEventFor picks the server event that carries p.
func ProgressEventFor(p model.ProgressEvent) Event {
	if p.Kind == model.ProgressRunFinished {
		return EventFinished
	}
	return EventProgress
}
