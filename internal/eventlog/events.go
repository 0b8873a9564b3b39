// Package eventlog records the progress of a run as newline-delimited JSON
// and renders it back as a timeline.
package eventlog

import (
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/orchestration"
)

// EventType identifies the kind of logged event.
type EventType string

const (
	EventRunStart          EventType = "run_start"
	EventRunComplete       EventType = "run_complete"
	EventBatchStart        EventType = EventType(orchestration.EventBatchStart)
	EventBatchComplete     EventType = EventType(orchestration.EventBatchComplete)
	EventBatchStopped      EventType = EventType(orchestration.EventBatchStopped)
	EventApplicantComplete EventType = EventType(orchestration.EventApplicantComplete)
	EventError             EventType = "error"
)

// Event is a single timestamped entry in an event log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(t EventType, data map[string]any) Event {
	return Event{
		Timestamp: time.Now().UTC(),
		Type:      t,
		Data:      data,
	}
}

// RunStartData returns event data for the start of a command.
func RunStartData(command, engine, model string, applicants int) map[string]any {
	return map[string]any{
		"command":    command,
		"engine":     engine,
		"model":      model,
		"applicants": applicants,
	}
}

// RunCompleteData returns event data for the end of a command.
func RunCompleteData(evaluations, failed int, durationMs int64) map[string]any {
	return map[string]any{
		"evaluations": evaluations,
		"failed":      failed,
		"duration_ms": durationMs,
	}
}

// ErrorData returns event data for an error.
func ErrorData(message string) map[string]any {
	return map[string]any{"message": message}
}

// FromProgress converts a runner progress event. Applicant start events
// carry nothing worth keeping and report false.
func FromProgress(e orchestration.ProgressEvent) (Event, bool) {
	if e.EventType == orchestration.EventApplicantStart {
		return Event{}, false
	}

	data := map[string]any{
		"variant_a": e.VariantA,
		"num":       e.Num,
		"total":     e.Total,
	}
	if e.VariantB != "" {
		data["variant_b"] = e.VariantB
	}
	if e.ApplicantID != "" {
		data["applicant_id"] = e.ApplicantID
	}
	for k, v := range e.Details {
		data[k] = v
	}
	return NewEvent(EventType(e.EventType), data), true
}
