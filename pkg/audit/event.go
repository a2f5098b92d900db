// Package audit provides an append-only trail of configuration
// operations against the fleet. Audit writes are best-effort: a
// failed write is logged, never failing the operation it records.
package audit

import (
	"fmt"
	"time"
)

// Event records one operation outcome on one host.
type Event struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user"`
	Host      string        `json:"host"`
	Operation string        `json:"operation"`
	DryRun    bool          `json:"dry_run"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	DiffBytes int           `json:"diff_bytes,omitempty"`
	Aborted   int           `json:"aborted_sessions,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Filter defines criteria for querying audit events.
type Filter struct {
	Host        string
	Operation   string
	StartTime   time.Time
	EndTime     time.Time
	FailureOnly bool
	Limit       int
}

// NewEvent creates an audit event for an operation on a host.
func NewEvent(user, host, operation string) *Event {
	return &Event{
		ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		User:      user,
		Host:      host,
		Operation: operation,
	}
}

// WithDryRun marks whether the operation ran in dry-run mode.
func (e *Event) WithDryRun(dryRun bool) *Event {
	e.DryRun = dryRun
	return e
}

// WithSuccess marks the event as successful.
func (e *Event) WithSuccess() *Event {
	e.Success = true
	return e
}

// WithError marks the event as failed.
func (e *Event) WithError(err error) *Event {
	e.Success = false
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// WithDiffBytes records the size of the retrieved diff.
func (e *Event) WithDiffBytes(n int) *Event {
	e.DiffBytes = n
	return e
}

// WithAborted records how many device sessions were aborted.
func (e *Event) WithAborted(n int) *Event {
	e.Aborted = n
	return e
}

// WithDuration sets the operation duration.
func (e *Event) WithDuration(d time.Duration) *Event {
	e.Duration = d
	return e
}
