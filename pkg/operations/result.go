// Package operations implements the fleet-level operations: render,
// push (dry-run or commit), and stray-session listing and cleanup.
// Each operation fans out over the selected hosts and aggregates
// per-device results; one host's failure never affects another's run.
package operations

import (
	"fmt"
	"strings"
	"time"
)

// Per-device outcome statuses.
const (
	StatusSuccess = "SUCCESS"
	StatusFailed  = "FAILED"
	StatusSkipped = "SKIPPED"
)

// DeviceResult is the outcome of one operation on one host.
type DeviceResult struct {
	Hostname string `json:"hostname"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Diff     string `json:"diff,omitempty"`
}

// Succeeded creates a SUCCESS result.
func Succeeded(hostname, message string) *DeviceResult {
	return &DeviceResult{Hostname: strings.TrimSpace(hostname), Status: StatusSuccess, Message: message}
}

// Failed creates a FAILED result carrying the error text.
func Failed(hostname string, err error) *DeviceResult {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &DeviceResult{Hostname: strings.TrimSpace(hostname), Status: StatusFailed, Message: msg}
}

// Skipped creates a SKIPPED result.
func Skipped(hostname, reason string) *DeviceResult {
	return &DeviceResult{Hostname: strings.TrimSpace(hostname), Status: StatusSkipped, Message: reason}
}

// WithDiff attaches the device diff to the result.
func (r *DeviceResult) WithDiff(diff string) *DeviceResult {
	r.Diff = diff
	return r
}

// OperationResult aggregates per-device results for one fleet
// operation. Counts are derived from the results, never stored.
type OperationResult struct {
	Operation string          `json:"operation"`
	DryRun    bool            `json:"dry_run"`
	Results   []*DeviceResult `json:"results"`
	Duration  time.Duration   `json:"duration"`
}

// Total returns the number of per-device results.
func (o *OperationResult) Total() int {
	return len(o.Results)
}

func (o *OperationResult) count(status string) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// SuccessCount returns the number of SUCCESS results.
func (o *OperationResult) SuccessCount() int { return o.count(StatusSuccess) }

// FailedCount returns the number of FAILED results.
func (o *OperationResult) FailedCount() int { return o.count(StatusFailed) }

// SkippedCount returns the number of SKIPPED results.
func (o *OperationResult) SkippedCount() int { return o.count(StatusSkipped) }

// SuccessRate returns the SUCCESS fraction, 0 when there are no
// results.
func (o *OperationResult) SuccessRate() float64 {
	if o.Total() == 0 {
		return 0
	}
	return float64(o.SuccessCount()) / float64(o.Total())
}

// Failed reports whether any device failed. This drives the process
// exit code.
func (o *OperationResult) Failed() bool {
	return o.FailedCount() > 0
}

// Summary returns a one-line aggregate summary.
func (o *OperationResult) Summary() string {
	return fmt.Sprintf("%s: %d total, %d succeeded, %d failed, %d skipped in %s",
		o.Operation, o.Total(), o.SuccessCount(), o.FailedCount(), o.SkippedCount(),
		o.Duration.Round(time.Millisecond))
}

// Result returns the result for hostname, or nil if absent.
func (o *OperationResult) Result(hostname string) *DeviceResult {
	for _, r := range o.Results {
		if r.Hostname == hostname {
			return r
		}
	}
	return nil
}
