// Package session implements the staged configuration protocol against
// one device: the load/diff/commit/abort state machine and the
// registry that discovers and terminates stray device-side sessions.
package session

import (
	"context"
	"fmt"

	"github.com/netauto-dev/netauto/pkg/transport"
	"github.com/netauto-dev/netauto/pkg/util"
)

// State is a DeviceSession lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateLoaded    State = "loaded"
	StateDiffed    State = "diffed"
	StateCommitted State = "committed"
	StateAborted   State = "aborted"
	StateFailed    State = "failed"
)

// DeviceSession drives one push operation against one host. The call
// sequence is strictly sequential; each step depends on the staged
// state the previous step produced on the device.
type DeviceSession struct {
	host   string
	client transport.Client
	state  State
}

// New creates an idle session for the host.
func New(host string, client transport.Client) *DeviceSession {
	return &DeviceSession{host: host, client: client, state: StateIdle}
}

// State returns the current lifecycle state.
func (s *DeviceSession) State() State {
	return s.state
}

// Load stages the configuration in replace mode.
func (s *DeviceSession) Load(ctx context.Context, config string) error {
	if s.state != StateIdle {
		return fmt.Errorf("internal: load from state %s on %s", s.state, s.host)
	}
	if err := s.client.LoadConfig(ctx, config, true); err != nil {
		s.state = StateFailed
		return err
	}
	s.state = StateLoaded
	return nil
}

// Diff returns the staged-vs-running diff.
func (s *DeviceSession) Diff(ctx context.Context) (string, error) {
	if s.state != StateLoaded {
		return "", fmt.Errorf("internal: diff from state %s on %s", s.state, s.host)
	}
	diff, err := s.client.DiffConfig(ctx)
	if err != nil {
		s.state = StateFailed
		return "", err
	}
	s.state = StateDiffed
	return diff, nil
}

// Commit applies the staged configuration. This is the only call with
// side effects beyond the device's staging area; callers invoke it
// only on explicit commit intent.
func (s *DeviceSession) Commit(ctx context.Context) error {
	if s.state != StateDiffed {
		return fmt.Errorf("internal: commit from state %s on %s", s.state, s.host)
	}
	if err := s.client.CommitConfig(ctx); err != nil {
		s.state = StateFailed
		return err
	}
	s.state = StateCommitted
	return nil
}

// Abort discards the staged configuration. Valid from any non-terminal
// state; from idle there is nothing staged and no device call is made.
func (s *DeviceSession) Abort(ctx context.Context) error {
	switch s.state {
	case StateIdle:
		s.state = StateAborted
		return nil
	case StateLoaded, StateDiffed:
		if err := s.client.AbortConfig(ctx); err != nil {
			s.state = StateFailed
			return err
		}
		s.state = StateAborted
		return nil
	default:
		return fmt.Errorf("internal: abort from state %s on %s", s.state, s.host)
	}
}

// cleanup attempts a best-effort abort after a failed step. Cleanup
// failure is logged, never returned: it must not mask the original
// error. The session stays in StateFailed.
func (s *DeviceSession) cleanup(ctx context.Context) {
	if err := s.client.AbortConfig(ctx); err != nil {
		util.WithHost(s.host).Warnf("Cleanup abort after failure: %v", err)
	}
}

// DryRun composes load, diff, abort and returns the diff. The running
// configuration is left unchanged regardless of diff content.
func (s *DeviceSession) DryRun(ctx context.Context, config string) (string, error) {
	if err := s.Load(ctx, config); err != nil {
		return "", err
	}

	diff, err := s.Diff(ctx)
	if err != nil {
		s.cleanup(ctx)
		return "", err
	}

	if err := s.Abort(ctx); err != nil {
		return diff, err
	}
	return diff, nil
}

// CommitRun composes load, diff, commit and returns the diff. The diff
// is retrieved before commit so the caller has a record of what was
// applied; commit is unconditional once reached — the decision to
// proceed on a large diff belongs to the operator, upstream.
func (s *DeviceSession) CommitRun(ctx context.Context, config string) (string, error) {
	if err := s.Load(ctx, config); err != nil {
		return "", err
	}

	diff, err := s.Diff(ctx)
	if err != nil {
		s.cleanup(ctx)
		return "", err
	}

	if err := s.Commit(ctx); err != nil {
		s.cleanup(ctx)
		return diff, err
	}
	return diff, nil
}
