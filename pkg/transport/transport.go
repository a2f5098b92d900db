// Package transport provides the capability client used to speak to a
// device: plain command execution plus the staged-configuration
// primitives (load, diff, commit, abort).
//
// A Client owns exactly one device connection. Clients are not shared
// across hosts or across concurrent operations on the same host; the
// per-host call sequence is strictly sequential.
package transport

import (
	"context"
)

// Client is the per-host transport. All calls may fail with a
// *util.TransportError carrying the underlying cause.
type Client interface {
	// SendCommand executes a single operational command and returns
	// its output.
	SendCommand(ctx context.Context, command string) (string, error)

	// LoadConfig stages the given configuration on the device. With
	// replace true the staged config fully replaces the running
	// config rather than merging into it.
	LoadConfig(ctx context.Context, config string, replace bool) error

	// DiffConfig returns the textual diff between the staged and the
	// running configuration. An empty or whitespace-only diff means
	// no effective change.
	DiffConfig(ctx context.Context) (string, error)

	// CommitConfig applies the staged configuration as the running
	// configuration, terminating the staging session.
	CommitConfig(ctx context.Context) error

	// AbortConfig discards the staged configuration without applying.
	AbortConfig(ctx context.Context) error

	// Close releases the device connection.
	Close() error
}

// Endpoint identifies one device connection target. The password is
// carried only here, never persisted on inventory or settings state.
type Endpoint struct {
	Name     string
	Addr     string
	Platform string
	Username string
	Password string
}

// Dialer opens transport clients for endpoints.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Client, error)
}
