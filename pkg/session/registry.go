package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/netauto-dev/netauto/pkg/transport"
	"github.com/netauto-dev/netauto/pkg/util"
)

// ConfigSession is one device-side staging session as reported by the
// device. The device is authoritative; these records are observations.
type ConfigSession struct {
	Name    string
	Status  string
	Details string
}

// listCommands maps platform identifiers to their session-listing
// command. Platforms absent here cannot enumerate sessions.
var listCommands = map[string]string{
	"arista_eos": "show configuration sessions",
}

// Registry discovers and terminates stray configuration sessions on
// one device.
type Registry struct {
	host     string
	platform string
	client   transport.Client
}

// NewRegistry creates a registry for the host.
func NewRegistry(host, platform string, client transport.Client) *Registry {
	return &Registry{host: host, platform: platform, client: client}
}

// List enumerates the device's configuration sessions.
func (r *Registry) List(ctx context.Context) ([]ConfigSession, error) {
	cmd, ok := listCommands[r.platform]
	if !ok {
		return nil, util.NewCapabilityError(r.host, r.platform, "session listing")
	}

	output, err := r.client.SendCommand(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return ParseSessionTable(output), nil
}

// AbortAll lists sessions and aborts each, returning the abort count.
// Listing and aborting share one parse of the device state. Zero
// sessions is a success with count 0.
func (r *Registry) AbortAll(ctx context.Context) (int, error) {
	sessions, err := r.List(ctx)
	if err != nil {
		return 0, err
	}

	aborted := 0
	var errs []error
	for _, sess := range sessions {
		if err := r.AbortOne(ctx, sess.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		aborted++
	}
	return aborted, errors.Join(errs...)
}

// AbortOne enters the named session and aborts it. There is no
// existence precheck: the device is authoritative, and aborting a
// session that vanished surfaces as a transport failure.
func (r *Registry) AbortOne(ctx context.Context, name string) error {
	if _, err := r.client.SendCommand(ctx, fmt.Sprintf("configure session %s abort", name)); err != nil {
		return err
	}
	util.WithHost(r.host).Infof("Aborted session %s", name)
	return nil
}

// Select returns the sessions at the given 1-based indices, in index
// order. Used by the interactive layer; kept pure so the core never
// blocks on input.
func Select(sessions []ConfigSession, indices []int) ([]ConfigSession, error) {
	chosen := make([]ConfigSession, 0, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(sessions) {
			return nil, fmt.Errorf("session index %d out of range 1..%d", idx, len(sessions))
		}
		chosen = append(chosen, sessions[idx-1])
	}
	return chosen, nil
}

// ParseSessionTable parses the tabular session listing into records.
//
// Grammar: blank lines and notice lines (maximum-sessions, merge,
// autosave) are skipped; the column header line and the dashed
// separator after it open the data section; every subsequent non-blank
// line with at least two whitespace-separated tokens is a data row
// where token 0 is the session name, token 1 the status (case-folded),
// and the full trimmed line the details.
func ParseSessionTable(output string) []ConfigSession {
	var sessions []ConfigSession
	inData := false

	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if isNoticeLine(trimmed) {
			continue
		}

		fields := strings.Fields(trimmed)

		if !inData {
			if strings.EqualFold(fields[0], "name") {
				inData = true
			}
			continue
		}
		if isSeparatorLine(trimmed) {
			continue
		}
		if len(fields) < 2 {
			continue
		}

		sessions = append(sessions, ConfigSession{
			Name:    fields[0],
			Status:  strings.ToLower(fields[1]),
			Details: trimmed,
		})
	}
	return sessions
}

// isNoticeLine reports device chatter that is never session data:
// capacity notices and merge/autosave hints.
func isNoticeLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.HasPrefix(lower, "maximum number of") || strings.HasPrefix(lower, "maximum sessions") {
		return true
	}
	return strings.Contains(lower, "merge") || strings.Contains(lower, "autosave")
}

// isSeparatorLine reports the dashed divider under the column header.
func isSeparatorLine(line string) bool {
	for _, r := range line {
		if r != '-' && r != ' ' {
			return false
		}
	}
	return true
}
