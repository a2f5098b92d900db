package operations

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/netauto-dev/netauto/pkg/audit"
	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/session"
)

// HostSessions pairs a host with its device-side config sessions.
type HostSessions struct {
	Hostname string
	Sessions []session.ConfigSession
}

// SessionList enumerates device-side configuration sessions on every
// host. The listings come back alongside the per-host results; hosts
// that could not be queried appear as FAILED with no listing.
func (r *Runner) SessionList(ctx context.Context, hosts []*inventory.Host) (*OperationResult, []HostSessions) {
	var (
		mu       sync.Mutex
		listings []HostSessions
	)

	result := r.orch.Run(ctx, "session-list", hosts, func(ctx context.Context, host *inventory.Host) *DeviceResult {
		sessions, err := r.listHost(ctx, host)
		if err != nil {
			return Failed(host.Name, err)
		}

		mu.Lock()
		listings = append(listings, HostSessions{Hostname: host.Name, Sessions: sessions})
		mu.Unlock()
		return Succeeded(host.Name, fmt.Sprintf("%d sessions", len(sessions)))
	})

	// Results are hostname-sorted; match the listings to them.
	mu.Lock()
	defer mu.Unlock()
	sortListings(listings)
	return result, listings
}

// SessionAbort aborts every configuration session on every host. Hosts
// with no sessions are left out of the aggregate: there was nothing to
// do and nothing was done.
func (r *Runner) SessionAbort(ctx context.Context, hosts []*inventory.Host) *OperationResult {
	return r.orch.Run(ctx, "session-abort", hosts, func(ctx context.Context, host *inventory.Host) *DeviceResult {
		return r.abortHost(ctx, host)
	})
}

// SessionAbortNamed aborts specific sessions by name on one host.
// Backs the interactive selection flow, where the operator picks
// sessions from a listing instead of sweeping them all.
func (r *Runner) SessionAbortNamed(ctx context.Context, host *inventory.Host, names []string) *DeviceResult {
	client, err := r.dialer.Dial(ctx, r.endpoint(host))
	if err != nil {
		return Failed(host.Name, err)
	}
	defer client.Close()

	reg := session.NewRegistry(host.Name, host.Platform, client)
	aborted := 0
	var errs []error
	for _, name := range names {
		if err := reg.AbortOne(ctx, name); err != nil {
			errs = append(errs, err)
			continue
		}
		aborted++
	}

	err = errors.Join(errs...)
	ev := audit.NewEvent(r.user, host.Name, "session-abort").WithAborted(aborted)
	if err != nil {
		ev.WithError(err)
	} else {
		ev.WithSuccess()
	}
	r.record(ev)

	if err != nil {
		return Failed(host.Name, fmt.Errorf("aborted %d of %d sessions: %w", aborted, len(names), err))
	}
	return Succeeded(host.Name, fmt.Sprintf("aborted %d sessions", aborted))
}

func (r *Runner) listHost(ctx context.Context, host *inventory.Host) ([]session.ConfigSession, error) {
	client, err := r.dialer.Dial(ctx, r.endpoint(host))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return session.NewRegistry(host.Name, host.Platform, client).List(ctx)
}

func (r *Runner) abortHost(ctx context.Context, host *inventory.Host) *DeviceResult {
	client, err := r.dialer.Dial(ctx, r.endpoint(host))
	if err != nil {
		return Failed(host.Name, err)
	}
	defer client.Close()

	aborted, err := session.NewRegistry(host.Name, host.Platform, client).AbortAll(ctx)
	ev := audit.NewEvent(r.user, host.Name, "session-abort").WithAborted(aborted)
	if err != nil {
		ev.WithError(err)
	} else {
		ev.WithSuccess()
	}
	r.record(ev)
	if err != nil {
		return Failed(host.Name, fmt.Errorf("aborted %d sessions: %w", aborted, err))
	}
	if aborted == 0 {
		return nil
	}
	return Succeeded(host.Name, fmt.Sprintf("aborted %d sessions", aborted))
}

func sortListings(listings []HostSessions) {
	sort.Slice(listings, func(i, j int) bool {
		return listings[i].Hostname < listings[j].Hostname
	})
}
