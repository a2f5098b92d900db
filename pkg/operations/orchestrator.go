package operations

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/util"
)

// Mode selects what a push does after retrieving the diff.
type Mode string

const (
	// ModeDryRun stages, diffs, and aborts. The running config is
	// never touched.
	ModeDryRun Mode = "dry-run"

	// ModeCommit stages, diffs, and commits.
	ModeCommit Mode = "commit"
)

// ErrModeConflict is returned when both dry-run and commit are
// requested for the same run.
var ErrModeConflict = errors.New("dry-run and commit are mutually exclusive")

// ResolveMode maps the CLI flag pair to a mode. Neither flag set means
// dry-run; both set is a configuration error reported before any
// device is contacted.
func ResolveMode(dryRun, commit bool) (Mode, error) {
	if dryRun && commit {
		return "", ErrModeConflict
	}
	if commit {
		return ModeCommit, nil
	}
	return ModeDryRun, nil
}

// hostFunc runs one operation against one host and returns its result.
// It must not panic and must honor ctx.
type hostFunc func(ctx context.Context, host *inventory.Host) *DeviceResult

// Orchestrator fans an operation out over hosts with bounded
// concurrency.
type Orchestrator struct {
	workers int
	timeout time.Duration
}

// NewOrchestrator creates an orchestrator. workers bounds concurrent
// hosts; timeout bounds each host's operation (0 means no deadline).
func NewOrchestrator(workers int, timeout time.Duration) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{workers: workers, timeout: timeout}
}

// Run executes fn once per host, at most workers hosts at a time, and
// aggregates the results. Cancelling ctx stops dispatching new hosts;
// in-flight hosts run to completion and undispatched hosts are
// reported as SKIPPED. Results are ordered by hostname regardless of
// completion order.
func (o *Orchestrator) Run(ctx context.Context, operation string, hosts []*inventory.Host, fn hostFunc) *OperationResult {
	start := time.Now()
	result := &OperationResult{Operation: operation}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, o.workers)
	)

	collect := func(r *DeviceResult) {
		mu.Lock()
		result.Results = append(result.Results, r)
		mu.Unlock()
	}

	for _, host := range hosts {
		if ctx.Err() != nil {
			collect(Skipped(host.Name, "cancelled before start"))
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(h *inventory.Host) {
			defer wg.Done()
			defer func() { <-sem }()

			hctx := ctx
			if o.timeout > 0 {
				var cancel context.CancelFunc
				hctx, cancel = context.WithTimeout(ctx, o.timeout)
				defer cancel()
			}

			r := fn(hctx, h)
			if r == nil {
				// The operation decided this host has nothing to
				// report (e.g. no stray sessions found).
				return
			}
			if r.Status == StatusFailed {
				util.WithHost(h.Name).Errorf("%s failed: %s", operation, r.Message)
			} else {
				util.WithHost(h.Name).Debugf("%s: %s", operation, r.Status)
			}
			collect(r)
		}(host)
	}
	wg.Wait()

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Hostname < result.Results[j].Hostname
	})
	result.Duration = time.Since(start)
	return result
}
