package operations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/netauto-dev/netauto/pkg/audit"
	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/lock"
	"github.com/netauto-dev/netauto/pkg/render"
	"github.com/netauto-dev/netauto/pkg/session"
	"github.com/netauto-dev/netauto/pkg/transport"
	"github.com/netauto-dev/netauto/pkg/util"
)

// Runner holds the dependencies shared by all fleet operations.
// Locks and Audit are optional; nil disables the concern.
type Runner struct {
	orch     *Orchestrator
	dialer   transport.Dialer
	renderer *render.Renderer
	locks    *lock.Registry
	auditLog audit.Logger
	user     string
	username string
	password string
	lockTTL  time.Duration
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Dialer   transport.Dialer
	Renderer *render.Renderer
	Locks    *lock.Registry
	Audit    audit.Logger
	User     string // audit identity and lock holder
	Username string // device login override; empty uses inventory
	Password string // device password override; empty uses inventory
	Workers  int
	Timeout  time.Duration // per-host deadline, 0 for none
	LockTTL  time.Duration
}

// NewRunner creates a Runner.
func NewRunner(cfg RunnerConfig) *Runner {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Runner{
		orch:     NewOrchestrator(cfg.Workers, cfg.Timeout),
		dialer:   cfg.Dialer,
		renderer: cfg.Renderer,
		locks:    cfg.Locks,
		auditLog: cfg.Audit,
		user:     cfg.User,
		username: cfg.Username,
		password: cfg.Password,
		lockTTL:  ttl,
	}
}

func (r *Runner) endpoint(host *inventory.Host) transport.Endpoint {
	ep := transport.Endpoint{
		Name:     host.Name,
		Addr:     host.Addr(),
		Platform: host.Platform,
		Username: host.Username,
		Password: host.Password,
	}
	if r.username != "" {
		ep.Username = r.username
	}
	if r.password != "" {
		ep.Password = r.password
	}
	return ep
}

// record writes an audit event. Audit writes are best-effort.
func (r *Runner) record(ev *audit.Event) {
	if r.auditLog == nil {
		return
	}
	if err := r.auditLog.Log(ev); err != nil {
		util.Warnf("Audit write failed: %v", err)
	}
}

// Push runs the staged-configuration protocol on every host. In
// dry-run mode the diff is retrieved and the session aborted; in
// commit mode the staged config is applied. Hosts run independently.
func (r *Runner) Push(ctx context.Context, hosts []*inventory.Host, mode Mode) *OperationResult {
	result := r.orch.Run(ctx, "push", hosts, func(ctx context.Context, host *inventory.Host) *DeviceResult {
		return r.pushHost(ctx, host, mode)
	})
	result.DryRun = mode == ModeDryRun
	return result
}

func (r *Runner) pushHost(ctx context.Context, host *inventory.Host, mode Mode) *DeviceResult {
	start := time.Now()
	ev := audit.NewEvent(r.user, host.Name, "push").WithDryRun(mode == ModeDryRun)
	fail := func(err error) *DeviceResult {
		r.record(ev.WithError(err).WithDuration(time.Since(start)))
		return Failed(host.Name, err)
	}

	config, err := r.renderer.ReadConfig(host.Hostname)
	if err != nil {
		return fail(err)
	}

	if r.locks != nil {
		if err := r.locks.Acquire(ctx, host.Name, r.user, r.lockTTL); err != nil {
			if errors.Is(err, util.ErrDeviceLocked) {
				holder, since, herr := r.locks.Holder(ctx, host.Name)
				if herr == nil && holder != "" {
					err = fmt.Errorf("device locked by %s since %s", holder, since.Format(time.RFC3339))
				}
			}
			return fail(err)
		}
		defer func() {
			if err := r.locks.Release(ctx, host.Name, r.user); err != nil {
				util.WithHost(host.Name).Warnf("Lock release: %v", err)
			}
		}()
	}

	client, err := r.dialer.Dial(ctx, r.endpoint(host))
	if err != nil {
		return fail(err)
	}
	defer client.Close()

	sess := session.New(host.Name, client)
	var diff string
	if mode == ModeDryRun {
		diff, err = sess.DryRun(ctx, config)
	} else {
		diff, err = sess.CommitRun(ctx, config)
	}
	ev.WithDiffBytes(len(diff))
	if err != nil {
		r.record(ev.WithError(err).WithDuration(time.Since(start)))
		return Failed(host.Name, err).WithDiff(diff)
	}

	r.record(ev.WithSuccess().WithDuration(time.Since(start)))

	if mode == ModeDryRun {
		if strings.TrimSpace(diff) == "" {
			return Skipped(host.Name, "no configuration changes")
		}
		return Succeeded(host.Name, "diff retrieved, session aborted").WithDiff(diff)
	}
	return Succeeded(host.Name, "configuration committed").WithDiff(diff)
}
