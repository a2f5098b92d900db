package main

import (
	"context"
	"fmt"
	"os/user"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/audit"
	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/lock"
	"github.com/netauto-dev/netauto/pkg/operations"
	"github.com/netauto-dev/netauto/pkg/render"
	"github.com/netauto-dev/netauto/pkg/transport"
	"github.com/netauto-dev/netauto/pkg/util"
)

var (
	pushDryRun   bool
	pushCommit   bool
	pushForce    bool
	pushUsername string
	pushShowDiff bool
)

// pushCmd stages rendered configs on the selected hosts.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push rendered configs to devices",
	Long: `Push the rendered configuration to each selected host through a
staged configuration session.

Default is dry-run: the config is staged, the diff retrieved, and the
session aborted — the running configuration is never touched. With
--commit the staged config is applied instead. Committing to multiple
hosts asks for confirmation unless --force is given.

Examples:
  netauto -f role=leaf push                  # Preview diffs
  netauto -f role=leaf push --commit         # Apply (with confirmation)
  netauto -f name=l1-ny push --commit --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := operations.ResolveMode(pushDryRun, pushCommit)
		if err != nil {
			return err
		}

		hosts, err := selectHosts()
		if err != nil {
			return err
		}

		if mode == operations.ModeCommit && !pushForce {
			prompt := fmt.Sprintf("Commit configuration to %d host(s)?", len(hosts))
			if !confirm(prompt) {
				fmt.Println("Aborted.")
				return nil
			}
		}

		runner, cleanup, err := buildRunner(hosts)
		if err != nil {
			return err
		}
		defer cleanup()

		result := runner.Push(context.Background(), hosts, mode)
		printResults(result, pushShowDiff || mode == operations.ModeDryRun)

		if result.Failed() {
			return fmt.Errorf("%d of %d hosts failed", result.FailedCount(), result.Total())
		}
		return nil
	},
}

func init() {
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Preview changes without applying (default)")
	pushCmd.Flags().BoolVar(&pushCommit, "commit", false, "Apply the staged configuration")
	pushCmd.Flags().BoolVar(&pushForce, "force", false, "Skip the commit confirmation prompt")
	pushCmd.Flags().StringVarP(&pushUsername, "username", "u", "", "Device login (overrides inventory)")
	pushCmd.Flags().BoolVar(&pushShowDiff, "show-diff", false, "Print device diffs even in commit mode")
}

// buildRunner assembles the operation runner from settings and flags.
// The returned cleanup closes the lock registry and audit log.
func buildRunner(hosts []*inventory.Host) (*operations.Runner, func(), error) {
	password, err := resolvePassword(hosts)
	if err != nil {
		return nil, nil, err
	}

	var closers []func()
	cleanup := func() {
		for _, c := range closers {
			c()
		}
	}

	var locks *lock.Registry
	if cfg.LockAddr != "" {
		locks, err = lock.NewRegistry(cfg.LockAddr)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { locks.Close() })
	}

	var auditLog audit.Logger
	if cfg.AuditLog != "" {
		fl, err := audit.NewFileLogger(cfg.AuditLog, audit.RotationConfig{
			MaxSize:    10 * 1024 * 1024,
			MaxBackups: 10,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		auditLog = fl
		closers = append(closers, func() { fl.Close() })
	}

	runner := operations.NewRunner(operations.RunnerConfig{
		Dialer:   &transport.SSHDialer{Timeout: cfg.CommandTimeout()},
		Renderer: render.NewRenderer(cfg.GetTemplatesDir(), cfg.GetOutputDir()),
		Locks:    locks,
		Audit:    auditLog,
		User:     currentUser(),
		Username: pushUsername,
		Password: password,
		Workers:  cfg.GetWorkers(),
		Timeout:  4 * cfg.CommandTimeout(),
	})
	return runner, cleanup, nil
}

// resolvePassword prompts for the device password when any selected
// host lacks one in the inventory.
func resolvePassword(hosts []*inventory.Host) (string, error) {
	needed := false
	for _, h := range hosts {
		if h.Password == "" {
			needed = true
			break
		}
	}
	if !needed {
		return "", nil
	}
	return promptPassword("Device password: ")
}

func currentUser() string {
	u, err := user.Current()
	if err != nil {
		util.Warnf("Could not determine current user: %v", err)
		return "unknown"
	}
	return u.Username
}
