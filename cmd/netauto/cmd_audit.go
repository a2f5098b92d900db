package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/audit"
	"github.com/netauto-dev/netauto/pkg/cli"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View the push audit trail",
	Long: `View the audit trail of push and session-abort operations.

Every push is recorded with timestamp, user, host, mode, outcome, and
diff size.

Examples:
  netauto audit list --host l1-ny
  netauto audit list --last 24h
  netauto audit list --failures`,
}

var (
	auditHost     string
	auditLast     string
	auditLimit    int
	auditFailures bool
)

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit events",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.AuditLog == "" {
			return fmt.Errorf("no audit log configured: set NETAUTO_AUDIT_LOG or audit_log in settings")
		}

		filter := audit.Filter{
			Host:        auditHost,
			Limit:       auditLimit,
			FailureOnly: auditFailures,
		}
		if auditLast != "" {
			duration, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid duration: %s", auditLast)
			}
			filter.StartTime = time.Now().Add(-duration)
		}

		logger, err := audit.NewFileLogger(cfg.AuditLog, audit.RotationConfig{})
		if err != nil {
			return err
		}
		defer logger.Close()

		events, err := logger.Query(filter)
		if err != nil {
			return fmt.Errorf("querying audit log: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No audit events found")
			return nil
		}

		table := cli.NewTable("TIMESTAMP", "USER", "HOST", "OPERATION", "STATUS", "DIFF")
		for _, event := range events {
			status := cli.Green("ok")
			if !event.Success {
				status = cli.Red("failed")
			} else if event.DryRun {
				status = cli.Yellow("dry-run")
			}

			table.Row(
				event.Timestamp.Format("2006-01-02 15:04:05"),
				event.User,
				event.Host,
				event.Operation,
				status,
				fmt.Sprintf("%dB", event.DiffBytes),
			)
		}
		table.Flush()
		return nil
	},
}

func init() {
	auditListCmd.Flags().StringVar(&auditHost, "host", "", "Filter by host")
	auditListCmd.Flags().StringVar(&auditLast, "last", "", "Only events within a duration (e.g. 24h)")
	auditListCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum events to show")
	auditListCmd.Flags().BoolVar(&auditFailures, "failures", false, "Only failed operations")
	auditCmd.AddCommand(auditListCmd)
}
