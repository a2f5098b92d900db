package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage persistent settings",
	Long: `Manage the persistent settings file (` + settings.DefaultSettingsPath() + `).

Settings are overridden by NETAUTO_* environment variables and by
command flags.

Examples:
  netauto settings show
  netauto settings set inventory_dir /opt/netauto/inventory
  netauto settings set workers 20`,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("inventory_dir:       %s\n", cfg.GetInventoryDir())
		fmt.Printf("templates_dir:       %s\n", cfg.GetTemplatesDir())
		fmt.Printf("output_dir:          %s\n", cfg.GetOutputDir())
		fmt.Printf("lock_addr:           %s\n", orUnset(cfg.LockAddr))
		fmt.Printf("audit_log:           %s\n", orUnset(cfg.AuditLog))
		fmt.Printf("workers:             %d\n", cfg.GetWorkers())
		fmt.Printf("command_timeout_sec: %d\n", int(cfg.CommandTimeout().Seconds()))
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set and persist a setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		// Mutate the persisted file, not the env-overlaid view.
		stored, err := settings.LoadFile(settings.DefaultSettingsPath())
		if err != nil {
			return err
		}

		switch key {
		case "inventory_dir":
			stored.InventoryDir = value
		case "templates_dir":
			stored.TemplatesDir = value
		case "output_dir":
			stored.OutputDir = value
		case "lock_addr":
			stored.LockAddr = value
		case "audit_log":
			stored.AuditLog = value
		case "workers":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("workers must be a positive integer")
			}
			stored.Workers = n
		case "command_timeout_sec":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return fmt.Errorf("command_timeout_sec must be a positive integer")
			}
			stored.CommandTimeoutSec = n
		default:
			return fmt.Errorf("unknown setting: %s", key)
		}

		if err := stored.Save(); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
}
