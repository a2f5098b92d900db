// Netauto - fleet configuration lifecycle tool
//
// A CLI for pushing rendered configurations to network devices using
// staged configuration sessions:
//   - Render configs from role templates and inventory attributes
//   - Dry-run by default (load, diff, abort — running config untouched)
//   - Commit mode with confirmation gate (--commit, --force to skip)
//   - Stray device-side session listing and cleanup
//   - Audit logging of all pushes
//
// Host selection is shared by every command:
//
//	netauto -f role=leaf -f site=ny|nj <command>
//
// Filter clauses AND together; values separated by | OR together.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/cli"
	"github.com/netauto-dev/netauto/pkg/filter"
	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/settings"
	"github.com/netauto-dev/netauto/pkg/util"
	"github.com/netauto-dev/netauto/pkg/version"
)

var (
	// Host selection flags
	filterClauses []string // -f, --filter

	// Global option flags
	inventoryDir string
	verbose      bool
	jsonLogs     bool

	// Global state
	cfg *settings.Settings
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Red(err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "netauto",
	Short:             "Fleet Configuration Lifecycle Tool",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Netauto pushes rendered configurations to network devices through
staged configuration sessions. Pushes preview changes by default —
use --commit to apply.

  netauto -f role=leaf render
  netauto -f role=leaf push
  netauto -f role=leaf push --commit`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Quiet by default, verbose on -v
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonLogs {
			util.SetJSONFormat()
		}

		var err error
		cfg, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			cfg = &settings.Settings{}
		}
		if inventoryDir != "" {
			cfg.InventoryDir = inventoryDir
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("netauto %s\n", version.Info())
	},
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&filterClauses, "filter", "f", nil,
		"Host filter clause key=value or key=v1|v2 (repeatable, clauses AND)")
	rootCmd.PersistentFlags().StringVarP(&inventoryDir, "inventory", "I", "", "Inventory directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")

	rootCmd.AddCommand(hostsCmd, renderCmd, pushCmd, sessionsCmd, auditCmd, settingsCmd, versionCmd)
}

// selectHosts loads the inventory and applies the filter flags.
// An empty selection is an error: every operation needs targets.
func selectHosts() ([]*inventory.Host, error) {
	inv, err := inventory.Load(cfg.GetInventoryDir())
	if err != nil {
		return nil, fmt.Errorf("loading inventory: %w", err)
	}

	pred, err := filter.Parse(filterClauses)
	if err != nil {
		return nil, err
	}

	hosts := inv.Filter(pred)
	if len(hosts) == 0 {
		return nil, fmt.Errorf("no hosts match: %s", filter.Format(filterClauses))
	}
	return hosts, nil
}
