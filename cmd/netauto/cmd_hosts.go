package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/cli"
	"github.com/netauto-dev/netauto/pkg/filter"
)

// hostsCmd lists the hosts the current filter selects.
var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List hosts matching the filter",
	Long: `List the inventory hosts the current filter selects, with the
attributes the role templates see.

Examples:
  netauto hosts                       # Whole inventory
  netauto -f role=leaf hosts
  netauto -f role=leaf -f site=ny|nj hosts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := selectHosts()
		if err != nil {
			return err
		}

		fmt.Printf("Filters: %s\n\n", cli.Bold(filter.Format(filterClauses)))

		table := cli.NewTable("NAME", "HOSTNAME", "PLATFORM", "ROLE")
		for _, h := range hosts {
			table.Row(h.Name, h.Hostname, h.Platform, h.Role())
		}
		table.Flush()

		fmt.Printf("\n%d hosts\n", len(hosts))
		return nil
	},
}
