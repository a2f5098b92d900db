package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/cli"
	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/operations"
	"github.com/netauto-dev/netauto/pkg/session"
)

var (
	sessionsForce  bool
	sessionsSelect bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage device-side configuration sessions",
	Long: `Inspect and clean up configuration sessions left behind on devices
by interrupted runs or by operators.`,
}

// sessionsListCmd lists config sessions on the selected hosts.
var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configuration sessions on each host",
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := selectHosts()
		if err != nil {
			return err
		}

		runner, cleanup, err := buildRunner(hosts)
		if err != nil {
			return err
		}
		defer cleanup()

		result, listings := runner.SessionList(context.Background(), hosts)
		printSessionListings(listings)
		printResults(result, false)

		if result.Failed() {
			return fmt.Errorf("%d of %d hosts failed", result.FailedCount(), result.Total())
		}
		return nil
	},
}

// sessionsAbortCmd aborts every config session on the selected hosts.
var sessionsAbortCmd = &cobra.Command{
	Use:   "abort",
	Short: "Abort all configuration sessions on each host",
	Long: `Abort every configuration session on the selected hosts. The staged
changes in those sessions are discarded; the running configuration is
unaffected. Hosts with no sessions are untouched and unreported.

With --select (single host only), sessions are listed and you pick
which ones to abort instead of sweeping them all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := selectHosts()
		if err != nil {
			return err
		}

		if sessionsSelect {
			if len(hosts) != 1 {
				return fmt.Errorf("--select needs exactly one host, filter matched %d", len(hosts))
			}
			return abortSelected(hosts[0])
		}

		if !sessionsForce {
			prompt := fmt.Sprintf("Abort all configuration sessions on %d host(s)?", len(hosts))
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

		result := runner.SessionAbort(context.Background(), hosts)
		if result.Total() == 0 {
			fmt.Println("No configuration sessions found.")
			return nil
		}
		printResults(result, false)

		if result.Failed() {
			return fmt.Errorf("%d of %d hosts failed", result.FailedCount(), result.Total())
		}
		return nil
	},
}

// abortSelected lists one host's sessions, asks which to abort, and
// aborts the chosen ones.
func abortSelected(host *inventory.Host) error {
	targets := []*inventory.Host{host}
	runner, cleanup, err := buildRunner(targets)
	if err != nil {
		return err
	}
	defer cleanup()

	listResult, listings := runner.SessionList(context.Background(), targets)
	if listResult.Failed() {
		return fmt.Errorf("listing sessions on %s: %s", host.Name, listResult.Result(host.Name).Message)
	}
	sessions := listings[0].Sessions
	if len(sessions) == 0 {
		fmt.Println("No configuration sessions found.")
		return nil
	}

	table := cli.NewTable("#", "SESSION", "STATUS")
	for i, s := range sessions {
		table.Row(strconv.Itoa(i+1), s.Name, s.Status)
	}
	table.Flush()

	indices, err := promptIndices()
	if err != nil {
		return err
	}
	if len(indices) == 0 {
		fmt.Println("Nothing selected.")
		return nil
	}

	chosen, err := session.Select(sessions, indices)
	if err != nil {
		return err
	}
	names := make([]string, len(chosen))
	for i, s := range chosen {
		names[i] = s.Name
	}

	result := runner.SessionAbortNamed(context.Background(), host, names)
	fmt.Printf("%s: %s %s\n", result.Hostname, cli.Status(result.Status), result.Message)
	if result.Status == operations.StatusFailed {
		return fmt.Errorf("abort failed on %s", host.Name)
	}
	return nil
}

// promptIndices reads a comma-separated selection from stdin. An empty
// line selects nothing.
func promptIndices() ([]int, error) {
	fmt.Print("Sessions to abort (e.g. 1,3) [none]: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	var indices []int
	for _, tok := range strings.Split(line, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", tok)
		}
		indices = append(indices, n)
	}
	return indices, nil
}

func init() {
	sessionsAbortCmd.Flags().BoolVar(&sessionsForce, "force", false, "Skip the confirmation prompt")
	sessionsAbortCmd.Flags().BoolVar(&sessionsSelect, "select", false, "Interactively pick sessions to abort (single host)")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsAbortCmd)
}
