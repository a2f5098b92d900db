package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/netauto-dev/netauto/pkg/cli"
	"github.com/netauto-dev/netauto/pkg/operations"
)

// printResults renders the per-host outcome table and the aggregate
// summary line. With diffs true, each host's device diff follows the
// table.
func printResults(result *operations.OperationResult, diffs bool) {
	table := cli.NewTable("HOST", "STATUS", "MESSAGE")
	for _, r := range result.Results {
		table.Row(r.Hostname, cli.Status(r.Status), r.Message)
	}
	table.Flush()

	if diffs {
		for _, r := range result.Results {
			if strings.TrimSpace(r.Diff) == "" {
				continue
			}
			fmt.Printf("\n%s\n%s\n", cli.Bold("--- "+r.Hostname+" ---"), cli.ColorDiff(r.Diff))
		}
	}

	fmt.Printf("\n%s\n", result.Summary())
}

func printSessionListings(listings []operations.HostSessions) {
	table := cli.NewTable("HOST", "SESSION", "STATUS")
	for _, l := range listings {
		if len(l.Sessions) == 0 {
			table.Row(l.Hostname, cli.Dim("(none)"), "")
			continue
		}
		for _, s := range l.Sessions {
			table.Row(l.Hostname, s.Name, s.Status)
		}
	}
	table.Flush()
	fmt.Println()
}

// confirm asks a yes/no question on stdin. Anything but "y"/"yes" is
// a no.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// promptPassword reads a password with terminal echo disabled.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
