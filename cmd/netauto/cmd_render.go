package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netauto-dev/netauto/pkg/operations"
	"github.com/netauto-dev/netauto/pkg/render"
)

var (
	templatesDir string
	outputDir    string
)

// renderCmd generates device configs from role templates.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render configs from role templates",
	Long: `Render a configuration file for each selected host from its role
template. Output goes to <output-dir>/<hostname>.cfg and is what a
subsequent push stages on the device.

Examples:
  netauto -f role=leaf render
  netauto render --templates ./templates --output ./generated`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hosts, err := selectHosts()
		if err != nil {
			return err
		}
		if templatesDir != "" {
			cfg.TemplatesDir = templatesDir
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}

		runner := operations.NewRunner(operations.RunnerConfig{
			Renderer: render.NewRenderer(cfg.GetTemplatesDir(), cfg.GetOutputDir()),
			Workers:  cfg.GetWorkers(),
		})

		result, err := runner.Render(context.Background(), hosts)
		if err != nil {
			return err
		}
		printResults(result, false)

		if result.Failed() {
			return fmt.Errorf("%d of %d hosts failed", result.FailedCount(), result.Total())
		}
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVar(&templatesDir, "templates", "", "Templates directory")
	renderCmd.Flags().StringVar(&outputDir, "output", "", "Generated config directory")
}
