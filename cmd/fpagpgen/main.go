// Package main provides the entry point for the fpagpgen CLI tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fpasys/fpagpgen/cmd/fpagpgen/commands"
	"github.com/fpasys/fpagpgen/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "fpagpgen",
		Short: "fpagpgen - forecast graphics product generator",
		Long: `fpagpgen implements the two cores a meteorological graphics production
system needs: a temporal interpolation engine for polygon/area boundary
fields, and an fpdf directive engine that executes a draw script against
one of four graphics back ends (PostScript, SVG, Corel Metafile, fixed-
pitch text).

Commands:
  render       Render an fpdf directive source through a back end
  interpolate  Temporally interpolate a closed boundary across keyframes
  mcp          Start an MCP server exposing render/interpolate as tools
  serve        Run an HTTP render-on-demand server with a /metrics endpoint
  validate     Validate a setup file or fpdf source without rendering it
  diff         Compare two rendered fpdf outputs line-by-line
  plot         Render an HTML trajectory plot of an interpolation request
  inspect      Dump an fpdf source's parsed directive sequence as a table`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "has no effect: no command reads this flag")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "has no effect: no command reads this flag")

	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewInterpolateCommand())
	rootCmd.AddCommand(commands.NewMCPCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDiffCommand())
	rootCmd.AddCommand(commands.NewPlotCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		if !errors.Is(err, commands.ErrDiffFound) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "fpagpgen %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
