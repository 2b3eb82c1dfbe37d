// Package main provides the entry point for the math2visual CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/7i6ht/math2visual-sub000/cmd/math2visual/commands"
	"github.com/7i6ht/math2visual-sub000/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "math2visual",
		Short: "Math2Visual - cross-representation sync engine for math word problems",
		Long: `Math2Visual keeps a math word problem's DSL text, SVG diagram, and
natural-language text in sync.

Commands:
  inspect    Show the component mapping of a triad bundle
  highlight  Resolve a highlight target against a triad bundle
  patch      Apply a scalar edit to the DSL tree
  validate   Check a triad bundle for consistency
  serve      Expose highlight resolution and metrics over HTTP`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewHighlightCommand())
	rootCmd.AddCommand(commands.NewPatchCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "math2visual %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}