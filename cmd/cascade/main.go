package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cascade",
		Short: "Tools for declarative UI configurations",
		Long: `Cascade compiles declarative widget configurations into live UI trees.

This CLI works on YAML configuration files without a GUI host:

  • lint     compile a configuration and report every diagnostic
  • inspect  print the resolved property set of every node
  • version  print version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		lintCmd(),
		inspectCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
