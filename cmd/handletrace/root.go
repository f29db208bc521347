// Package main provides the entry point for the handletrace CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for handletrace.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "handletrace",
		Short: "Cross-platform identity correlation from a seed handle",
		Long: `handletrace investigates how a username propagates across platforms.

Starting from a single seed handle, it generates plausible handle
variants, probes platforms for matching accounts with configurable
stealth, extracts behavioral fingerprints from the confirmed accounts,
and clusters accounts whose fingerprints correlate strongly enough to
suggest a shared owner.

All probing is paced and budgeted per platform. Use --stealth 3 to
restrict probing to passive sources that never touch the platform.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewTraceCmd())
	cmd.AddCommand(NewPlatformsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
