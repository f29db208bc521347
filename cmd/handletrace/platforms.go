package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/handletrace/internal/config"
)

// NewPlatformsCmd creates the platforms command.
func NewPlatformsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "platforms",
		Short: "List the platform registry",
		Long: `List the platforms handletrace probes, including any added or
overridden by the configuration file.

Examples:
  # List built-in platforms
  handletrace platforms

  # Include platforms from a configuration file
  handletrace platforms -c myconfig.yaml`,
		RunE: runPlatformsCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .handletrace in current or home directory)")
	cmd.Flags().BoolP("all", "a", false,
		"Include disabled platforms")

	return cmd
}

// runPlatformsCmd executes the platforms command.
func runPlatformsCmd(cmd *cobra.Command, _ []string) error {
	configFilePath, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}

	cfg := config.NewConfig()

	explicitConfigPath := configFilePath != ""
	configPath := config.FindConfigFile(configFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitConfigPath {
		return fmt.Errorf("configuration file not found: %s", configFilePath)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPROFILE URL\tINDIRECT\tMIN INTERVAL\tSTATUS")
	for _, p := range cfg.Platforms {
		if p.Disabled && !showAll {
			continue
		}

		indirect := "-"
		if p.IndirectSearchTemplate != "" {
			indirect = "yes"
		}
		status := "enabled"
		if p.Disabled {
			status = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.Name, p.ProfileURLTemplate, indirect, p.MinInterval, status)
	}
	return tw.Flush()
}
