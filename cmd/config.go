package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/msalah0e/tripgraph/internal/config"
	"github.com/msalah0e/tripgraph/internal/ui"
	"github.com/spf13/cobra"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Long: `Inspect the effective configuration.

Settings are read from the config file, then the nearest .tripgraph.toml
above the working directory, then .env and TRIPGRAPH_* variables.

  tripgraph config            # print the effective config
  tripgraph config path       # print the config file path
  tripgraph config init       # write the defaults if no file exists`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", configFile())
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), configFile())
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write the default config if none exists",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				created, err := config.EnsureExists(configPath)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if created {
					fmt.Fprintf(w, "%s Wrote %s\n", ui.StatusIcon(true), configFile())
				} else {
					fmt.Fprintf(w, "%s %s already exists\n", ui.WarnIcon(), configFile())
				}
				return nil
			},
		},
	)
	return cmd
}

func configFile() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}
