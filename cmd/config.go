package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oakwood-commons/cashbook/internal/config"
)

// newConfigCmd groups configuration-related subcommands similar to gh-style CLIs.
func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show cashbook configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Show help when invoked without a subcommand (gh-style UX)
			return cmd.Help()
		},
	}

	var output string
	get := &cobra.Command{
		Use:   "get",
		Short: "Show the merged configuration",
		Long: `Show the configuration in effect: the embedded defaults, overlaid with the
config file (--config-file or $XDG_CONFIG_HOME/cashbook/config.yaml) and the
global flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			switch output {
			case "json":
				b, err := json.MarshalIndent(o.cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("encode config: %w", err)
				}
				fmt.Fprintln(w, string(b))
			case "yaml", "":
				b, err := config.Marshal(o.cfg)
				if err != nil {
					return err
				}
				if o.cfgPath != "" {
					fmt.Fprintf(w, "# %s\n", o.cfgPath)
				}
				fmt.Fprint(w, string(b))
			default:
				return usageErrorf("invalid output format %q: valid values are yaml, json", output)
			}
			return nil
		},
	}
	get.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")

	path := &cobra.Command{
		Use:   "path",
		Short: "Print the config file and database paths in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := o.cfg.DatabasePath()
			if err != nil {
				return err
			}
			cfgPath := o.cfgPath
			if cfgPath == "" {
				cfgPath = "(embedded defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:   %s\ndatabase: %s\n", cfgPath, db)
			return nil
		},
	}

	cmd.AddCommand(get, path)
	return cmd
}
