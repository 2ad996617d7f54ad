package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/powerdump/pkg/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the default configuration",
		Long: `Print the built-in configuration as YAML.

Redirect it to a file to start a custom configuration:
  powerdump config > powerdump.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(config.DefaultConfig())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
