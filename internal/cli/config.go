package cli

import (
	"github.com/spf13/cobra"

	"tinyhttpd/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	Long: `Resolves defaults, the config file, TINYHTTPD_* variables and flags
exactly as the server would, validates the result and prints it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		eff, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return config.Dump(cmd.OutOrStdout(), eff)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
