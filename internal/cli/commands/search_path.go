package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newSearchPathCommand creates the 'search-path' command
func newSearchPathCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search-path",
		Short: "Print the effective provider search path",
		Long: `Print the package prefixes searched for explicit providers, one per line,
after applying beaninfo.yml and BEANINFO_SEARCH_PATH.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			for _, entry := range cfg.SearchPath {
				fmt.Fprintln(cmd.OutOrStdout(), entry)
			}
			return nil
		},
	}
}
