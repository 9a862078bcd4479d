package commands

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/beaninfo/internal/cli/ui"
)

type typeEntry struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Super    string `json:"super,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// newTypesCommand creates the 'types' command
func newTypesCommand(global *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the types declared in the catalog",
		Long: `List the types declared in the catalog with their kind, supertype and the
explicit provider that introspection would pick up for them, if any.`,
		Example: `  beaninfo types --schema widgets.yml
  beaninfo types --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, global)
			if err != nil {
				return err
			}
			if format == "" {
				format = s.cfg.Output.Format
			}

			entries := make([]typeEntry, 0)
			providers := s.catalog.ProviderNames()
			for _, name := range s.catalog.TypeNames() {
				t, _ := s.catalog.Lookup(name)
				e := typeEntry{Name: name, Kind: t.Kind().String()}
				if super := s.catalog.Supertype(t); super != nil {
					e.Super = super.Name()
				}
				candidates := []string{name + "Info"}
				for _, entry := range s.cfg.SearchPath {
					candidates = append(candidates, entry+"."+t.SimpleName()+"Info")
				}
				for _, c := range candidates {
					if _, found := slices.BinarySearch(providers, c); found {
						e.Provider = c
						break
					}
				}
				entries = append(entries, e)
			}

			switch format {
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(entries)
			case "table":
				table := ui.NewTable(cmd.OutOrStdout(), s.noColor, "TYPE", "KIND", "SUPER", "PROVIDER")
				for _, e := range entries {
					table.AddRow(e.Name, e.Kind, e.Super, e.Provider)
				}
				table.Render()
				return nil
			}
			return fmt.Errorf("unsupported format: %s (supported: json, table)", format)
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Output format: json or table (default from config)")
	return cmd
}
