package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/beaninfo/internal/cli/ui"
	"github.com/conduit-lang/beaninfo/internal/docs"
	"github.com/conduit-lang/beaninfo/runtime/introspection"
)

// newDocsCommand creates the 'docs' command
func newDocsCommand(global *globalOptions) *cobra.Command {
	cfg := &docs.Config{}

	cmd := &cobra.Command{
		Use:   "docs",
		Short: "Generate Markdown reference pages for the catalog",
		Long: `Introspect every type in the catalog and write a README.md index plus one
Markdown page per type. Types whose bean descriptor is hidden are skipped
unless --include-hidden is given.`,
		Example: `  beaninfo docs --out docs/types
  beaninfo docs --out docs/types --title "Acme widgets" --include-hidden`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, global)
			if err != nil {
				return err
			}
			defer s.logger.Sync() //nolint:errcheck

			in := s.introspector()
			doc := &docs.Documentation{}
			for _, name := range s.catalog.TypeNames() {
				t, _ := s.catalog.Lookup(name)
				info, err := in.Introspect(t)
				if err != nil {
					var ie *introspection.Error
					if errors.As(err, &ie) {
						fmt.Fprint(cmd.ErrOrStderr(), ui.IntrospectionError(err, s.noColor))
						return errReported
					}
					return err
				}
				td := &docs.TypeDoc{Name: name, Info: info}
				if super := s.catalog.Supertype(t); super != nil {
					td.Super = super.Name()
				}
				doc.Types = append(doc.Types, td)
			}

			written, err := docs.NewMarkdownGenerator(cfg).Generate(doc)
			if err != nil {
				return err
			}
			s.logger.Debug("documentation generated", zap.Int("files", len(written)))
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.OutputDir, "out", "docs", "Output directory")
	cmd.Flags().StringVar(&cfg.Title, "title", "", "Index page title")
	cmd.Flags().StringVar(&cfg.Description, "description", "", "Paragraph under the index title")
	cmd.Flags().BoolVar(&cfg.IncludeHidden, "include-hidden", false, "Document hidden types and features")
	return cmd
}
