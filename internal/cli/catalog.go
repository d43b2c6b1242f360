package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"example.com/onestop-outings/backend/internal/catalog"
)

func newCatalogCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [category]",
		Short: "Print catalog entries or per-category counts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := opts.loadApp(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), application.Catalog.Stats())
			}

			events := application.Catalog.Lookup(catalog.Category(args[0]))
			if len(events) == 0 {
				return fmt.Errorf("unknown or empty category %q", args[0])
			}
			return printJSON(cmd.OutOrStdout(), events)
		},
	}
}
