package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/storage"
)

func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Show the tore and sqlite versions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// An in-memory database answers sqlite_version() without touching ~/.tore.
			store, err := storage.OpenSQLite(":memory:", 0)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.SQLiteVersion(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tore version:    %s\n", opts.deps.Version)
			fmt.Fprintf(out, "sqlite version:  %s\n", v)
			return nil
		},
	}
}
