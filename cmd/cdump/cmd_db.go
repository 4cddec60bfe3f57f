package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/camgunz/cdump/store"
)

func newDBCmd() *cobra.Command {
	var inputs inputFlags
	var out string

	cmd := &cobra.Command{
		Use:   "db <file>...",
		Short: "Store the definitions found in C sources in a SQLite database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.apply(cmd, cfg)
			if cmd.Flags().Changed("out") {
				cfg.Store.Path = out
			}

			walker, err := loadInputs(cmd.Context(), cfg, inputs.xml, args)
			if err != nil {
				return err
			}

			db, err := store.Open(cmd.Context(), cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			saved, err := db.Save(cmd.Context(), walker.Table())
			if err != nil {
				return fmt.Errorf("save %s: %w", cfg.Store.Path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d new definitions in %s (%d already stored)\n",
				saved, cfg.Store.Path, walker.Table().Len()-saved)
			return nil
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "database path (default from config, cdump.db)")

	return cmd
}
