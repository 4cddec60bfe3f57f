package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/camgunz/cdump/format"
)

func newDumpCmd() *cobra.Command {
	var inputs inputFlags
	var dumpFormat string

	cmd := &cobra.Command{
		Use:   "dump <file>...",
		Short: "Print the definitions found in C sources or castxml documents",
		Long: `Print the definitions found in C sources or castxml documents.

Definitions are keyed the way C names them: structs, unions and enums by
tag ("struct Point", "union Value", "enum Color"), typedefs and functions by
their bare name ("size_t", "printf"). "typedef struct Point Point" yields
both "struct Point" and "Point".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.apply(cmd, cfg)
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = dumpFormat
			}

			enc, err := format.NewEncoder(cfg.Output.Format, os.Stdout)
			if err != nil {
				return err
			}

			// Best-effort runs still print what the earlier inputs produced.
			walker, loadErr := loadInputs(cmd.Context(), cfg, inputs.xml, args)
			if walker == nil || (loadErr != nil && cfg.Resolve.Strict) {
				return loadErr
			}
			for _, f := range walker.Failures() {
				fmt.Fprintf(os.Stderr, "skipped %s: %v\n", f.Node, f.Err)
			}

			if err := enc.Encode(walker.Table()); err != nil {
				return fmt.Errorf("encode %s: %w", cfg.Output.Format, err)
			}
			return loadErr
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "json", "output format (json, yaml, line)")

	return cmd
}
