package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/camgunz/cdump/ui"
)

func newUICmd() *cobra.Command {
	var inputs inputFlags
	var addr string

	cmd := &cobra.Command{
		Use:   "ui <file>...",
		Short: "Browse the definitions found in C sources in a web UI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.apply(cmd, cfg)

			walker, err := loadInputs(cmd.Context(), cfg, inputs.xml, args)
			if err != nil {
				return err
			}

			server, err := ui.NewServer(walker.Table())
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			displayAddr := addr
			if strings.HasPrefix(addr, ":") {
				displayAddr = "localhost" + addr
			}
			fmt.Printf("Serving %d definitions at http://%s\n", walker.Table().Len(), displayAddr)
			return http.ListenAndServe(addr, server)
		},
	}

	inputs.register(cmd)
	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "address to listen on")

	return cmd
}
