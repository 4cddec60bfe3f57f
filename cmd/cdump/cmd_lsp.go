package main

import (
	"github.com/spf13/cobra"

	"github.com/camgunz/cdump/lsp"
)

func newLSPCmd() *cobra.Command {
	var inputs inputFlags

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs.apply(cmd, cfg)

			cxOpts, err := castXMLOptions(cfg)
			if err != nil {
				return err
			}
			resOpts, err := resolveOptions(cfg)
			if err != nil {
				return err
			}

			poll, err := cfg.LSPPollInterval()
			if err != nil {
				return err
			}

			server, err := lsp.NewServer(version, lsp.Options{
				CastXML:      cxOpts,
				Resolve:      resOpts,
				MainOnly:     cfg.Resolve.MainOnly,
				CacheSize:    cfg.LSP.CacheSize,
				PollInterval: poll,
			})
			if err != nil {
				return err
			}
			return server.RunStdio()
		},
	}

	inputs.register(cmd)
	cmd.Flags().MarkHidden("xml")

	return cmd
}
