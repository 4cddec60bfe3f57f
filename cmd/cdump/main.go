package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/camgunz/cdump/config"
)

const version = "0.1.0"

var (
	configPaths []string
	verbosity   int
	logFile     string

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cdump",
		Short:         "Extract C type definitions through castxml",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadFromFiles(configPaths...)
			if err != nil {
				return err
			}
			configureLogging(cmd)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringArrayVar(&configPaths, "config", nil, "TOML config file (repeatable, later files win)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")

	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newDBCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newUICmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func configureLogging(cmd *cobra.Command) {
	level := cfg.Log.Verbosity + verbosity
	path := cfg.Log.File
	if cmd.Flags().Changed("log-file") {
		path = logFile
	}
	if path == "" {
		commonlog.Configure(level, nil)
		return
	}
	commonlog.Configure(level, &path)
}
