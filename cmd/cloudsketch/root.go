package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudsketch/cloudsketch/pkg/config"
	"github.com/cloudsketch/cloudsketch/pkg/logging"
)

type rootFlags struct {
	configPath string
	verbose    bool
	jsonLogs   bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var cfg config.Config

	cmd := &cobra.Command{
		Use:           "cloudsketch",
		Short:         "Generate architecture diagrams from an AWS account or a CloudFormation template",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			encoding := "console"
			if flags.jsonLogs {
				encoding = "json"
			}
			logger := logging.LogOpts{Verbose: flags.verbose, Encoding: encoding}.NewLogger()
			zap.ReplaceGlobals(logger)

			loaded, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			// Flush is best-effort; stderr may be a closed pipe.
			_ = zap.L().Sync()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "cloudsketch.toml", "Path to the TOML config file")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Verbose flag")
	pf.BoolVar(&flags.jsonLogs, "json-log", false, "Output logs in JSON format")

	cmd.AddCommand(newScanCmd(&cfg))
	cmd.AddCommand(newImportCmd(&cfg))
	return cmd
}
