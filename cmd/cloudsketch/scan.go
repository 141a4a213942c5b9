package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cloudsketch/cloudsketch/pkg/aws"
	"github.com/cloudsketch/cloudsketch/pkg/config"
)

type scanFlags struct {
	region  string
	profile string
	outDir  string
	mode    string
	formats []string
}

func newScanCmd(cfg *config.Config) *cobra.Command {
	flags := &scanFlags{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the configured AWS account region and render diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyOverrides(cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			awsCfg, err := aws.LoadConfig(ctx, cfg.Region, cfg.Profile)
			if err != nil {
				return err
			}
			reader := aws.NewReader(awsCfg)

			store, rels, err := reader.Read(ctx)
			if err != nil {
				if store.Len() == 0 {
					return err
				}
				zap.S().Warnf("rendering a partial inventory: %v", err)
			}
			return renderAll(*cfg, reader.Region(), store, rels)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.region, "region", "", "AWS region to scan (defaults to the SDK's resolution)")
	f.StringVar(&flags.profile, "profile", "", "Shared config profile to use")
	f.StringVarP(&flags.outDir, "out", "o", "", "Output directory")
	f.StringVarP(&flags.mode, "mode", "m", "", "Diagram mode: hierarchy or relationships")
	f.StringSliceVarP(&flags.formats, "format", "f", nil, "Output formats (svg, drawio, dot, html, cfn)")
	return cmd
}

func applyOverrides(cfg *config.Config, flags *scanFlags) {
	if flags.region != "" {
		cfg.Region = flags.region
	}
	if flags.profile != "" {
		cfg.Profile = flags.profile
	}
	if flags.outDir != "" {
		cfg.OutDir = flags.outDir
	}
	if flags.mode != "" {
		cfg.Mode = flags.mode
	}
	if len(flags.formats) > 0 {
		cfg.Formats = flags.formats
	}
}
