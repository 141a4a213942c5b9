package main

import (
	"github.com/spf13/cobra"

	"github.com/cloudsketch/cloudsketch/pkg/cfn"
	"github.com/cloudsketch/cloudsketch/pkg/config"
)

type importFlags struct {
	outDir  string
	mode    string
	formats []string
}

func newImportCmd(cfg *config.Config) *cobra.Command {
	flags := &importFlags{}

	cmd := &cobra.Command{
		Use:   "import <template.yaml | directory>",
		Short: "Render diagrams from exported CloudFormation templates (a single file or a directory of them)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyOverrides(cfg, &scanFlags{outDir: flags.outDir, mode: flags.mode, formats: flags.formats})
			if err := cfg.Validate(); err != nil {
				return err
			}

			store, rels, err := cfn.ImportPath(args[0])
			if err != nil {
				return err
			}
			region := cfg.Region
			if region == "" {
				region = "imported"
			}
			return renderAll(*cfg, region, store, rels)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.outDir, "out", "o", "", "Output directory")
	f.StringVarP(&flags.mode, "mode", "m", "", "Diagram mode: hierarchy or relationships")
	f.StringSliceVarP(&flags.formats, "format", "f", nil, "Output formats (svg, drawio, dot, html, cfn)")
	return cmd
}
