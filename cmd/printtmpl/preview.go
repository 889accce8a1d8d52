package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl/sampledata"
)

var errPreviewFailed = errors.New("preview failed")

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	var (
		entityType string
		seed       uint64
		output     outputOptions
	)

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Render a template against generated sample data",
		Long: `Render a template against sample data generated for an entity type.
The entity type defaults to the one declared in the template metadata.`,
		Example: `  printtmpl preview member.xml
  printtmpl preview vehicle.xml --entity vehicles --seed 7 --full`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			faker := sampledata.New(sampledata.WithSeed(seed))
			engine, err := opts.newEngine(cmd, printtmpl.WithSampleProvider(faker))
			if err != nil {
				return err
			}
			src, err := readTemplate(args[0])
			if err != nil {
				return err
			}

			if entityType == "" {
				if doc, err := engine.Parse(src); err == nil {
					entityType = doc.EntityType()
				}
			}

			resp := engine.Preview(cmd.Context(), printtmpl.PreviewRequest{
				XMLContent: src,
				EntityType: entityType,
			})

			if opts.jsonOutput {
				if err := writeJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
				if !resp.Success {
					return errPreviewFailed
				}
				return nil
			}

			if !resp.Success {
				writeRequestError(cmd.ErrOrStderr(), resp.Error)
				return errPreviewFailed
			}
			return output.write(cmd.OutOrStdout(), false, resp.Result)
		},
	}

	cmd.Flags().StringVarP(&entityType, "entity", "e", "", "Entity type of the sample data")
	cmd.Flags().Uint64Var(&seed, "seed", sampledata.DefaultSeed, "Sample data seed, 0 for random data")
	cmd.Flags().BoolVar(&output.full, "full", false, "Wrap the output in a printable HTML page")
	cmd.Flags().BoolVar(&output.minifyCSS, "minify-css", false, "Minify the template stylesheet")
	cmd.Flags().StringVarP(&output.outPath, "out", "o", "", "Write the output to a file instead of stdout")
	return cmd
}
