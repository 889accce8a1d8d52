package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
)

var errInvalidTemplate = errors.New("template is not valid")

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a template for syntax and semantic errors",
		Long: `Parse and validate a template without rendering it. Every problem is
reported at once; the command fails when any is found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.newEngine(cmd)
			if err != nil {
				return err
			}
			src, err := readTemplate(args[0])
			if err != nil {
				return err
			}

			resp := engine.ValidateRequest(printtmpl.ValidateRequest{XMLContent: src})
			out := cmd.OutOrStdout()

			if opts.jsonOutput {
				if err := writeJSON(out, resp); err != nil {
					return err
				}
			} else if resp.Valid {
				fmt.Fprintf(out, "%s: valid\n", args[0])
			} else {
				fmt.Fprintf(out, "%s: %d error(s)\n", args[0], len(resp.Errors))
				for _, msg := range resp.Errors {
					fmt.Fprintf(out, "  - %s\n", msg)
				}
			}

			if !resp.Valid {
				return errInvalidTemplate
			}
			return nil
		},
	}
}
