package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-printtmpl/pkg/printtmpl"
)

func newEntitiesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List the entity types a template can target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, map[string][]string{"entity_types": printtmpl.EntityTypes})
			}
			for _, entity := range printtmpl.EntityTypes {
				fmt.Fprintln(out, entity)
			}
			return nil
		},
	}
}
