package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/editor/internal/core/reflection"
)

var (
	componentsOnly bool

	typesCmd = &cobra.Command{
		Use:   "types",
		Short: "List the registered types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tID\tSIZE\tMEMBERS\tFLAGS")
			for _, id := range app.Registry.Types() {
				info, _ := app.Registry.TypeInfo(id)
				if componentsOnly && !info.Flags.Has(reflection.IsComponent) {
					continue
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
					info.Name, id, info.Size, len(app.Registry.Members(id)), info.Flags)
			}
			return w.Flush()
		},
	}
)

func init() {
	typesCmd.Flags().BoolVar(&componentsOnly, "components", false, "list components only")
}
