package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newTagsCmd(flags *globalFlags) *cobra.Command {
	var counts bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List the categories assigned to emails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				unique := a.tags.ListUniqueTags(ctx)
				if len(unique) == 0 {
					fmt.Fprintln(out, "No tags yet")
					return nil
				}
				if !counts {
					for _, t := range unique {
						fmt.Fprintln(out, t)
					}
					return nil
				}
				perTag := make(map[string]int, len(unique))
				for _, t := range a.tags.All(ctx) {
					perTag[t]++
				}
				sort.Strings(unique)
				for _, t := range unique {
					fmt.Fprintf(out, "%-12s %d\n", t, perTag[t])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&counts, "counts", false, "Show how many emails carry each tag")
	return cmd
}
