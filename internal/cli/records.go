package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newRecordsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List the records kept in the local sqlite store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if a.kvStore == nil {
					return fmt.Errorf("records listing needs the sqlite backend, configured backend is %q", a.cfg.Storage.Backend)
				}
				prefix := a.records.Key("")
				infos, err := a.kvStore.List(ctx, prefix)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(infos) == 0 {
					fmt.Fprintln(out, "No records")
					return nil
				}
				for _, info := range infos {
					name := strings.TrimPrefix(info.Key, prefix)
					fmt.Fprintf(out, "%-24s %8s  %s\n", name, humanize.Bytes(uint64(info.Size)), humanize.Time(info.UpdatedAt))
				}
				return nil
			})
		},
	}
}
