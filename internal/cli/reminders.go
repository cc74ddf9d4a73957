package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ajramos/inboxpilot/internal/render"
	"github.com/spf13/cobra"
)

func newRemindersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect saved reminders",
	}

	var emailID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				items := a.reminders.List(ctx)
				if emailID != "" {
					items = a.reminders.ListForEmail(ctx, emailID)
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No reminders")
					return nil
				}
				for _, r := range items {
					date := r.Date
					if date == "" {
						date = "-"
					}
					created := time.UnixMilli(r.Created).Format("2006-01-02")
					fmt.Fprintf(out, "%s  %s  %-25s %s\n", r.ID, created, date, render.Preview(r.Text, 60))
				}
				return nil
			})
		},
	}
	list.Flags().StringVar(&emailID, "email", "", "Only show reminders for this email id")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a saved reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.reminders.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed reminder %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(list, remove)
	return cmd
}
