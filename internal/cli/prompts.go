package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/ajramos/inboxpilot/internal/prompts"
	"github.com/ajramos/inboxpilot/internal/render"
	"github.com/spf13/cobra"
)

func newPromptsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "View and customize AI prompt templates",
	}

	var full bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				out := cmd.OutOrStdout()
				for _, p := range a.prompts.List(ctx) {
					marker := "default"
					if p.IsCustom {
						marker = "custom"
					}
					if full {
						fmt.Fprintf(out, "[%s] (%s)\n%s\n\n", p.Key, marker, p.Text)
						continue
					}
					fmt.Fprintf(out, "%-15s %-8s %s\n", p.Key, marker, render.Preview(p.Text, 60))
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&full, "full", false, "Print the full template text")

	set := &cobra.Command{
		Use:   "set <key> <text>",
		Short: "Store a custom template",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := prompts.ParseKey(args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.prompts.Save(ctx, key, text); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved custom %s prompt\n", key)
				return nil
			})
		},
	}

	reset := &cobra.Command{
		Use:   "reset <key>",
		Short: "Restore the built-in template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := prompts.ParseKey(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.prompts.Reset(ctx, key); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %s prompt to default\n", key)
				return nil
			})
		},
	}

	cmd.AddCommand(list, set, reset)
	return cmd
}
