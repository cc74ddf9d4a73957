package cli

import (
	"context"
	"fmt"

	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/spf13/cobra"
)

// withApp opens the local stores for the lifetime of one command
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newRulesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage privacy rules that keep senders away from the AI",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List privacy rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				printRules(cmd, a.privacy.ListRules(ctx))
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <sender|domain> <value>",
		Short: "Block a sender address or domain from AI processing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleType, err := services.ParseRuleType(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				rules, err := a.privacy.AddRule(ctx, ruleType, args[1])
				if err != nil {
					return err
				}
				printRules(cmd, rules)
				return nil
			})
		},
	}

	var removeType string
	remove := &cobra.Command{
		Use:   "remove <value>",
		Short: "Remove privacy rules by value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				var (
					rules []services.PrivacyRule
					err   error
				)
				if removeType != "" {
					ruleType, perr := services.ParseRuleType(removeType)
					if perr != nil {
						return perr
					}
					rules, err = a.privacy.RemoveTypedRule(ctx, ruleType, args[0])
				} else {
					rules, err = a.privacy.RemoveRule(ctx, args[0])
				}
				if err != nil {
					return err
				}
				printRules(cmd, rules)
				return nil
			})
		},
	}
	remove.Flags().StringVar(&removeType, "type", "", "Only remove rules of this type (sender or domain)")

	cmd.AddCommand(list, add, remove)
	return cmd
}

func printRules(cmd *cobra.Command, rules []services.PrivacyRule) {
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(out, "No privacy rules")
		return
	}
	for _, r := range rules {
		fmt.Fprintf(out, "%-7s %s\n", r.Type, r.Value)
	}
}
