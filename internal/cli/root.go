// Package cli holds the inboxpilot command tree
package cli

import (
	"fmt"
	"os"

	"github.com/ajramos/inboxpilot/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the inboxpilot command tree
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "inboxpilot",
		Short: "AI-assisted email triage dashboard",
		Long: `inboxpilot serves a web dashboard backend over your Gmail inbox.

Opened emails are categorized and scanned for reminders by a language model,
results are cached locally, and senders can be kept away from the model with
privacy rules. Summaries, quick replies and calendar events are available on
demand.

Environment Variables:
  INBOXPILOT_CONFIG       Override default config file path
  INBOXPILOT_CREDENTIALS  Override default credentials file path
  INBOXPILOT_TOKEN        Override default token file path
  GEMINI_API_KEY          API key for the default gemini provider`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetVersionTemplate(`{{printf "inboxpilot version %s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to JSON or YAML configuration file (default: ~/.config/inboxpilot/config.json)")
	pf.StringVar(&flags.credentials, "credentials", "", "Path to OAuth client credentials JSON (default: ~/.config/inboxpilot/credentials.json)")
	pf.StringVar(&flags.token, "token", "", "Path to the cached OAuth token (default: ~/.config/inboxpilot/token.json)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		newServeCmd(flags),
		newSetupCmd(flags),
		newVersionCmd(),
		newRulesCmd(flags),
		newRemindersCmd(flags),
		newPromptsCmd(flags),
		newTagsCmd(flags),
		newRecordsCmd(flags),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersionString())
		},
	}
}
