package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ajramos/inboxpilot/internal/config"
	"github.com/spf13/cobra"
)

func newSetupCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Check credentials and create a default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), flags)
		},
	}
}

// runSetup reports which files are in place and offers to write a default config
func runSetup(in io.Reader, out io.Writer, flags *globalFlags) error {
	fmt.Fprintln(out, "inboxpilot setup")
	fmt.Fprintln(out, "================")
	fmt.Fprintln(out)

	configPath := getConfigPath(flags.configPath)
	credPath := getCredentialsPath(flags.credentials, "")
	tokenPath := getTokenPath(flags.token, "")

	configExists := fileExists(configPath)
	if configExists {
		fmt.Fprintf(out, "Configuration file found: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Will create configuration file: %s\n", configPath)
	}

	if fileExists(credPath) {
		fmt.Fprintf(out, "Credentials file found: %s\n", credPath)
	} else {
		fmt.Fprintf(out, "Credentials file missing: %s\n", credPath)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To set up Google API credentials:")
		fmt.Fprintln(out, "1. Go to https://console.cloud.google.com/")
		fmt.Fprintln(out, "2. Create a new project or select an existing one")
		fmt.Fprintln(out, "3. Enable the Gmail API and the Google Calendar API")
		fmt.Fprintln(out, "4. Create OAuth 2.0 credentials (Desktop application)")
		fmt.Fprintln(out, "5. Download the JSON file and save it as:")
		fmt.Fprintf(out, "   %s\n", credPath)
		fmt.Fprintln(out)
	}

	if fileExists(tokenPath) {
		fmt.Fprintf(out, "Token file found: %s\n", tokenPath)
	} else {
		fmt.Fprintf(out, "Token will be created on first run of `inboxpilot serve`: %s\n", tokenPath)
	}

	if !configExists {
		fmt.Fprintln(out)
		fmt.Fprint(out, "Create default configuration file? [Y/n]: ")

		response, _ := bufio.NewReader(in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response == "" || response == "y" || response == "yes" {
			if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
				return fmt.Errorf("failed to create config file: %w", err)
			}
			fmt.Fprintf(out, "Created configuration file: %s\n", configPath)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Setup complete. Start the dashboard API with:")
	fmt.Fprintln(out, "   inboxpilot serve")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tips:")
	fmt.Fprintln(out, "- Set GEMINI_API_KEY or llm.api_key to enable AI triage")
	fmt.Fprintln(out, "- Choose storage.backend sqlite, redis or memory in the config file")
	return nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
