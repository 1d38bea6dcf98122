package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hal9000y/inbox-agent/internal/agent"
	"github.com/hal9000y/inbox-agent/internal/auth"
	"github.com/hal9000y/inbox-agent/internal/tool"
)

const credentialsHelp = `Gmail OAuth client credentials were not found.

To set them up:
  1. Open the Google Cloud Console (https://console.cloud.google.com/) and
     create or select a project.
  2. Enable the Gmail API for the project.
  3. Create OAuth 2.0 Client ID credentials (application type: Web application
     or Desktop app).
  4. Download the credentials JSON and save it as credentials.json (or point
     GMAIL_CREDENTIALS_PATH at it).
`

var (
	chatInteractive bool
	chatOAuthAddr   string
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the email assistant a question about your inbox",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().BoolVarP(&chatInteractive, "interactive", "i", false, "keep the session open and read messages from stdin")
	chatCmd.Flags().StringVar(&chatOAuthAddr, "oauth-addr", "localhost:0", "address for the local OAuth callback server")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !chatInteractive {
		return errors.New("provide a message or run with --interactive")
	}

	sess, err := newMailSession(chatOAuthAddr)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsUnavailable) {
			fmt.Fprint(os.Stderr, credentialsHelp)
		}
		return err
	}
	defer sess.close()

	if err := sess.settings.RequireOpenAI(); err != nil {
		return err
	}

	ctx := cmd.Context()

	if err := sess.authenticate(ctx); err != nil {
		return err
	}

	backend := agent.NewOpenAIBackend(sess.settings.OpenAIAPIKey, sess.settings.Model)
	assistant := agent.New(backend, tool.NewToolSet(sess.svc), agent.Config{
		MaxIterations:    sess.settings.MaxIterations,
		ObservationLimit: sess.settings.ObservationLimit,
	})

	if len(args) == 1 {
		reply, err := assistant.Chat(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Println(reply)

		if !chatInteractive {
			return nil
		}
	}

	return chatLoop(cmd, assistant)
}

func chatLoop(cmd *cobra.Command, assistant *agent.Agent) error {
	fmt.Println("Email assistant ready. Type 'quit' to exit.")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		}

		reply, err := assistant.Chat(cmd.Context(), line)
		if err != nil {
			if errors.Is(err, agent.ErrNotConverged) {
				fmt.Println("Sorry, I could not complete that request. Try rephrasing it.")
				continue
			}
			return err
		}
		fmt.Println(reply)
	}
}
