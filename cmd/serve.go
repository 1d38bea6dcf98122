package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hal9000y/inbox-agent/internal/auth"
	"github.com/hal9000y/inbox-agent/internal/tool"
)

var (
	serveOAuthAddr string
	serveStdio     bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose the email tools as an MCP server",
	Long: `serve runs an MCP server exposing the email tools so external MCP
clients can use them. By default the server speaks streamable HTTP on the
same listener that hosts the OAuth callback (under /mcp); with --stdio it
speaks the stdio transport instead.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveOAuthAddr, "http-addr", "localhost:8080", "address for the HTTP server (OAuth callback and MCP endpoint)")
	serveCmd.Flags().BoolVar(&serveStdio, "stdio", false, "serve MCP over stdio instead of HTTP")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	sess, err := newMailSession(serveOAuthAddr)
	if err != nil {
		if errors.Is(err, auth.ErrCredentialsUnavailable) {
			fmt.Fprint(os.Stderr, credentialsHelp)
		}
		return err
	}
	defer sess.close()

	ctx := cmd.Context()

	if err := sess.authenticate(ctx); err != nil {
		return err
	}

	srv := tool.NewServer(sess.svc)

	if serveStdio {
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			return fmt.Errorf("srv.Run failed: %w", err)
		}
		return nil
	}

	sess.mux.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return srv
	}, nil))

	fmt.Printf("MCP endpoint ready at http://%s/mcp\n", sess.ln.Addr().String())

	select {
	case <-ctx.Done():
		return nil
	case err := <-sess.errCh:
		return err
	}
}
