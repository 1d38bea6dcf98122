package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/hal9000y/inbox-agent/internal/auth"
	"github.com/hal9000y/inbox-agent/internal/config"
	"github.com/hal9000y/inbox-agent/internal/gservice"
)

const grantTimeout = 3 * time.Minute

// mailSession wires settings, the OAuth token manager, the Gmail service and
// the local HTTP listener that hosts the interactive grant flow.
type mailSession struct {
	settings *config.Settings
	tok      *auth.Token
	svc      *gservice.GMail
	mux      *http.ServeMux
	ln       net.Listener
	stopHTTP func()
	errCh    <-chan error
}

// newMailSession loads settings, binds the local listener and mounts the
// OAuth handler. The HTTP server starts immediately so a grant redirect can
// land at any time.
func newMailSession(oauthAddr string) (*mailSession, error) {
	settings, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("config.Load failed: %w", err)
	}

	ln, err := net.Listen("tcp", oauthAddr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen failed: %w", err)
	}

	redirectURL := fmt.Sprintf("http://%s/oauth", ln.Addr().String())

	cfg, err := auth.LoadConfig(settings.CredentialsPath, redirectURL)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("auth.LoadConfig failed: %w", err)
	}

	tok, err := auth.NewToken(cfg, settings.TokenPath)
	if err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("auth.NewToken failed: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/oauth", auth.NewHTTPHandler(tok))

	srv := &http.Server{Handler: mux}
	stopHTTP, errCh := serveHTTP(srv, ln)

	return &mailSession{
		settings: settings,
		tok:      tok,
		svc:      gservice.NewGmail(cfg, tok),
		mux:      mux,
		ln:       ln,
		stopHTTP: stopHTTP,
		errCh:    errCh,
	}, nil
}

// authenticate ensures a valid token, running the interactive grant flow in
// the browser when no usable token exists.
func (s *mailSession) authenticate(ctx context.Context) error {
	err := s.tok.EnsureValid(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, auth.ErrTokenNotSet) {
		return fmt.Errorf("tok.EnsureValid failed: %w", err)
	}

	openBrowser(fmt.Sprintf("http://%s/oauth?redirect=1", s.ln.Addr().String()))
	fmt.Printf("Waiting for Google authorization in the browser (http://%s/oauth?redirect=1)...\n", s.ln.Addr().String())

	return s.waitForGrant(ctx)
}

func (s *mailSession) waitForGrant(ctx context.Context) error {
	deadline := time.Now().Add(grantTimeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// A mere held token is not enough: a stale token without a
			// refresh token sits on disk until the grant replaces it.
			err := s.tok.EnsureValid(ctx)
			if err == nil {
				return nil
			}
			if !errors.Is(err, auth.ErrTokenNotSet) {
				return fmt.Errorf("tok.EnsureValid failed: %w", err)
			}
			if time.Now().After(deadline) {
				return errors.New("timed out waiting for authorization grant")
			}
		}
	}
}

func (s *mailSession) close() {
	s.stopHTTP()

	if err := s.tok.Persist(); err != nil {
		slog.Error("tok.Persist failed", "error", err)
	}
}

func serveHTTP(srv *http.Server, ln net.Listener) (func(), <-chan error) {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		slog.Info("starting http server", "addr", ln.Addr().String())

		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("srv.Serve failed: %w", err)
			slog.Error("http server stopped", "error", err)
			errCh <- err
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("srv.Shutdown failed", "error", err)
		}

		<-errCh
		slog.Info("http server stopped")
	}, errCh
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		slog.Warn("could not open browser automatically, please open the link manually", "url", url, "error", err)
	}
}
