// Package gservice wraps the Gmail API behind list/get/search operations that
// return normalized Email records.
package gservice

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/hal9000y/inbox-agent/internal/auth"
	"github.com/hal9000y/inbox-agent/internal/format"
)

const gmailUserID = "me"

// NewGmail creates a Gmail service bound to an OAuth config and token manager.
func NewGmail(cfg *oauth2.Config, tok *auth.Token) *GMail {
	return &GMail{
		cfg: cfg,
		tok: tok,
	}
}

// GMail exposes inbox operations over the Gmail REST API. Credentials stay
// inside the token manager; callers only ever see Email records.
type GMail struct {
	cfg *oauth2.Config
	tok *auth.Token
}

// ListMessages returns up to maxResults lightweight message references matching
// the query. An empty query lists the inbox in provider default order.
func (m *GMail) ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return nil, fmt.Errorf("newSvc failed: %w", err)
	}

	call := svc.Users.Messages.List(gmailUserID).
		Q(query).
		MaxResults(maxResults).
		Context(ctx)

	result, err := call.Do()
	if err != nil {
		return nil, &ProviderError{Op: "messages.list", Err: err}
	}

	return result.Messages, nil
}

// GetMessage fetches the full payload of one message and normalizes it.
func (m *GMail) GetMessage(ctx context.Context, msgID string) (format.Email, error) {
	svc, err := m.newSvc(ctx)
	if err != nil {
		return format.Email{}, fmt.Errorf("newSvc failed: %w", err)
	}

	msg, err := svc.Users.Messages.Get(gmailUserID, msgID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == 404 {
			return format.Email{}, fmt.Errorf("%w: %s", ErrMessageNotFound, msgID)
		}
		return format.Email{}, &ProviderError{Op: "messages.get", Err: err}
	}

	return format.Normalize(msg), nil
}

// GetRecentEmails lists the count newest inbox messages and fetches each one
// concurrently, returning them in listing order.
func (m *GMail) GetRecentEmails(ctx context.Context, count int) ([]format.Email, error) {
	return m.SearchEmails(ctx, "", count)
}

// SearchEmails lists messages matching the query and expands each reference to
// a full Email. Fetches run concurrently; the result preserves listing order
// regardless of completion order.
func (m *GMail) SearchEmails(ctx context.Context, query string, count int) ([]format.Email, error) {
	refs, err := m.ListMessages(ctx, query, int64(count))
	if err != nil {
		return nil, fmt.Errorf("ListMessages failed: %w", err)
	}

	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref != nil && ref.Id != "" {
			ids = append(ids, ref.Id)
		}
	}

	return fetchOrdered(ctx, ids, m.GetMessage)
}

// fetchOrdered fetches every id concurrently and reassembles results in the
// order of the id list.
func fetchOrdered(
	ctx context.Context,
	ids []string,
	get func(context.Context, string) (format.Email, error),
) ([]format.Email, error) {
	emails := make([]format.Email, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			email, err := get(gctx, id)
			if err != nil {
				return fmt.Errorf("get message %s failed: %w", id, err)
			}
			emails[i] = email
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return emails, nil
}

func (m *GMail) newSvc(ctx context.Context) (*gmail.Service, error) {
	if err := m.tok.EnsureValid(ctx); err != nil {
		return nil, fmt.Errorf("tok.EnsureValid failed: %w", err)
	}

	t, err := m.tok.OAuthToken()
	if err != nil {
		return nil, fmt.Errorf("tok.OAuthToken failed: %w", err)
	}

	clt := m.cfg.Client(ctx, t)

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(clt))
	if err != nil {
		return nil, fmt.Errorf("gmail.NewService failed: %w", err)
	}

	return svc, nil
}
