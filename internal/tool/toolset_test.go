package tool_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/inbox-agent/internal/format"
	"github.com/hal9000y/inbox-agent/internal/gservice"
	"github.com/hal9000y/inbox-agent/internal/tool"
)

type mailSvcMock struct {
	GetRecentEmailsFunc func(ctx context.Context, count int) ([]format.Email, error)
	SearchEmailsFunc    func(ctx context.Context, query string, count int) ([]format.Email, error)
}

func (m *mailSvcMock) GetRecentEmails(ctx context.Context, count int) ([]format.Email, error) {
	return m.GetRecentEmailsFunc(ctx, count)
}

func (m *mailSvcMock) SearchEmails(ctx context.Context, query string, count int) ([]format.Email, error) {
	return m.SearchEmailsFunc(ctx, query, count)
}

func fakeEmails(n int) []format.Email {
	emails := make([]format.Email, n)
	for i := range emails {
		emails[i] = format.Email{
			ID:      fmt.Sprintf("id-%d", i+1),
			Subject: fmt.Sprintf("Subject %d", i+1),
			Sender:  fmt.Sprintf("sender%d@example.com", i+1),
			Date:    "Mon, 5 Jan 2026 10:00:00 +0000",
			Body:    fmt.Sprintf("body %d", i+1),
		}
	}
	return emails
}

func TestListRecentClampsCount(t *testing.T) {
	cases := []struct {
		name     string
		args     string
		expected int
	}{
		{name: "default on missing count", args: `{}`, expected: 5},
		{name: "default on zero", args: `{"count":0}`, expected: 5},
		{name: "default on negative", args: `{"count":-3}`, expected: 5},
		{name: "passes through in range", args: `{"count":12}`, expected: 12},
		{name: "caps at twenty", args: `{"count":100}`, expected: 20},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got int
			svc := &mailSvcMock{
				GetRecentEmailsFunc: func(_ context.Context, count int) ([]format.Email, error) {
					got = count
					return nil, nil
				},
			}

			ts := tool.NewToolSet(svc)
			out, err := ts.Dispatch(context.Background(), tool.ListRecentName, json.RawMessage(tc.args))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, "No emails found.", out)
		})
	}
}

func TestSearchClampsCountAtTen(t *testing.T) {
	var got int
	svc := &mailSvcMock{
		SearchEmailsFunc: func(_ context.Context, _ string, count int) ([]format.Email, error) {
			got = count
			return nil, nil
		},
	}

	ts := tool.NewToolSet(svc)
	out, err := ts.Dispatch(context.Background(), tool.SearchName, json.RawMessage(`{"query":"is:unread","count":50}`))
	require.NoError(t, err)
	assert.Equal(t, 10, got)
	assert.Equal(t, "No emails found for query: is:unread", out)
}

func TestSearchRendersMatchesInOrder(t *testing.T) {
	svc := &mailSvcMock{
		SearchEmailsFunc: func(_ context.Context, query string, _ int) ([]format.Email, error) {
			assert.Equal(t, "from:alice@example.com", query)
			return fakeEmails(2), nil
		},
	}

	ts := tool.NewToolSet(svc)
	out, err := ts.Dispatch(context.Background(), tool.SearchName, json.RawMessage(`{"query":"from:alice@example.com"}`))
	require.NoError(t, err)

	assert.Contains(t, out, `Found 2 emails matching "from:alice@example.com":`)
	assert.Contains(t, out, "1. From: sender1@example.com")
	assert.Contains(t, out, "2. From: sender2@example.com")
	assert.Contains(t, out, "Subject: Subject 1")
	assert.Contains(t, out, "Preview: body 1...")
}

func TestSearchRequiresQuery(t *testing.T) {
	ts := tool.NewToolSet(&mailSvcMock{})

	_, err := ts.Dispatch(context.Background(), tool.SearchName, json.RawMessage(`{"count":3}`))
	require.Error(t, err)

	var argErr *tool.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Contains(t, err.Error(), "query")
}

func TestDispatchUnknownTool(t *testing.T) {
	ts := tool.NewToolSet(&mailSvcMock{})

	_, err := ts.Dispatch(context.Background(), "delete_all_emails", nil)
	require.Error(t, err)

	var argErr *tool.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "unknown tool: delete_all_emails", err.Error())
}

func TestDispatchMalformedArguments(t *testing.T) {
	ts := tool.NewToolSet(&mailSvcMock{})

	_, err := ts.Dispatch(context.Background(), tool.ListRecentName, json.RawMessage(`{"count":`))
	require.Error(t, err)

	var argErr *tool.ArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestDispatchPropagatesProviderError(t *testing.T) {
	provErr := &gservice.ProviderError{Op: "messages.list", Err: errors.New("503")}
	svc := &mailSvcMock{
		GetRecentEmailsFunc: func(context.Context, int) ([]format.Email, error) {
			return nil, provErr
		},
	}

	ts := tool.NewToolSet(svc)
	_, err := ts.Dispatch(context.Background(), tool.ListRecentName, nil)
	require.Error(t, err)

	var pe *gservice.ProviderError
	assert.ErrorAs(t, err, &pe)
}

func TestEmailDetailsUsesListingSnapshot(t *testing.T) {
	calls := 0
	svc := &mailSvcMock{
		GetRecentEmailsFunc: func(_ context.Context, count int) ([]format.Email, error) {
			calls++
			return fakeEmails(3), nil
		},
	}

	ts := tool.NewToolSet(svc)

	_, err := ts.Dispatch(context.Background(), tool.ListRecentName, json.RawMessage(`{"count":3}`))
	require.NoError(t, err)

	out, err := ts.Dispatch(context.Background(), tool.EmailDetailsName, json.RawMessage(`{"email_index":2}`))
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "details must resolve against the snapshot, not refetch")
	assert.Contains(t, out, "Email Details:")
	assert.Contains(t, out, "From: sender2@example.com")
	assert.Contains(t, out, "Subject: Subject 2")
	assert.Contains(t, out, "Body:\nbody 2")
}

func TestEmailDetailsFetchesWindowWhenNoListingRan(t *testing.T) {
	var got int
	svc := &mailSvcMock{
		GetRecentEmailsFunc: func(_ context.Context, count int) ([]format.Email, error) {
			got = count
			return fakeEmails(1), nil
		},
	}

	ts := tool.NewToolSet(svc)
	out, err := ts.Dispatch(context.Background(), tool.EmailDetailsName, json.RawMessage(`{"email_index":1}`))
	require.NoError(t, err)
	assert.Equal(t, 20, got)
	assert.Contains(t, out, "From: sender1@example.com")
}

func TestEmailDetailsOutOfRange(t *testing.T) {
	svc := &mailSvcMock{
		GetRecentEmailsFunc: func(context.Context, int) ([]format.Email, error) {
			return fakeEmails(3), nil
		},
	}

	ts := tool.NewToolSet(svc)

	for _, index := range []int{0, -1, 4, 99} {
		out, err := ts.Dispatch(context.Background(), tool.EmailDetailsName,
			json.RawMessage(fmt.Sprintf(`{"email_index":%d}`, index)))
		require.NoError(t, err, "out-of-range index must render text, not fail")
		assert.Equal(t, fmt.Sprintf("Email index %d not found. Available: 1-3", index), out)
	}
}

func TestResetClearsSnapshot(t *testing.T) {
	calls := 0
	svc := &mailSvcMock{
		GetRecentEmailsFunc: func(context.Context, int) ([]format.Email, error) {
			calls++
			return fakeEmails(2), nil
		},
	}

	ts := tool.NewToolSet(svc)

	_, err := ts.Dispatch(context.Background(), tool.ListRecentName, nil)
	require.NoError(t, err)

	ts.Reset()

	_, err = ts.Dispatch(context.Background(), tool.EmailDetailsName, json.RawMessage(`{"email_index":1}`))
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "Reset must force a fresh window for the next details call")
}

func TestDefinitions(t *testing.T) {
	ts := tool.NewToolSet(&mailSvcMock{})

	defs := ts.Definitions()
	require.Len(t, defs, 3)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Description)
		assert.Equal(t, "object", def.Parameters["type"])
	}
	assert.Equal(t, []string{tool.ListRecentName, tool.SearchName, tool.EmailDetailsName}, names)

	assert.Equal(t, []string{"query"}, defs[1].Parameters["required"])
	assert.Equal(t, []string{"email_index"}, defs[2].Parameters["required"])
}
