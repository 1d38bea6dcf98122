// Package tool defines the email tools the agent can invoke: list recent,
// search, and get-by-index. The same tools are exposed over MCP in serve mode.
package tool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hal9000y/inbox-agent/internal/format"
)

// Tool names. The names and descriptions are part of the contract: the
// generation backend selects tools based on them.
const (
	ListRecentName   = "list_recent_emails"
	SearchName       = "search_emails"
	EmailDetailsName = "get_email_details"
)

const (
	listRecentDescription   = "List recent emails from the Gmail inbox"
	searchDescription       = "Search emails in Gmail using Gmail search syntax"
	emailDetailsDescription = "Get full content of a specific email by its 1-based index in the most recent listing"
)

// Hard caps on caller-supplied counts, bounding provider cost per call.
const (
	maxListResults   = 20
	maxSearchResults = 10
	defaultResults   = 5
)

// ArgumentError reports backend-supplied arguments that could not be applied:
// unknown tool name, malformed JSON, or a missing required argument. The agent
// loop feeds it back as an observation instead of aborting the turn.
type ArgumentError struct {
	msg string
}

func (e *ArgumentError) Error() string {
	return e.msg
}

func argumentErrorf(msg string, args ...any) *ArgumentError {
	return &ArgumentError{msg: fmt.Sprintf(msg, args...)}
}

// Definition describes one tool to the generation backend.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type mailSvc interface {
	GetRecentEmails(ctx context.Context, count int) ([]format.Email, error)
	SearchEmails(ctx context.Context, query string, count int) ([]format.Email, error)
}

// ToolSet holds the three email tools plus the per-turn recent-window snapshot
// that get_email_details indexes into. A ToolSet serves one conversation at a
// time; concurrent turns need separate instances.
type ToolSet struct {
	svc      mailSvc
	snapshot []format.Email
}

// NewToolSet creates a ToolSet backed by the given mail service.
func NewToolSet(svc mailSvc) *ToolSet {
	return &ToolSet{svc: svc}
}

// Reset clears the recent-window snapshot. The agent calls it at turn start so
// index-based lookups never resolve against a previous turn's listing.
func (ts *ToolSet) Reset() {
	ts.snapshot = nil
}

// Definitions returns the declared schemas of all tools, in registration order.
func (ts *ToolSet) Definitions() []Definition {
	return []Definition{
		{
			Name:        ListRecentName,
			Description: listRecentDescription,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"count": map[string]any{
						"type":        "integer",
						"description": "Number of emails to retrieve (default 5, max 20)",
					},
				},
			},
		},
		{
			Name:        SearchName,
			Description: searchDescription,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Gmail search query (e.g. 'from:alice@example.com', 'subject:meeting')",
					},
					"count": map[string]any{
						"type":        "integer",
						"description": "Number of results to return (default 5, max 10)",
					},
				},
				"required": []string{"query"},
			},
		},
		{
			Name:        EmailDetailsName,
			Description: emailDetailsDescription,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"email_index": map[string]any{
						"type":        "integer",
						"description": "1-based index of the email in the recent listing",
					},
				},
				"required": []string{"email_index"},
			},
		},
	}
}

// Dispatch invokes the named tool with raw JSON arguments and returns its
// rendered text. Unknown names and malformed arguments yield an ArgumentError;
// provider failures propagate for the caller to classify.
func (ts *ToolSet) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	switch name {
	case ListRecentName:
		var req ListRecentRequest
		if err := unmarshalArgs(args, &req); err != nil {
			return "", err
		}
		return ts.listRecent(ctx, req.Count)

	case SearchName:
		var req SearchRequest
		if err := unmarshalArgs(args, &req); err != nil {
			return "", err
		}
		if req.Query == "" {
			return "", argumentErrorf("tool %s: required argument 'query' is missing", SearchName)
		}
		return ts.search(ctx, req.Query, req.Count)

	case EmailDetailsName:
		var req EmailDetailsRequest
		if err := unmarshalArgs(args, &req); err != nil {
			return "", err
		}
		return ts.emailDetails(ctx, req.EmailIndex)

	default:
		return "", argumentErrorf("unknown tool: %s", name)
	}
}

func unmarshalArgs(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return argumentErrorf("malformed tool arguments: %v", err)
	}
	return nil
}

func clampCount(count, max int) int {
	if count <= 0 {
		return defaultResults
	}
	if count > max {
		return max
	}
	return count
}
