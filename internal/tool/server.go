package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hal9000y/inbox-agent/internal/format"
)

// EmailSummary is the structured counterpart of a summary listing entry.
type EmailSummary struct {
	Index   int    `json:"index" jsonschema:"1-based position in the listing"`
	From    string `json:"from" jsonschema:"sender"`
	Subject string `json:"subject" jsonschema:"email subject"`
	Date    string `json:"date" jsonschema:"provider-formatted date"`
	Preview string `json:"preview" jsonschema:"first 100 characters of the body"`
}

// ListRecentResponse lists recent email summaries.
type ListRecentResponse struct {
	Emails       []EmailSummary `json:"emails" jsonschema:"email summaries in inbox order"`
	TotalResults int            `json:"total_results" jsonschema:"number of emails returned"`
}

// SearchResponse lists search-result summaries.
type SearchResponse struct {
	Query        string         `json:"query" jsonschema:"the query that was searched"`
	Emails       []EmailSummary `json:"emails" jsonschema:"email summaries in listing order"`
	TotalResults int            `json:"total_results" jsonschema:"number of emails returned"`
}

// EmailDetailsResponse carries one full email.
type EmailDetailsResponse struct {
	From    string   `json:"from" jsonschema:"sender"`
	To      string   `json:"to" jsonschema:"recipient"`
	Subject string   `json:"subject" jsonschema:"email subject"`
	Date    string   `json:"date" jsonschema:"provider-formatted date"`
	Labels  []string `json:"labels,omitempty" jsonschema:"provider label identifiers"`
	Body    string   `json:"body" jsonschema:"plain-text body, truncated to 1000 characters"`
}

// NewServer creates an MCP server exposing the email tools. The MCP surface is
// stateless: get_email_details resolves against a fresh recent window on every
// call, since sessions share the server.
func NewServer(svc mailSvc) *mcp.Server {
	h := &mcpHandlers{svc: svc}

	server := mcp.NewServer(&mcp.Implementation{Name: "inbox-agent", Version: "v1.0.0"}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ListRecentName,
		Description: listRecentDescription,
	}, h.ListRecent)

	mcp.AddTool(server, &mcp.Tool{
		Name:        SearchName,
		Description: searchDescription,
	}, h.Search)

	mcp.AddTool(server, &mcp.Tool{
		Name:        EmailDetailsName,
		Description: emailDetailsDescription,
	}, h.EmailDetails)

	return server
}

type mcpHandlers struct {
	svc mailSvc
}

func (h *mcpHandlers) ListRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListRecentRequest,
) (*mcp.CallToolResult, ListRecentResponse, error) {
	count := clampCount(input.Count, maxListResults)

	emails, err := h.svc.GetRecentEmails(ctx, count)
	if err != nil {
		return nil, ListRecentResponse{}, fmt.Errorf("svc.GetRecentEmails failed: %w", err)
	}

	return nil, ListRecentResponse{
		Emails:       summarize(emails),
		TotalResults: len(emails),
	}, nil
}

func (h *mcpHandlers) Search(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchRequest,
) (*mcp.CallToolResult, SearchResponse, error) {
	if input.Query == "" {
		return nil, SearchResponse{}, argumentErrorf("tool %s: required argument 'query' is missing", SearchName)
	}

	count := clampCount(input.Count, maxSearchResults)

	emails, err := h.svc.SearchEmails(ctx, input.Query, count)
	if err != nil {
		return nil, SearchResponse{}, fmt.Errorf("svc.SearchEmails failed: %w", err)
	}

	return nil, SearchResponse{
		Query:        input.Query,
		Emails:       summarize(emails),
		TotalResults: len(emails),
	}, nil
}

func (h *mcpHandlers) EmailDetails(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EmailDetailsRequest,
) (*mcp.CallToolResult, EmailDetailsResponse, error) {
	emails, err := h.svc.GetRecentEmails(ctx, maxListResults)
	if err != nil {
		return nil, EmailDetailsResponse{}, fmt.Errorf("svc.GetRecentEmails failed: %w", err)
	}

	if input.EmailIndex < 1 || input.EmailIndex > len(emails) {
		return nil, EmailDetailsResponse{}, argumentErrorf(
			"email index %d not found, available: 1-%d", input.EmailIndex, len(emails))
	}

	email := emails[input.EmailIndex-1]

	return nil, EmailDetailsResponse{
		From:    email.Sender,
		To:      email.Recipient,
		Subject: email.Subject,
		Date:    email.Date,
		Labels:  email.Labels,
		Body:    email.Body,
	}, nil
}

func summarize(emails []format.Email) []EmailSummary {
	summaries := make([]EmailSummary, 0, len(emails))
	for i, email := range emails {
		summaries = append(summaries, EmailSummary{
			Index:   i + 1,
			From:    email.Sender,
			Subject: email.Subject,
			Date:    email.Date,
			Preview: format.Truncate(email.Body, previewLen),
		})
	}
	return summaries
}
