package tool

import (
	"context"
	"fmt"
)

// SearchRequest holds arguments for the search_emails tool.
type SearchRequest struct {
	Query string `json:"query" jsonschema:"Gmail search query"`
	Count int    `json:"count,omitempty" jsonschema:"number of results to return (default 5, max 10)"`
}

// search runs a Gmail query and renders the matches in listing order.
func (ts *ToolSet) search(ctx context.Context, query string, count int) (string, error) {
	count = clampCount(count, maxSearchResults)

	emails, err := ts.svc.SearchEmails(ctx, query, count)
	if err != nil {
		return "", fmt.Errorf("svc.SearchEmails failed: %w", err)
	}

	if len(emails) == 0 {
		return fmt.Sprintf("No emails found for query: %s", query), nil
	}

	header := fmt.Sprintf("Found %d emails matching %q:", len(emails), query)

	return renderSummaries(header, emails), nil
}
