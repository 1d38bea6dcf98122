package tool

import (
	"context"
	"fmt"
)

// ListRecentRequest holds arguments for the list_recent_emails tool.
type ListRecentRequest struct {
	Count int `json:"count,omitempty" jsonschema:"number of emails to retrieve (default 5, max 20)"`
}

// listRecent fetches the newest inbox messages and renders a numbered summary.
// The fetched window becomes the turn's snapshot for get_email_details.
func (ts *ToolSet) listRecent(ctx context.Context, count int) (string, error) {
	count = clampCount(count, maxListResults)

	emails, err := ts.svc.GetRecentEmails(ctx, count)
	if err != nil {
		return "", fmt.Errorf("svc.GetRecentEmails failed: %w", err)
	}

	ts.snapshot = emails

	if len(emails) == 0 {
		return "No emails found.", nil
	}

	header := fmt.Sprintf("Found %d recent emails:", len(emails))

	return renderSummaries(header, emails), nil
}
