package tool

import (
	"context"
	"fmt"
)

// EmailDetailsRequest holds arguments for the get_email_details tool.
type EmailDetailsRequest struct {
	EmailIndex int `json:"email_index" jsonschema:"1-based index of the email in the recent listing"`
}

// emailDetails resolves a 1-based index against the turn's recent-window
// snapshot, fetching the window once if no listing ran yet. An out-of-range
// index renders an explanatory text naming the valid range, never an error.
func (ts *ToolSet) emailDetails(ctx context.Context, index int) (string, error) {
	if ts.snapshot == nil {
		emails, err := ts.svc.GetRecentEmails(ctx, maxListResults)
		if err != nil {
			return "", fmt.Errorf("svc.GetRecentEmails failed: %w", err)
		}
		ts.snapshot = emails
	}

	if index < 1 || index > len(ts.snapshot) {
		return fmt.Sprintf("Email index %d not found. Available: 1-%d", index, len(ts.snapshot)), nil
	}

	return renderDetails(ts.snapshot[index-1]), nil
}
