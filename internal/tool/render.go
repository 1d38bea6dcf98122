package tool

import (
	"fmt"
	"strings"

	"github.com/hal9000y/inbox-agent/internal/format"
)

// previewLen bounds the body excerpt in summary listings.
const previewLen = 100

// renderSummaries renders emails as a numbered, human-readable listing. The
// consuming backend only accepts text, so results are never structured data.
func renderSummaries(header string, emails []format.Email) string {
	var b strings.Builder

	b.WriteString(header)
	b.WriteString("\n\n")

	for i, email := range emails {
		fmt.Fprintf(&b, "%d. From: %s\n", i+1, email.Sender)
		fmt.Fprintf(&b, "   Subject: %s\n", email.Subject)
		fmt.Fprintf(&b, "   Date: %s\n", email.Date)
		fmt.Fprintf(&b, "   Preview: %s...\n\n", format.Truncate(email.Body, previewLen))
	}

	return b.String()
}

// renderDetails renders one email in full.
func renderDetails(email format.Email) string {
	var b strings.Builder

	b.WriteString("Email Details:\n")
	fmt.Fprintf(&b, "From: %s\n", email.Sender)
	fmt.Fprintf(&b, "To: %s\n", email.Recipient)
	fmt.Fprintf(&b, "Subject: %s\n", email.Subject)
	fmt.Fprintf(&b, "Date: %s\n", email.Date)
	fmt.Fprintf(&b, "Labels: %s\n\n", strings.Join(email.Labels, ", "))
	fmt.Fprintf(&b, "Body:\n%s\n", email.Body)

	return b.String()
}
