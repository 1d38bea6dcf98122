// Package format converts raw Gmail API payloads into the uniform Email record.
package format

import (
	"encoding/base64"

	gmail "google.golang.org/api/gmail/v1"
)

// MaxBodyLen caps the normalized body length so no consumer ever receives an
// unbounded body.
const MaxBodyLen = 1000

// Placeholder values for missing headers.
const (
	NoSubject = "No Subject"
	Unknown   = "Unknown"
)

// Email is the uniform message record. Immutable once constructed.
type Email struct {
	ID        string
	ThreadID  string
	Subject   string
	Sender    string
	Recipient string
	Body      string
	Date      string
	Labels    []string
}

// Normalize converts a raw Gmail message into an Email. Missing headers fall
// back to placeholders and malformed bodies normalize to the empty string;
// Normalize never fails.
func Normalize(msg *gmail.Message) Email {
	email := Email{
		ID:        msg.Id,
		ThreadID:  msg.ThreadId,
		Subject:   NoSubject,
		Sender:    Unknown,
		Recipient: Unknown,
		Date:      Unknown,
		Labels:    msg.LabelIds,
	}

	if msg.Payload == nil {
		return email
	}

	// Last occurrence wins on duplicated headers.
	headers := make(map[string]string, len(msg.Payload.Headers))
	for _, h := range msg.Payload.Headers {
		if h != nil {
			headers[h.Name] = h.Value
		}
	}

	if v, ok := headers["Subject"]; ok {
		email.Subject = v
	}
	if v, ok := headers["From"]; ok {
		email.Sender = v
	}
	if v, ok := headers["To"]; ok {
		email.Recipient = v
	}
	if v, ok := headers["Date"]; ok {
		email.Date = v
	}

	email.Body = Truncate(extractBody(msg.Payload), MaxBodyLen)

	return email
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}

// extractBody selects the first text/plain part of a multipart payload, or
// the payload body itself for single-part text/plain messages.
func extractBody(payload *gmail.MessagePart) string {
	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part == nil || part.MimeType != "text/plain" {
				continue
			}
			if part.Body == nil || part.Body.Data == "" {
				continue
			}
			return decodeBase64URL(part.Body.Data)
		}
		return ""
	}

	if payload.MimeType != "text/plain" || payload.Body == nil || payload.Body.Data == "" {
		return ""
	}

	return decodeBase64URL(payload.Body.Data)
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	return string(decoded)
}
