// Package agent implements the tool-calling loop: given a user utterance it
// repeatedly asks a text-generation backend to either call an email tool or
// produce the final answer.
package agent

import (
	"context"

	"github.com/hal9000y/inbox-agent/internal/tool"
)

// Role identifies who produced a transcript message.
type Role string

// Transcript roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a backend request to invoke one named tool. Arguments is the
// raw JSON object the backend supplied.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one entry of a conversation turn's transcript. Tool messages
// carry the ToolCallID they answer; assistant messages may carry tool calls.
type Message struct {
	Role       Role
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

// Completion is the backend's answer for one Thinking step: final text when
// ToolCalls is empty, otherwise the tool invocations to execute.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
}

// Backend is the text-generation capability the loop drives. Implementations
// see the full transcript and the declared tool schemas on every call.
type Backend interface {
	Complete(ctx context.Context, msgs []Message, tools []tool.Definition) (*Completion, error)
}
