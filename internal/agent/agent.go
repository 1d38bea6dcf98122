package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hal9000y/inbox-agent/internal/auth"
	"github.com/hal9000y/inbox-agent/internal/format"
	"github.com/hal9000y/inbox-agent/internal/tool"
)

// ErrNotConverged indicates the iteration budget ran out before the backend
// produced a final answer. Never returned alongside a partial answer.
var ErrNotConverged = errors.New("agent did not converge within the iteration budget")

// Defaults applied when Config fields are zero.
const (
	DefaultMaxIterations    = 10
	DefaultObservationLimit = 4000
)

const systemPrompt = `You are an email assistant with read-only access to the user's Gmail inbox.
Use the available tools to look up emails before answering. Answer concisely,
based only on what the tools returned. If a tool reports an error, adjust the
arguments and try again or explain the problem to the user.`

// Config bounds one agent's loop.
type Config struct {
	// MaxIterations caps Thinking steps per turn.
	MaxIterations int
	// ObservationLimit caps each tool observation's length in runes, keeping
	// the accumulated transcript bounded across iterations.
	ObservationLimit int
}

// Agent drives one conversation at a time. Backend and tools are injected so
// separate conversations or test doubles never share state.
type Agent struct {
	backend Backend
	tools   *tool.ToolSet
	cfg     Config
}

// New creates an Agent. Zero Config fields fall back to defaults.
func New(backend Backend, tools *tool.ToolSet, cfg Config) *Agent {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.ObservationLimit <= 0 {
		cfg.ObservationLimit = DefaultObservationLimit
	}

	return &Agent{
		backend: backend,
		tools:   tools,
		cfg:     cfg,
	}
}

// Chat runs one conversation turn: Thinking, ToolDispatch and Observing repeat
// until the backend produces a final answer or the iteration budget runs out.
func (a *Agent) Chat(ctx context.Context, utterance string) (string, error) {
	a.tools.Reset()

	msgs := []Message{
		{Role: RoleSystem, Content: systemPrompt},
		{Role: RoleUser, Content: utterance},
	}

	for i := 0; i < a.cfg.MaxIterations; i++ {
		completion, err := a.backend.Complete(ctx, msgs, a.tools.Definitions())
		if err != nil {
			return "", fmt.Errorf("backend.Complete failed: %w", err)
		}

		if len(completion.ToolCalls) == 0 {
			return completion.Content, nil
		}

		msgs = append(msgs, Message{
			Role:      RoleAssistant,
			Content:   completion.Content,
			ToolCalls: completion.ToolCalls,
		})

		for _, call := range completion.ToolCalls {
			observation, err := a.dispatch(ctx, call)
			if err != nil {
				return "", err
			}

			msgs = append(msgs, Message{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Content:    format.Truncate(observation, a.cfg.ObservationLimit),
			})
		}
	}

	return "", ErrNotConverged
}

// dispatch executes one tool call. Recoverable failures (bad arguments,
// provider errors) come back as observation text so the backend can
// self-correct; authentication failures abort the session.
func (a *Agent) dispatch(ctx context.Context, call ToolCall) (string, error) {
	slog.Debug("dispatching tool", "tool", call.Name)

	observation, err := a.tools.Dispatch(ctx, call.Name, json.RawMessage(call.Arguments))
	if err == nil {
		return observation, nil
	}

	if errors.Is(err, auth.ErrCredentialsUnavailable) || errors.Is(err, auth.ErrTokenNotSet) {
		return "", fmt.Errorf("tools.Dispatch failed: %w", err)
	}

	slog.Warn("tool call failed", "tool", call.Name, "error", err)

	return fmt.Sprintf("Tool error: %v", err), nil
}
