package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/hal9000y/inbox-agent/internal/tool"
)

// OpenAIBackend generates completions through the OpenAI chat API with
// function tools attached.
type OpenAIBackend struct {
	client openai.Client
	model  shared.ChatModel
}

// NewOpenAIBackend creates a backend for the given API key and model name.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	return &OpenAIBackend{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  shared.ChatModel(model),
	}
}

// Complete sends the transcript and tool schemas and maps the response back to
// the loop's neutral Completion form.
func (b *OpenAIBackend) Complete(
	ctx context.Context,
	msgs []Message,
	tools []tool.Definition,
) (*Completion, error) {
	params := openai.ChatCompletionNewParams{
		Model:    b.model,
		Messages: toChatMessages(msgs),
		Tools:    toChatTools(tools),
	}

	completion, err := b.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Chat.Completions.New failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("completion contains no choices")
	}

	msg := completion.Choices[0].Message

	out := &Completion{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, nil
}

func toChatMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))

	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		case RoleAssistant:
			out = append(out, toAssistantMessage(m))
		}
	}

	return out
}

func toAssistantMessage(m Message) openai.ChatCompletionMessageParamUnion {
	asst := openai.ChatCompletionAssistantMessageParam{}

	if m.Content != "" {
		asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
			OfString: openai.String(m.Content),
		}
	}

	for _, tc := range m.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: tc.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      tc.Name,
				Arguments: tc.Arguments,
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

func toChatTools(defs []tool.Definition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))

	for _, d := range defs {
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        d.Name,
				Description: openai.String(d.Description),
				Parameters:  shared.FunctionParameters(d.Parameters),
			},
		})
	}

	return out
}
