package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/tools"
)

const DefaultOpenAIModel = openai.ChatModelGPT4oMini

// NewOpenAIClient returns a client. Without option.WithAPIKey the key is read from
// OPENAI_API_KEY.
func NewOpenAIClient(opts ...option.RequestOption) *openai.Client {
	c := openai.NewClient(opts...)
	return &c
}

// OpenAI is a model client for the Chat Completions API. The cache boundary is not
// sent; that API caches stable prefixes on its own.
type OpenAI struct {
	client *openai.Client
	settings
}

func NewOpenAI(client *openai.Client, opts ...Option) *OpenAI {
	return &OpenAI{client: client, settings: newSettings(DefaultOpenAIModel, opts)}
}

func (o *OpenAI) String() string { return NameOpenAI + "/" + o.model }

// Complete sends one assembled context and returns text first, then tool calls in the
// order the API listed them.
func (o *OpenAI) Complete(ctx context.Context, pc prompt.Context) ([]conversation.Block, error) {
	params, err := o.params(pc)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", ErrModelClient, err)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %w", ErrModelClient, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai: no choices returned", ErrModelClient)
	}

	o.logger.Debug("model response",
		zap.String("provider", NameOpenAI),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int64("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int64("completion_tokens", resp.Usage.CompletionTokens),
		zap.Int64("cached_tokens", resp.Usage.PromptTokensDetails.CachedTokens),
	)

	msg := resp.Choices[0].Message
	blocks := make([]conversation.Block, 0, len(msg.ToolCalls)+1)
	if msg.Content != "" {
		blocks = append(blocks, conversation.Text(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		blocks = append(blocks, conversation.Invocation(tc.ID, tc.Function.Name, json.RawMessage(tc.Function.Arguments)))
	}
	return blocks, nil
}

func (o *OpenAI) params(pc prompt.Context) (openai.ChatCompletionNewParams, error) {
	fns, err := openaiTools(pc.Tools)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}
	params := openai.ChatCompletionNewParams{
		Model:               o.model,
		Messages:            openaiMessages(pc.SystemText, pc.History),
		Temperature:         openai.Float(o.temperature),
		MaxCompletionTokens: openai.Int(o.maxTokens),
	}
	if len(fns) > 0 {
		params.Tools = fns
	}
	return params, nil
}

func openaiTools(defs []tools.ToolDefinition) ([]openai.ChatCompletionToolParam, error) {
	out := make([]openai.ChatCompletionToolParam, 0, len(defs))
	for _, t := range defs {
		schema, err := t.SchemaMap()
		if err != nil {
			return nil, fmt.Errorf("schema for %s: %w", t.Name, err)
		}
		schema["type"] = "object"
		out = append(out, openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  schema,
			},
		})
	}
	return out, nil
}

// openaiMessages maps the transcript. Each tool outcome becomes its own tool message
// directly after the assistant message that issued the call.
func openaiMessages(system string, turns []conversation.Turn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}
	for _, t := range turns {
		switch t.Role {
		case conversation.RoleUser:
			out = append(out, openai.UserMessage(t.PlainText()))
		case conversation.RoleAssistant:
			msg := openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{Role: "assistant"}}
			switch text := t.PlainText(); {
			case text != "":
				msg = openai.AssistantMessage(text)
			case !t.HasInvocations():
				msg = openai.AssistantMessage(emptyReplyText)
			}
			for _, inv := range t.Invocations() {
				msg.OfAssistant.ToolCalls = append(msg.OfAssistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID:   inv.ID,
					Type: "function",
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      inv.Name,
						Arguments: string(inv.Arguments),
					},
				})
			}
			out = append(out, msg)
		case conversation.RoleToolResult:
			for _, b := range t.Content {
				out = append(out, openai.ToolMessage(b.Payload, b.InvocationID))
			}
		}
	}
	return out
}
