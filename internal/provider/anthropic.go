package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/petasbytes/go-chatbot/internal/conversation"
	"github.com/petasbytes/go-chatbot/internal/prompt"
	"github.com/petasbytes/go-chatbot/tools"
)

const DefaultModel = anthropic.ModelClaude3_5Sonnet20241022
const APIVersion = "2023-06-01"

// NewAnthropicClient returns a client. Without option.WithAPIKey the key is read from
// ANTHROPIC_API_KEY.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Anthropic is a model client for the Messages API.
type Anthropic struct {
	client *anthropic.Client
	settings
}

func NewAnthropic(client *anthropic.Client, opts ...Option) *Anthropic {
	return &Anthropic{client: client, settings: newSettings(string(DefaultModel), opts)}
}

func (a *Anthropic) String() string { return NameAnthropic + "/" + a.model }

// Complete sends one assembled context and returns the response blocks in order.
func (a *Anthropic) Complete(ctx context.Context, pc prompt.Context) ([]conversation.Block, error) {
	params := a.params(pc)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: anthropic: %w", ErrModelClient, err)
	}

	a.logger.Debug("model response",
		zap.String("provider", NameAnthropic),
		zap.String("stop_reason", string(msg.StopReason)),
		zap.Int64("input_tokens", msg.Usage.InputTokens),
		zap.Int64("output_tokens", msg.Usage.OutputTokens),
		zap.Int64("cache_creation_input_tokens", msg.Usage.CacheCreationInputTokens),
		zap.Int64("cache_read_input_tokens", msg.Usage.CacheReadInputTokens),
	)

	blocks := make([]conversation.Block, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			blocks = append(blocks, conversation.Text(v.Text))
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through so it is replayed verbatim.
			blocks = append(blocks, conversation.Invocation(v.ID, v.Name, json.RawMessage(v.JSON.Input.Raw())))
		}
	}
	return blocks, nil
}

func (a *Anthropic) params(pc prompt.Context) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Temperature: anthropic.Float(a.temperature),
		Messages:    anthropicMessages(pc.History),
	}
	if len(pc.Tools) > 0 {
		params.Tools = anthropicTools(pc.Tools)
	}
	if pc.SystemText != "" {
		params.System = []anthropic.TextBlockParam{{Text: pc.SystemText}}
	}

	// Everything up to the boundary segment is a stable prefix; mark its last block.
	switch pc.CacheBoundary {
	case prompt.SegmentTools:
		if n := len(params.Tools); n > 0 {
			params.Tools[n-1].OfTool.CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
	case prompt.SegmentSystem:
		if len(params.System) > 0 {
			params.System[0].CacheControl = anthropic.NewCacheControlEphemeralParam()
		}
	case prompt.SegmentHistory:
		if n := len(params.Messages); n > 0 {
			content := params.Messages[n-1].Content
			if m := len(content); m > 0 {
				if cc := content[m-1].GetCacheControl(); cc != nil {
					*cc = anthropic.NewCacheControlEphemeralParam()
				}
			}
		}
	}
	return params
}

func anthropicTools(defs []tools.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, t := range defs {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// anthropicMessages maps the transcript onto Messages API roles. Tool results travel as a
// user message of tool_result blocks.
func anthropicMessages(turns []conversation.Turn) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		content := make([]anthropic.ContentBlockParamUnion, 0, len(t.Content))
		for _, b := range t.Content {
			switch b.Kind {
			case conversation.BlockText:
				// The API rejects empty text blocks.
				if b.Text != "" {
					content = append(content, anthropic.NewTextBlock(b.Text))
				}
			case conversation.BlockToolInvocation:
				content = append(content, anthropic.NewToolUseBlock(b.ID, b.Arguments, b.Name))
			case conversation.BlockToolOutcome:
				content = append(content, anthropic.NewToolResultBlock(b.InvocationID, b.Payload, b.IsError))
			}
		}
		if len(content) == 0 {
			content = append(content, anthropic.NewTextBlock(emptyReplyText))
		}
		if t.Role == conversation.RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(content...))
		} else {
			out = append(out, anthropic.NewUserMessage(content...))
		}
	}
	return out
}
