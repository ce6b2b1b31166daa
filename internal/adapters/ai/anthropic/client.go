package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/aicompanion/api/internal/core/domain"
	"github.com/aicompanion/api/internal/core/ports"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4096
)

// Client calls the Anthropic Messages API and decodes the structured JSON
// envelope the system prompt asks for.
type Client struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

func (c *Client) Complete(ctx context.Context, req *ports.ProviderRequest) (*ports.ProviderReply, error) {
	messages := make([]anthropic.MessageParam, 0, 2*len(req.History)+1)
	for _, turn := range req.History {
		messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.UserInput)))
		messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.ServerReply)))
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.Message)))

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
		Messages:  messages,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	reply, err := decodeReply(text.String())
	if err != nil {
		c.logger.Error("failed to decode provider reply", "error", err)
		return nil, err
	}
	return reply, nil
}

// decodeReply parses the JSON envelope, tolerating markdown code fences
// some models wrap JSON in despite instructions.
func decodeReply(raw string) (*ports.ProviderReply, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}

	var reply ports.ProviderReply
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("malformed provider reply: %w", err)
	}
	if reply.ServerReply == "" {
		return nil, fmt.Errorf("provider reply missing server_reply")
	}

	if reply.Interaction != nil {
		reply.Interaction.ContextPriority = domain.ClampContextPriority(reply.Interaction.ContextPriority)
	}
	for i := range reply.ContextUpdates {
		reply.ContextUpdates[i].NewPriority = domain.ClampContextPriority(reply.ContextUpdates[i].NewPriority)
	}
	return &reply, nil
}

var _ ports.AssistantProvider = (*Client)(nil)
