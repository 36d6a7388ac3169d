package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Client wraps the OpenAI SDK to phrase family escalation messages.
type Client struct {
	apiKey string
	client *openai.Client
	model  openai.ChatModel
}

// ErrClientNotInitialised is returned when attempting to call the API without a configured client.
var ErrClientNotInitialised = errors.New("openai client not initialised")

// New returns an OpenAI client when apiKey is provided, otherwise an
// unconfigured client whose calls fail with ErrClientNotInitialised.
func New(apiKey string) *Client {
	if apiKey == "" {
		return &Client{}
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		apiKey: apiKey,
		client: &client,
		model:  openai.ChatModelGPT4oMini,
	}
}

// ComposeEscalation asks the model for a short, calm message telling family
// members that a medication has gone unconfirmed. Callers fall back to a
// fixed template when this errors.
func (c *Client) ComposeEscalation(ctx context.Context, medicineName, scheduledTime string, elapsedMinutes int) (string, error) {
	if strings.TrimSpace(medicineName) == "" {
		return "", fmt.Errorf("medicine name cannot be empty")
	}
	if c.client == nil {
		return "", ErrClientNotInitialised
	}

	prompt := fmt.Sprintf(
		"The medication %q was scheduled for %s and has not been confirmed as taken for %d minutes.",
		medicineName, scheduledTime, elapsedMinutes,
	)

	req := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You write one short, calm sentence asking a family member to check in because a relative has not confirmed taking their medication. Include the medicine name and how long it has been waiting. No alarmism, no medical advice."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature:         openai.Float(0.3),
		MaxCompletionTokens: openai.Int(60),
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion received")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
