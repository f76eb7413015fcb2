// Package genai wraps the OpenAI API for Clara's small-talk dialogue.
//
// The flow state machine handles everything verification-related; utterances
// that pass the gate but match no flow step land here.
package genai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrNoChoicesReturned indicates the API response contained no completions.
var ErrNoChoicesReturned = errors.New("no choices returned from OpenAI")

// DefaultModel is the chat model used when none is configured.
const DefaultModel = openai.ChatModelGPT4oMini

// chatService abstracts chat completion creation for testing.
type chatService interface {
	Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error)
}

// openaiChatService is the production chatService backed by the OpenAI client.
type openaiChatService struct {
	client openai.Client
}

func (s *openaiChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	resp, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return openai.ChatCompletion{}, err
	}
	return *resp, nil
}

// Message is one prior turn of the conversation.
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// Client generates dialogue replies.
type Client struct {
	chat  chatService
	model string
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// NewClient initializes a GenAI client, falling back to the OPENAI_API_KEY
// environment variable when no key is provided via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not provided")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	slog.Debug("GenAI client initialized", "model", cfg.Model)

	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Client{chat: &openaiChatService{client: client}, model: cfg.Model}, nil
}

// GenerateReply produces a single completion for a system/user prompt pair.
func (c *Client) GenerateReply(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.GenerateConversation(ctx, systemPrompt, []Message{{Role: "user", Content: userPrompt}})
}

// GenerateConversation produces a completion over prior turns.
func (c *Client) GenerateConversation(ctx context.Context, systemPrompt string, history []Message) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	for _, msg := range history {
		switch msg.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}

	resp, err := c.chat.Create(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		slog.Error("GenAI GenerateConversation failed", "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI GenerateConversation returned no choices")
		return "", ErrNoChoicesReturned
	}
	reply := resp.Choices[0].Message.Content
	slog.Debug("GenAI GenerateConversation succeeded", "reply_length", len(reply))
	return reply, nil
}
