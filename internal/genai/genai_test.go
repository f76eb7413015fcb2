package genai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go"
)

// mockChatService implements chatService for testing.
type mockChatService struct {
	resp   openai.ChatCompletion
	err    error
	params openai.ChatCompletionNewParams
}

func (m *mockChatService) Create(ctx context.Context, params openai.ChatCompletionNewParams) (openai.ChatCompletion, error) {
	m.params = params
	return m.resp, m.err
}

func TestGenerateReplySuccess(t *testing.T) {
	mock := &mockChatService{
		resp: openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "Hello, how can I help?"}},
			},
		},
	}
	client := &Client{chat: mock, model: DefaultModel}

	out, err := client.GenerateReply(context.Background(), "you are a receptionist", "hello")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if out != "Hello, how can I help?" {
		t.Errorf("reply = %q", out)
	}
	if len(mock.params.Messages) != 2 {
		t.Errorf("messages sent = %d, want system + user", len(mock.params.Messages))
	}
}

func TestGenerateConversationCarriesHistory(t *testing.T) {
	mock := &mockChatService{
		resp: openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: "ok"}},
			},
		},
	}
	client := &Client{chat: mock, model: DefaultModel}

	_, err := client.GenerateConversation(context.Background(), "sys", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
		{Role: "user", Content: "where is the meeting room"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mock.params.Messages) != 4 {
		t.Errorf("messages sent = %d, want 4", len(mock.params.Messages))
	}
}

func TestGenerateReplyServiceError(t *testing.T) {
	client := &Client{chat: &mockChatService{err: errors.New("service failure")}, model: DefaultModel}
	_, err := client.GenerateReply(context.Background(), "sys", "usr")
	if err == nil || !strings.Contains(err.Error(), "service failure") {
		t.Errorf("expected service failure error, got %v", err)
	}
}

func TestGenerateReplyNoChoices(t *testing.T) {
	client := &Client{chat: &mockChatService{resp: openai.ChatCompletion{}}, model: DefaultModel}
	_, err := client.GenerateReply(context.Background(), "sys", "usr")
	if !errors.Is(err, ErrNoChoicesReturned) {
		t.Errorf("expected ErrNoChoicesReturned, got %v", err)
	}
}

func TestNewClientNoKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when API key not provided, got nil")
	}
}
