package domain

import "context"

// ChatRequest is a single-shot completion request to the chat model.
type ChatRequest struct {
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// ChatModel is the chat-completion contract: given a prompt, return the
// answer text.
type ChatModel interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}
