package domain

import "errors"

var (
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat-completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrEmptyEmbedding signals that the provider returned no vector.
	ErrEmptyEmbedding = errors.New("empty embedding")
)
