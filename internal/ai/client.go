package ai

import (
	"context"
	"time"
)

// RequestTimeout - фиксированный таймаут одного обращения к модели.
const RequestTimeout = 30 * time.Second

const defaultMaxTokens = 4096

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}
