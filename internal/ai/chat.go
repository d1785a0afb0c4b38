package ai

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ChatClient binds a chat provider to a model and a call timeout.
//
// CompleteText never returns an error: transport or backend failures
// are folded into the returned text so every caller handles a plain
// string regardless of backend health. Parse-sensitive callers detect
// the failure when the text does not match their expected shape.
type ChatClient struct {
	provider IChatProvider
	model    string
	timeout  time.Duration
}

func NewChatClient(provider IChatProvider, model string, timeout time.Duration) *ChatClient {
	return &ChatClient{provider: provider, model: model, timeout: timeout}
}

func (c *ChatClient) CompleteText(ctx context.Context, messages []Message, maxTokens int, temperature float32) string {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	text, err := c.provider.Complete(ctx, c.model, messages, maxTokens, temperature)
	if err != nil {
		logutil.GetLogger(ctx).Warn("chat completion failed",
			zap.String("provider", c.provider.Name()),
			zap.String("model", c.model),
			zap.Error(err),
		)
		return "Error: could not get a response from the generation backend: " + err.Error()
	}
	return strings.TrimSpace(text)
}
