package chat

import (
	"context"
	"strings"
	"sync"

	"codearena/internal/model"
	pkgerrors "codearena/pkg/errors"

	"github.com/google/uuid"
)

// ApologyMessage replaces the assistant reply when the exchange fails.
const ApologyMessage = "Sorry, I'm having trouble connecting to the server."

// Sender is the streaming call a Conversation depends on.
type Sender interface {
	Send(ctx context.Context, message string, pctx model.ProblemContext, onChunk func(string)) error
}

// Conversation keeps the transcript of one chat session.
type Conversation struct {
	sender Sender

	mu       sync.Mutex
	messages []model.ChatMessage
}

func NewConversation(sender Sender) *Conversation {
	return &Conversation{sender: sender}
}

// Ask records the user message, streams the reply through onChunk and
// records it. On failure the apology is recorded instead and the error returned.
// A blank message is rejected without touching the transcript.
func (c *Conversation) Ask(ctx context.Context, message string, pctx model.ProblemContext, onChunk func(string)) (model.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return model.ChatMessage{}, pkgerrors.New(pkgerrors.ChatMessageEmpty)
	}
	c.append(model.ChatMessage{ID: uuid.NewString(), Role: model.RoleUser, Content: message})

	var reply strings.Builder
	err := c.sender.Send(ctx, message, pctx, func(chunk string) {
		reply.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	})

	answer := model.ChatMessage{ID: uuid.NewString(), Role: model.RoleAssistant, Content: reply.String()}
	if err != nil {
		answer.Content = ApologyMessage
	}
	c.append(answer)
	return answer, err
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.ChatMessage(nil), c.messages...)
}

// Reset clears the transcript.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

func (c *Conversation) append(msg model.ChatMessage) {
	c.mu.Lock()
	c.messages = append(c.messages, msg)
	c.mu.Unlock()
}
