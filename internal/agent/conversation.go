package agent

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mateolafalce/padelpro/internal/entity"
	"github.com/mateolafalce/padelpro/internal/service"
)

// Replier answers one user message.
type Replier interface {
	Reply(ctx context.Context, req *Request) string
}

// Conversation ties the agent to the stored history of each identity.
// History failures are logged and never block a reply.
type Conversation struct {
	agent   Replier
	history service.HistoryService
}

func NewConversation(agent Replier, history service.HistoryService) *Conversation {
	return &Conversation{agent: agent, history: history}
}

// WebChat answers the local widget. A non-nil history replaces the stored one
// as model context; the exchange is stored either way.
func (c *Conversation) WebChat(ctx context.Context, message string, history []Message) string {
	return c.handle(ctx, entity.LocalWebUser, "", message, history)
}

// WhatsApp answers a message from phone, which also becomes the booking identity.
func (c *Conversation) WhatsApp(ctx context.Context, phone, message string) string {
	return c.handle(ctx, phone, phone, message, nil)
}

func (c *Conversation) handle(ctx context.Context, identity, phone, message string, provided []Message) string {
	history := provided
	if history == nil {
		history = c.recent(ctx, identity)
	}

	c.save(ctx, identity, entity.RoleUser, message)

	reply := c.agent.Reply(ctx, &Request{
		Identity: identity,
		Phone:    phone,
		Message:  message,
		History:  history,
	})

	c.save(ctx, identity, entity.RoleAssistant, reply)
	if err := c.history.Prune(ctx, identity); err != nil {
		logrus.WithFields(logrus.Fields{"user": identity, "error": err}).Warn("Failed to prune conversation history")
	}
	return reply
}

// recent is loaded before the incoming message is stored so it is not sent twice.
func (c *Conversation) recent(ctx context.Context, identity string) []Message {
	rows, err := c.history.Recent(ctx, identity)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user": identity, "error": err}).Warn("Failed to load conversation history")
		return nil
	}
	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		role := RoleUser
		if r.Role == entity.RoleAssistant {
			role = RoleAssistant
		}
		out = append(out, Message{Role: role, Content: r.Message})
	}
	return out
}

func (c *Conversation) save(ctx context.Context, identity, role, message string) {
	if err := c.history.Save(ctx, identity, role, message); err != nil {
		logrus.WithFields(logrus.Fields{"user": identity, "role": role, "error": err}).Warn("Failed to save conversation message")
	}
}

// Forget clears the stored history of identity and returns how many messages were removed.
func (c *Conversation) Forget(ctx context.Context, identity string) (int64, error) {
	return c.history.Clear(ctx, identity)
}
