// Package chat provides the mutable conversation container agents operate on.
package chat

import (
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
)

// Chat is a mutable ordered list of messages. The zero value is ready to use.
// Chat is not safe for concurrent use; callers must synchronize externally.
type Chat struct {
	messages []message.Message
}

// New creates a Chat pre-populated with the given messages.
func New(msgs ...message.Message) *Chat {
	return &Chat{messages: msgs}
}

// Append adds messages to the end of the conversation.
func (c *Chat) Append(msgs ...message.Message) {
	c.messages = append(c.messages, msgs...)
}

// Len returns the number of messages in the conversation.
func (c *Chat) Len() int {
	return len(c.messages)
}

// At returns the message at index i. It panics if i is out of range.
func (c *Chat) At(i int) message.Message {
	return c.messages[i]
}

// Last returns the most recent message and true, or a zero Message and
// false when the conversation is empty.
func (c *Chat) Last() (message.Message, bool) {
	if len(c.messages) == 0 {
		return message.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Messages returns a copy of the message slice.
func (c *Chat) Messages() []message.Message {
	cp := make([]message.Message, len(c.messages))
	copy(cp, c.messages)
	return cp
}

// SystemPrompt returns the text of the first system message, or "" if the
// conversation has none.
func (c *Chat) SystemPrompt() string {
	for _, m := range c.messages {
		if m.Role == role.System {
			return m.Text()
		}
	}
	return ""
}
