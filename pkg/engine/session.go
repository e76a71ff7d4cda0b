package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelez/sleuth/pkg/agents"
	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
)

// maxInputChars caps a single user message so one paste cannot blow the
// provider's context window.
const maxInputChars = 175000

// Session is one interactive conversation. It owns an agent and its chat.
// Only one Send may be active at a time.
type Session struct {
	id     string
	name   string
	agent  agents.NamedAgent
	events *EventBus

	mu     sync.Mutex
	active bool
}

func newSession(id string, agent agents.NamedAgent, events *EventBus) *Session {
	return &Session{id: id, name: agent.AgentName(), agent: agent, events: events}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// AgentName returns the name of the agent the session runs.
func (s *Session) AgentName() string { return s.name }

// Chat returns the underlying conversation for observation.
func (s *Session) Chat() *chat.Chat { return s.agent.AgentChat() }

// Send appends text as a user message, clamped to maxInputChars, and runs
// the agent's loop to completion. It returns the agent's final reply.
func (s *Session) Send(ctx context.Context, text string) (message.Message, error) {
	if err := s.acquire(); err != nil {
		return message.Message{}, err
	}
	defer s.release()

	text = clampInput(text)

	s.publish(EventAgentStart, nil)

	s.agent.AgentChat().Append(message.NewText("user", role.User, text))

	reply, err := s.agent.Run(ctx)
	if err != nil {
		s.publish(EventError, err)
		s.publish(EventAgentEnd, nil)
		return message.Message{}, err
	}

	s.publish(EventAgentEnd, nil)

	return reply, nil
}

// clampInput cuts text to at most maxInputChars bytes without splitting a
// multi-byte rune, backing off any trailing UTF-8 continuation bytes.
func clampInput(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	n := maxInputChars
	for n > 0 && text[n]&0xC0 == 0x80 {
		n--
	}
	return text[:n]
}

func (s *Session) publish(kind EventKind, data any) {
	s.events.Publish(Event{
		Kind:      kind,
		SessionID: s.id,
		Agent:     s.name,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		return fmt.Errorf("engine: session %s: send already in progress", s.id)
	}
	s.active = true

	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}
