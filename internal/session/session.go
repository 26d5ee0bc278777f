// Package session holds the chat history of one launcher process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms"
)

// Session is created at startup and lives until the process exits. With
// retention on, every finished turn is kept and sent with later calls, across
// launcher resets; with retention off each call is a single turn.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.RWMutex
	retain  bool
	history []llms.MessageContent
	turns   int
}

func New(retain bool) *Session {
	return &Session{
		ID:        uuid.NewString()[:8],
		CreatedAt: time.Now(),
		retain:    retain,
	}
}

func (s *Session) Retains() bool { return s.retain }

// History returns a copy of the retained turns, oldest first.
func (s *Session) History() []llms.MessageContent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]llms.MessageContent, len(s.history))
	copy(out, s.history)
	return out
}

// Record stores a finished turn. It is a no-op without retention.
func (s *Session) Record(user, assistant string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
	if !s.retain {
		return
	}
	s.history = append(s.history,
		llms.TextParts(llms.ChatMessageTypeHuman, user),
		llms.TextParts(llms.ChatMessageTypeAI, assistant),
	)
}

// Turns counts finished turns, retained or not.
func (s *Session) Turns() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.turns
}
