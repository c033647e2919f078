package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyMessage    = errors.New("message content is required")
	ErrInvalidRole     = errors.New("invalid message role")
)

const defaultTitle = "New analysis"

// NewSession carries what is known when a conversation starts.
type NewSession struct {
	UserID   string
	Title    string
	Company  string
	Snapshot *analytics.Snapshot
}

// Service keeps sessions and their append-only transcripts in memory.
type Service struct {
	mu       sync.RWMutex
	greeting string
	now      func() time.Time
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewService returns a store that opens every session with greeting.
func NewService(greeting string) *Service {
	return &Service{
		greeting: greeting,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

// CreateSession provisions a session and seeds the AI greeting.
func (s *Service) CreateSession(_ context.Context, in NewSession) (chat.Session, error) {
	title := in.Title
	if title == "" {
		title = defaultTitle
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Title:     title,
		Company:   in.Company,
		CreatedAt: s.now(),
		Connected: in.Snapshot != nil,
		Snapshot:  in.Snapshot,
	}

	transcript := make([]chat.Message, 0, 16)
	if s.greeting != "" {
		transcript = append(transcript, chat.Message{
			ID:        uuid.NewString(),
			SessionID: session.ID,
			Role:      chat.RoleAI,
			Content:   s.greeting,
			Timestamp: session.CreatedAt,
		})
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = transcript
	s.mu.Unlock()

	return session, nil
}

// AppendMessage stores message at the end of its session transcript and
// returns it with id and timestamp filled in.
func (s *Service) AppendMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	switch message.Role {
	case chat.RoleUser, chat.RoleAI, chat.RoleSystem:
	default:
		return chat.Message{}, ErrInvalidRole
	}
	if message.Content == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.Timestamp.IsZero() {
		message.Timestamp = s.now()
	}
	message.IsLoading = false

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// ListSessions returns every session, oldest first.
func (s *Service) ListSessions(_ context.Context) []chat.Session {
	s.mu.RLock()
	sessions := make([]chat.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
