// Package assistant answers chat messages with scenario narratives and charts
// after a short simulated thinking delay.
package assistant

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/model/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	chatService "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

var (
	ErrReplyPending = errors.New("a reply is still being prepared for this session")
	ErrCanceled     = errors.New("reply canceled")
	ErrClosed       = errors.New("assistant is shut down")
)

// Config tunes the simulated reply delay.
type Config struct {
	MinDelay time.Duration
	Jitter   time.Duration
}

// DefaultConfig waits between 1.5 and 2.5 seconds.
func DefaultConfig() Config {
	return Config{MinDelay: 1500 * time.Millisecond, Jitter: time.Second}
}

// Service owns the per-session input lock and reply timers.
type Service struct {
	chats     *chatService.Service
	generator *scenario.Generator
	creds     credential.Provider
	source    backend.Source
	cfg       Config

	mu      sync.Mutex
	rng     *rand.Rand
	pending map[string]*Pending
	closed  bool
}

// New wires the assistant. rng drives the delay jitter only.
func New(chats *chatService.Service, generator *scenario.Generator, creds credential.Provider, source backend.Source, cfg Config, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Service{
		chats:     chats,
		generator: generator,
		creds:     creds,
		source:    source,
		cfg:       cfg,
		rng:       rng,
		pending:   make(map[string]*Pending),
	}
}

// StartSession resolves the API key, loads the usage snapshot once and opens
// a session. Lookup failures are logged and the session starts without data.
func (s *Service) StartSession(ctx context.Context, userID, title string) (chat.Session, error) {
	in := chatService.NewSession{UserID: userID, Title: title}

	res := s.creds.Resolve(ctx)
	switch {
	case res.OK():
		in.Company = res.CompanyName
		snap, err := s.source.Snapshot(ctx, res.APIKey)
		if err != nil {
			log.Printf("[assistant] snapshot fetch failed: %v", err)
			break
		}
		in.Snapshot = snap
	case res.Err != nil:
		log.Printf("[assistant] credential %s: %v", res.Status, res.Err)
	default:
		log.Printf("[assistant] credential %s, continuing without usage data", res.Status)
	}

	return s.chats.CreateSession(ctx, in)
}

// Busy reports whether a reply is scheduled for the session.
func (s *Service) Busy(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[sessionID]
	return ok
}

// Pending returns the outstanding reply of a session, if any.
func (s *Service) Pending(sessionID string) (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[sessionID]
	return p, ok
}

// Ask records the user message and schedules the AI reply. Only one reply per
// session can be outstanding; later sends fail with ErrReplyPending.
func (s *Service) Ask(ctx context.Context, sessionID, userID, text string) (chat.Message, *Pending, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, nil, chatService.ErrEmptyMessage
	}

	session, err := s.chats.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Message{}, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return chat.Message{}, nil, ErrClosed
	}
	if _, busy := s.pending[sessionID]; busy {
		return chat.Message{}, nil, ErrReplyPending
	}

	userMsg, err := s.chats.AppendMessage(ctx, chat.Message{
		SessionID: sessionID,
		Role:      chat.RoleUser,
		Content:   text,
		UserID:    userID,
	})
	if err != nil {
		return chat.Message{}, nil, err
	}

	result := s.generator.Resolve(text, session.Snapshot)
	p := &Pending{
		SessionID: sessionID,
		Key:       result.Key,
		done:      make(chan struct{}),
		owner:     s,
	}
	delay := s.delayLocked()
	s.pending[sessionID] = p
	p.timer = time.AfterFunc(delay, func() { s.deliver(p, result) })

	log.Printf("[assistant] session %s scenario=%s attach=%t reply in %s", sessionID, result.Key, result.Attach, delay)
	return userMsg, p, nil
}

func (s *Service) delayLocked() time.Duration {
	delay := s.cfg.MinDelay
	if s.cfg.Jitter > 0 {
		delay += time.Duration(s.rng.Float64() * float64(s.cfg.Jitter))
	}
	return delay
}

func (s *Service) deliver(p *Pending, result scenario.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.finished {
		return
	}

	msg, err := s.chats.AppendMessage(context.Background(), chat.Message{
		SessionID: p.SessionID,
		Role:      chat.RoleAI,
		Content:   result.Text,
		Analytics: result.Payload,
	})
	if err != nil {
		log.Printf("[assistant] append reply for %s failed: %v", p.SessionID, err)
	}
	p.finishLocked(msg, err)
}

// Close cancels every scheduled reply and rejects further questions.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, p := range s.pending {
		p.timer.Stop()
		p.finishLocked(chat.Message{}, ErrCanceled)
	}
}

// Pending tracks one scheduled reply.
type Pending struct {
	SessionID string
	Key       scenario.Key

	owner    *Service
	timer    *time.Timer
	done     chan struct{}
	finished bool
	reply    chat.Message
	err      error
}

// Done is closed once the reply is appended or canceled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Reply returns the appended AI message after Done is closed.
func (p *Pending) Reply() (chat.Message, error) {
	<-p.done
	return p.reply, p.err
}

// Wait blocks until the reply lands or ctx ends.
func (p *Pending) Wait(ctx context.Context) (chat.Message, error) {
	select {
	case <-p.done:
		return p.reply, p.err
	case <-ctx.Done():
		return chat.Message{}, ctx.Err()
	}
}

// Cancel drops the reply if it has not been appended yet.
func (p *Pending) Cancel() bool {
	s := p.owner
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.finished {
		return false
	}
	p.timer.Stop()
	p.finishLocked(chat.Message{}, ErrCanceled)
	return true
}

func (p *Pending) finishLocked(msg chat.Message, err error) {
	p.finished = true
	p.reply = msg
	p.err = err
	if p.owner.pending[p.SessionID] == p {
		delete(p.owner.pending, p.SessionID)
	}
	close(p.done)
}
