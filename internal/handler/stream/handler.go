package stream

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/apilens/apilens-ai/backend/internal/model/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	chatService "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

var (
	ErrStreamingUnsupported = errors.New("streaming unsupported")
	ErrNothingPending       = errors.New("no reply pending for this session")
)

// Handler streams the AI reply of a chat session via Server-Sent Events
type Handler struct {
	assistant *assistant.Service
}

// New creates a new stream handler
func New(assistantSvc *assistant.Service) *Handler {
	return &Handler{assistant: assistantSvc}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string        `json:"event"`
	Content   string        `json:"content,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	Scenario  string        `json:"scenario,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// HandleStreamRequest sends userMessage and streams the reply. An empty
// userMessage follows a reply already scheduled through the REST endpoint.
// Errors are returned only while nothing has been written yet.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	var (
		userMsg *chat.Message
		pending *assistant.Pending
	)
	if userMessage != "" {
		msg, p, err := h.assistant.Ask(ctx, sessionID, "", userMessage)
		if err != nil {
			return err
		}
		userMsg, pending = &msg, p
	} else {
		p, ok := h.assistant.Pending(sessionID)
		if !ok {
			return ErrNothingPending
		}
		pending = p
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
		Scenario:  string(pending.Key),
	})
	if userMsg != nil {
		h.sendSSE(w, flusher, StreamResponse{Event: "user", SessionID: sessionID, Message: userMsg})
	}
	h.sendSSE(w, flusher, StreamResponse{Event: "typing", SessionID: sessionID})

	reply, err := pending.Wait(ctx)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// The reply still lands in the transcript.
		log.Printf("[stream] client left session=%s before the reply", sessionID)
		return nil
	case err != nil:
		h.sendSSEError(w, flusher, sessionID, err.Error())
		return nil
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   reply.Content,
		Message:   &reply,
	})
	h.sendSSE(w, flusher, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	log.Printf("[stream] delivered reply session=%s scenario=%s", sessionID, pending.Key)
	return nil
}

// StatusFor maps errors returned by HandleStreamRequest to HTTP codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound), errors.Is(err, ErrNothingPending):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrEmptyMessage):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrReplyPending):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	if err := utils.SendSSEChunk(w, flusher, response); err != nil {
		log.Printf("[stream] write %s event failed: %v", response.Event, err)
	}
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, sessionID, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "error",
		SessionID: sessionID,
		Error:     errorMsg,
		Finished:  true,
	})
}
