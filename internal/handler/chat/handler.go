package chat

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/model/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	chatService "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

// Handler 聊天会话的HTTP处理器
type Handler struct {
	assistant *assistant.Service
	chatSvc   *chatService.Service
}

// New 创建聊天处理器
func New(assistantSvc *assistant.Service, chatSvc *chatService.Service) *Handler {
	return &Handler{
		assistant: assistantSvc,
		chatSvc:   chatSvc,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.handleCreateSession)
		r.Get("/", h.handleListSessions)
		r.Get("/{sessionID}", h.handleGetSession)
		r.Get("/{sessionID}/messages", h.handleListMessages)
		r.Post("/{sessionID}/messages", h.handleSendMessage)
	})
}

// sessionView 附带当前是否有待发送的回复，前端据此锁定输入框。
type sessionView struct {
	chat.Session
	ReplyPending bool `json:"replyPending"`
}

// acceptedMessage 是发送消息后的响应，AI 回复稍后追加到会话记录中。
type acceptedMessage struct {
	Message  chat.Message `json:"message"`
	Scenario string       `json:"scenario"`
}

// handleCreateSession 创建会话，请求体可省略
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
		Title  string `json:"title"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.assistant.StartSession(r.Context(), payload.UserID, payload.Title)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.view(session))
}

// handleListSessions 列出所有会话
func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.chatSvc.ListSessions(r.Context())
	views := make([]sessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, h.view(session))
	}
	utils.RespondJSON(w, http.StatusOK, views)
}

// handleGetSession 获取单个会话
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, h.view(session))
}

// handleListMessages 返回会话记录
func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSendMessage 保存用户消息并安排 AI 回复
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text   string `json:"text"`
		UserID string `json:"userId"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	message, pending, err := h.assistant.Ask(r.Context(), sessionID, payload.UserID, payload.Text)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusAccepted, acceptedMessage{
		Message:  message,
		Scenario: string(pending.Key),
	})
}

func (h *Handler) view(session chat.Session) sessionView {
	return sessionView{Session: session, ReplyPending: h.assistant.Busy(session.ID)}
}

// statusFor 将服务层错误映射为HTTP状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatService.ErrEmptyMessage), errors.Is(err, chatService.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrReplyPending):
		return http.StatusConflict
	case errors.Is(err, assistant.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
