package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	chatservice "github.com/apilens/apilens-ai/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocketHandler WebSocket聊天处理器
type WebSocketHandler struct {
	assistant *assistant.Service
	chatSvc   *chatservice.Service
	upgrader  websocket.Upgrader
}

// NewWebSocketHandler 创建WebSocket处理器
func NewWebSocketHandler(assistantSvc *assistant.Service, chatSvc *chatservice.Service) *WebSocketHandler {
	return &WebSocketHandler{
		assistant: assistantSvc,
		chatSvc:   chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

// 入站消息类型
const (
	typeMessage = "message"
	typeText    = "text"
	typeCancel  = "cancel"
	typePing    = "ping"
)

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Text      string          `json:"text"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 文本消息，兼容放在 data 字段中的写法
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// connectionState 保存单个连接的状态，写操作需串行化。
type connectionState struct {
	sessionID string
	userID    string
	conn      *websocket.Conn

	writeMu sync.Mutex

	mu      sync.Mutex
	pending *assistant.Pending
}

func (s *connectionState) write(msg outgoingMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteJSON(msg)
}

// handleWebSocket 处理WebSocket连接
func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	state := &connectionState{
		sessionID: sessionID,
		userID:    r.URL.Query().Get("userId"),
		conn:      conn,
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	go h.pingLoop(ctx, state)

	h.sendInfo(state, "connected", map[string]any{
		"title":        session.Title,
		"connected":    session.Connected,
		"replyPending": h.assistant.Busy(sessionID),
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg inboundMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("[websocket] read error: %v", err)
				}
				return
			}

			conn.SetReadDeadline(time.Now().Add(readTimeout))

			if msg.SessionID != "" && msg.SessionID != sessionID {
				h.sendError(state, "session mismatch")
				continue
			}

			h.handleMessage(ctx, state, &msg)
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, state *connectionState, msg *inboundMessage) {
	switch msg.Type {
	case typeMessage, typeText:
		h.handleTextMessage(ctx, state, msg)
	case typeCancel:
		h.handleCancel(state)
	case typePing:
		h.sendInfo(state, "pong", nil)
	default:
		h.sendError(state, "unsupported message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) handleTextMessage(ctx context.Context, state *connectionState, msg *inboundMessage) {
	text := msg.Text
	if text == "" && len(msg.Data) > 0 {
		var payload TextMessage
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			h.sendError(state, "invalid text payload")
			return
		}
		text = payload.Text
	}
	if strings.TrimSpace(text) == "" {
		h.sendError(state, chatservice.ErrEmptyMessage.Error())
		return
	}

	userMsg, pending, err := h.assistant.Ask(ctx, state.sessionID, state.userID, text)
	if err != nil {
		h.sendError(state, err.Error())
		return
	}

	state.mu.Lock()
	state.pending = pending
	state.mu.Unlock()

	h.sendInfo(state, "user", userMsg)
	h.sendInfo(state, "typing", map[string]any{"scenario": pending.Key})

	go h.awaitReply(ctx, state, pending)
}

// awaitReply 等待回复并推送给客户端；连接关闭后回复仍会写入会话记录。
func (h *WebSocketHandler) awaitReply(ctx context.Context, state *connectionState, pending *assistant.Pending) {
	reply, err := pending.Wait(ctx)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, assistant.ErrCanceled):
		h.sendInfo(state, "canceled", nil)
	case err != nil:
		h.sendError(state, err.Error())
	default:
		h.sendInfo(state, "message", reply)
	}
}

func (h *WebSocketHandler) handleCancel(state *connectionState) {
	state.mu.Lock()
	pending := state.pending
	state.mu.Unlock()

	if pending == nil || !pending.Cancel() {
		h.sendError(state, "no reply to cancel")
	}
}

func (h *WebSocketHandler) sendInfo(state *connectionState, kind string, data interface{}) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: state.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := state.write(msg); err != nil {
		log.Printf("[websocket] write %s failed: %v", kind, err)
	}
}

func (h *WebSocketHandler) sendError(state *connectionState, message string) {
	msg := outgoingMessage{
		Type:      "error",
		SessionID: state.sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
	if err := state.write(msg); err != nil {
		log.Printf("[websocket] write error failed: %v", err)
	}
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, state *connectionState) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := state.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
