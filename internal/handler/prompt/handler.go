package prompt

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/model/prompt"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

// Handler 快捷提问的HTTP处理器
type Handler struct {
	prompts prompt.Store
}

// New 创建快捷提问处理器
func New(prompts prompt.Store) *Handler {
	return &Handler{
		prompts: prompts,
	}
}

// RegisterRoutes 注册快捷提问相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/prompts", h.handleListPrompts)
	r.Get("/prompts/{promptID}", h.handleGetPrompt)
}

// handleListPrompts 按展示顺序列出快捷提问
func (h *Handler) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.prompts.List())
}

// handleGetPrompt 获取单个快捷提问
func (h *Handler) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	item, ok := h.prompts.FindByID(chi.URLParam(r, "promptID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "prompt not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, item)
}
