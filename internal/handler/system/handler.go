package system

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/analysis/snapshot"
	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

const healthTimeout = 3 * time.Second

// Handler 健康检查、问题分类与用量概览的HTTP处理器
type Handler struct {
	generator *scenario.Generator
	creds     credential.Provider
	source    backend.Source
	demo      bool
	now       func() time.Time
}

// New 创建系统处理器，demo 表示使用内置演示数据
func New(generator *scenario.Generator, creds credential.Provider, source backend.Source, demo bool) *Handler {
	return &Handler{
		generator: generator,
		creds:     creds,
		source:    source,
		demo:      demo,
		now:       time.Now,
	}
}

// RegisterRoutes 注册系统相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Post("/classify", h.handleClassify)
	r.Get("/snapshot/insights", h.handleInsights)
}

type healthResponse struct {
	Status  string            `json:"status"`
	Demo    bool              `json:"demo"`
	Backend *analytics.Health `json:"backend,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// handleHealth 返回服务状态，后端不可达时仍返回 200 并标记为 degraded
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Demo: h.demo}
	backendHealth, err := h.source.Health(ctx)
	if err != nil {
		log.Printf("[system] backend health failed: %v", err)
		resp.Status = "degraded"
		resp.Error = err.Error()
	} else {
		resp.Backend = backendHealth
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

type classifyResponse struct {
	Scenario  string `json:"scenario"`
	Attach    bool   `json:"attach"`
	Narrative string `json:"narrative"`
}

// handleClassify 对问题分类并返回不含用量数据的回复文本
func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, classifyResponse{
		Scenario:  string(scenario.Classify(payload.Text)),
		Attach:    scenario.ShouldAttach(payload.Text),
		Narrative: h.generator.Describe(payload.Text, nil),
	})
}

type insightsResponse struct {
	Company  string                 `json:"company,omitempty"`
	Insights snapshot.Insights      `json:"insights"`
	Charts   []analytics.Descriptor `json:"charts"`
}

// handleInsights 使用当前密钥拉取快照并返回汇总视图
func (h *Handler) handleInsights(w http.ResponseWriter, r *http.Request) {
	res := h.creds.Resolve(r.Context())
	switch res.Status {
	case credential.StatusOK:
	case credential.StatusMissing:
		utils.RespondError(w, http.StatusUnauthorized, "api key not configured")
		return
	case credential.StatusInvalid:
		utils.RespondError(w, http.StatusUnauthorized, "api key rejected")
		return
	default:
		utils.RespondError(w, http.StatusBadGateway, "usage backend unavailable")
		return
	}

	snap, err := h.source.Snapshot(r.Context(), res.APIKey)
	if err != nil {
		log.Printf("[system] snapshot fetch failed: %v", err)
		utils.RespondError(w, http.StatusBadGateway, "usage backend unavailable")
		return
	}

	insights := snapshot.Build(snap, h.now())
	utils.RespondJSON(w, http.StatusOK, insightsResponse{
		Company:  res.CompanyName,
		Insights: insights,
		Charts:   insights.Charts(),
	})
}
