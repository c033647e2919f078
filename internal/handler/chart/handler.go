package chart

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/apilens/apilens-ai/backend/internal/model/analytics"
	chartRender "github.com/apilens/apilens-ai/backend/internal/render/chart"
	aiService "github.com/apilens/apilens-ai/backend/internal/service/ai"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

// Handler 图表渲染与解读的HTTP处理器
type Handler struct {
	explainer *aiService.Service
	width     int
	height    int
}

// New 创建图表处理器，width/height 为 SVG 默认尺寸
func New(explainer *aiService.Service, width, height int) *Handler {
	return &Handler{
		explainer: explainer,
		width:     width,
		height:    height,
	}
}

// RegisterRoutes 注册图表相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/charts", func(r chi.Router) {
		r.Post("/render", h.handleRender)
		r.Post("/svg", h.handleSVG)
		r.Post("/explain", h.handleExplain)
	})
}

// handleRender 返回与展示无关的图表结构
func (h *Handler) handleRender(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDescriptor(w, r)
	if !ok {
		return
	}

	rendered, err := chartRender.Render(d)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, rendered)
}

// handleSVG 将图表导出为 SVG，尺寸可通过 width/height 查询参数覆盖
func (h *Handler) handleSVG(w http.ResponseWriter, r *http.Request) {
	width, err := dimension(r, "width", h.width)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := dimension(r, "height", h.height)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, ok := decodeDescriptor(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chartRender.WriteSVG(&buf, d, width, height); err != nil {
		switch {
		case errors.Is(err, chartRender.ErrNoVectorForm), errors.Is(err, chartRender.ErrEmptyChart):
			utils.RespondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			log.Printf("[chart] svg render %q failed: %v", d.Title, err)
			utils.RespondError(w, http.StatusInternalServerError, "svg rendering failed")
		}
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Printf("[chart] write svg failed: %v", err)
	}
}

// handleExplain 解读图表，未配置模型时返回摘要
func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeDescriptor(w, r)
	if !ok {
		return
	}

	explanation, err := h.explainer.Explain(r.Context(), d)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, explanation)
}

// decodeDescriptor 解析并校验图表描述，失败时已写入错误响应。
func decodeDescriptor(w http.ResponseWriter, r *http.Request) (analytics.Descriptor, bool) {
	var d analytics.Descriptor
	if err := utils.DecodeJSON(w, r, &d); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return analytics.Descriptor{}, false
	}

	if err := analytics.Validate(d); err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, analytics.ErrUnknownChartType) {
			status = http.StatusBadRequest
		}
		utils.RespondError(w, status, err.Error())
		return analytics.Descriptor{}, false
	}
	return d, true
}

func dimension(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > 4096 {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
