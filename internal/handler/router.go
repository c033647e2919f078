package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/handler/chart"
	"github.com/apilens/apilens-ai/backend/internal/handler/chat"
	"github.com/apilens/apilens-ai/backend/internal/handler/prompt"
	"github.com/apilens/apilens-ai/backend/internal/handler/stream"
	"github.com/apilens/apilens-ai/backend/internal/handler/system"
	"github.com/apilens/apilens-ai/backend/internal/handler/ws"
	middlewarePkg "github.com/apilens/apilens-ai/backend/internal/middleware"
	promptModel "github.com/apilens/apilens-ai/backend/internal/model/prompt"
	aiService "github.com/apilens/apilens-ai/backend/internal/service/ai"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	chatService "github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
	"github.com/apilens/apilens-ai/backend/pkg/utils"
)

// Deps collects the services the HTTP surface is built on.
type Deps struct {
	Prompts   promptModel.Store
	Chats     *chatService.Service
	Assistant *assistant.Service
	Generator *scenario.Generator
	Explainer *aiService.Service
	Creds     credential.Provider
	Source    backend.Source
	Demo      bool

	ChartWidth  int
	ChartHeight int
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	promptHandler := prompt.New(deps.Prompts)
	chatHandler := chat.New(deps.Assistant, deps.Chats)
	chartHandler := chart.New(deps.Explainer, deps.ChartWidth, deps.ChartHeight)
	systemHandler := system.New(deps.Generator, deps.Creds, deps.Source, deps.Demo)
	wsHandler := ws.NewWebSocketHandler(deps.Assistant, deps.Chats)
	streamHandler := stream.New(deps.Assistant)

	r.Route("/api", func(api chi.Router) {
		promptHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		chartHandler.RegisterRoutes(api)
		systemHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)

		// Streams the reply to ?message=, or follows the reply already pending.
		api.Get("/stream/{sessionID}", func(w http.ResponseWriter, r *http.Request) {
			sessionID := chi.URLParam(r, "sessionID")
			userMessage := r.URL.Query().Get("message")

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
				status := stream.StatusFor(err)
				if status == http.StatusInternalServerError {
					log.Printf("[stream] error handling request: %v", err)
				}
				utils.RespondError(w, status, err.Error())
			}
		})
	})

	return r
}
