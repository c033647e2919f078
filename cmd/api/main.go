package main

import (
	"context"
	"errors"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/apilens/apilens-ai/backend/internal/analysis/scenario"
	"github.com/apilens/apilens-ai/backend/internal/config"
	"github.com/apilens/apilens-ai/backend/internal/handler"
	"github.com/apilens/apilens-ai/backend/internal/model/prompt"
	"github.com/apilens/apilens-ai/backend/internal/service/ai"
	"github.com/apilens/apilens-ai/backend/internal/service/assistant"
	"github.com/apilens/apilens-ai/backend/internal/service/backend"
	"github.com/apilens/apilens-ai/backend/internal/service/chat"
	"github.com/apilens/apilens-ai/backend/internal/service/credential"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Usage data source
	var source backend.Source
	if cfg.Backend.Demo() {
		source = backend.NewStatic()
		log.Println("未配置 APILENS_BACKEND_URL，使用内置演示数据")
	} else {
		source = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
		log.Printf("usage backend: %s", cfg.Backend.BaseURL)
	}

	creds := credential.NewResolver(newKeyStore(ctx, cfg.Credential), source, cfg.Backend.APIKey)

	seed := uint64(time.Now().UnixNano())
	if cfg.Reply.Seed != nil {
		seed = *cfg.Reply.Seed
		log.Printf("scenario seed fixed at %d", seed)
	}
	generator := scenario.NewGenerator(seed)

	chatService := chat.NewService(generator.Narratives().Greeting)
	assistantService := assistant.New(chatService, generator, creds, source, assistant.Config{
		MinDelay: cfg.Reply.MinDelay,
		Jitter:   cfg.Reply.Jitter,
	}, rand.New(rand.NewPCG(seed, seed>>1)))
	defer assistantService.Close()

	// Chart explanations degrade to summaries without Ark credentials
	explainer, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize AI service: %v", err)
		log.Println("continuing with summary explanations - 请检查 Ark 模型相关环境变量")
		explainer, _ = ai.NewService(ctx, config.AIConfig{})
	} else if explainer.ModelEnabled() {
		log.Println("AI service initialized successfully")
	}

	router := handler.NewRouter(handler.Deps{
		Prompts:     prompt.NewMemoryStore(prompt.Seed()),
		Chats:       chatService,
		Assistant:   assistantService,
		Generator:   generator,
		Explainer:   explainer,
		Creds:       creds,
		Source:      source,
		Demo:        cfg.Backend.Demo(),
		ChartWidth:  cfg.Chart.Width,
		ChartHeight: cfg.Chart.Height,
	})

	startServer(ctx, cfg.Server, router)
}

// newKeyStore 优先使用 Redis 保存密钥，连接失败时退回内存存储。
func newKeyStore(ctx context.Context, cfg config.CredentialConfig) credential.Store {
	if cfg.RedisURL == "" {
		return credential.NewMemoryStore()
	}

	client, err := credential.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("warning: redis unavailable, keeping API key in memory: %v", err)
		return credential.NewMemoryStore()
	}
	log.Println("API key store: redis")
	return credential.NewRedisStore(client, cfg.StorageKey)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	addr := serverCfg.Addr
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("ApiLens AI backend listening on %s", addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
