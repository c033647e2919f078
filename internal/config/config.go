package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	Backend    BackendConfig
	Reply      ReplyConfig
	Credential CredentialConfig
	Chart      ChartConfig
	AI         AIConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	backend, err := loadBackendConfig()
	if err != nil {
		return nil, err
	}

	reply, err := loadReplyConfig()
	if err != nil {
		return nil, err
	}

	chart, err := loadChartConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:     server,
		Backend:    backend,
		Reply:      reply,
		Credential: loadCredentialConfig(),
		Chart:      chart,
		AI:         ai,
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// DemoAPIKey 在未配置后端时使用，内置数据源接受任何 als_ 前缀的密钥。
const DemoAPIKey = "als_demo"

// BackendConfig 描述 ApiLens 用量后端。
type BackendConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Demo 表示未配置后端地址，使用内置演示数据。
func (c BackendConfig) Demo() bool {
	return c.BaseURL == ""
}

func loadBackendConfig() (BackendConfig, error) {
	timeout, err := parseDurationEnv("APILENS_BACKEND_TIMEOUT", 10*time.Second)
	if err != nil {
		return BackendConfig{}, err
	}

	cfg := BackendConfig{
		BaseURL: strings.TrimRight(strings.TrimSpace(os.Getenv("APILENS_BACKEND_URL")), "/"),
		APIKey:  strings.TrimSpace(os.Getenv("APILENS_API_KEY")),
		Timeout: timeout,
	}
	if cfg.Demo() && cfg.APIKey == "" {
		cfg.APIKey = DemoAPIKey
	}
	return cfg, nil
}

// ReplyConfig 控制模拟“思考”延迟与场景数据的随机种子。
type ReplyConfig struct {
	MinDelay time.Duration
	Jitter   time.Duration
	// Seed 为空时每次启动使用当前时间。
	Seed *uint64
}

func loadReplyConfig() (ReplyConfig, error) {
	minDelay, err := parseDurationEnv("REPLY_MIN_DELAY", 1500*time.Millisecond)
	if err != nil {
		return ReplyConfig{}, err
	}

	jitter, err := parseDurationEnv("REPLY_JITTER", time.Second)
	if err != nil {
		return ReplyConfig{}, err
	}

	seed, err := parseOptionalUint64Env("SCENARIO_SEED")
	if err != nil {
		return ReplyConfig{}, err
	}

	return ReplyConfig{MinDelay: minDelay, Jitter: jitter, Seed: seed}, nil
}

// CredentialConfig 描述 API 密钥的存储位置。
type CredentialConfig struct {
	RedisURL   string
	StorageKey string
}

func loadCredentialConfig() CredentialConfig {
	return CredentialConfig{
		RedisURL:   strings.TrimSpace(os.Getenv("REDIS_URL")),
		StorageKey: getEnvOrDefault("APILENS_STORAGE_KEY", "apilens_api_key"),
	}
}

// ChartConfig 描述 SVG 导出的默认尺寸。
type ChartConfig struct {
	Width  int
	Height int
}

func loadChartConfig() (ChartConfig, error) {
	cfg := ChartConfig{Width: 800, Height: 400}

	width, err := parseOptionalIntEnv("CHART_WIDTH")
	if err != nil {
		return ChartConfig{}, err
	}
	if width != nil {
		if *width <= 0 {
			return ChartConfig{}, fmt.Errorf("invalid CHART_WIDTH value %d", *width)
		}
		cfg.Width = *width
	}

	height, err := parseOptionalIntEnv("CHART_HEIGHT")
	if err != nil {
		return ChartConfig{}, err
	}
	if height != nil {
		if *height <= 0 {
			return ChartConfig{}, fmt.Errorf("invalid CHART_HEIGHT value %d", *height)
		}
		cfg.Height = *height
	}

	return cfg, nil
}

// AIConfig 描述大模型相关配置，用于图表解读。
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parseDurationEnv 接受 Go 时长格式（如 "1500ms"）或纯数字毫秒。
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if ms, err := strconv.Atoi(raw); err == nil {
		if ms < 0 {
			return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUint64Env(key string) (*uint64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
