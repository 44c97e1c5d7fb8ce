package heal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/morozRed/cortexact/internal/errdefs"
	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultEndpoint = "http://127.0.0.1:1234/v1"
	DefaultModel    = "local-model"

	temperature = 0.1
	maxTokens   = 2000
)

// OracleConfig points the healer at an OpenAI-compatible chat completion server.
type OracleConfig struct {
	Endpoint string
	Model    string
	APIKey   string
}

// OracleHealer repairs code through a chat completion call, typically against
// a small local model.
type OracleHealer struct {
	cfg    OracleConfig
	client *openai.Client
	logger *slog.Logger
}

func NewOracleHealer(cfg OracleConfig, logger *slog.Logger) *OracleHealer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OracleHealer{
		cfg:    cfg,
		client: newClient(cfg.Endpoint, cfg.APIKey),
		logger: logger,
	}
}

func newClient(endpoint, apiKey string) *openai.Client {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = NormalizeEndpoint(endpoint)
	return openai.NewClientWithConfig(clientCfg)
}

// NormalizeEndpoint accepts either a base URL or a full chat completions URL.
func NormalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	return strings.TrimSuffix(endpoint, "/chat/completions")
}

func (h *OracleHealer) Heal(ctx context.Context, req Request) (string, error) {
	client := h.client
	endpoint := h.cfg.Endpoint
	if req.Endpoint != "" && NormalizeEndpoint(req.Endpoint) != NormalizeEndpoint(h.cfg.Endpoint) {
		client = newClient(req.Endpoint, h.cfg.APIKey)
		endpoint = req.Endpoint
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: h.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(req.Source, req.Errors)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("repair oracle at %s did not answer in time: %w", endpoint, errdefs.ErrTimeout)
		}
		return "", fmt.Errorf("failed to reach repair oracle at %s: %w", endpoint, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("repair oracle returned no choices")
	}

	code := Sanitize(resp.Choices[0].Message.Content)
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("repair oracle returned empty code")
	}

	h.logger.Debug("repair oracle answered",
		"path", req.Path,
		"errors", len(req.Errors),
		"duration", time.Since(start),
	)
	return code, nil
}
