package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/julianstephens/soulsync/internal/constants"
	"github.com/julianstephens/soulsync/internal/logger"
	"github.com/julianstephens/soulsync/internal/models"
)

type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	ReflectionModel string
	Timeout         time.Duration
	HTTPClient      *http.Client
}

// Client talks to an OpenAI-compatible chat completion endpoint, Groq by default.
type Client struct {
	cfg Config
	api *openai.Client
}

func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultBaseURL
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = constants.DefaultChatModel
	}
	if cfg.ReflectionModel == "" {
		cfg.ReflectionModel = constants.DefaultReflectionModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DefaultAITimeout
	}

	c := &Client{cfg: cfg}
	if strings.TrimSpace(cfg.APIKey) != "" {
		apiCfg := openai.DefaultConfig(strings.TrimSpace(cfg.APIKey))
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
		if cfg.HTTPClient != nil {
			apiCfg.HTTPClient = cfg.HTTPClient
		}
		c.api = openai.NewClientWithConfig(apiCfg)
	}
	return c
}

// Configured reports whether an API key was supplied.
func (c *Client) Configured() bool {
	return c.api != nil
}

func (c *Client) Model() string {
	return c.cfg.ChatModel
}

// Reply returns the assistant's next chat turn. Every failure is a
// *ServiceError; a missing key fails without any network call.
func (c *Client) Reply(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessage{{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatSystemPrompt(req),
	}}
	for _, m := range req.Conversation {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return c.complete(ctx, openai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    messages,
		Temperature: constants.Temperature,
		MaxTokens:   constants.ChatMaxTokens,
	})
}

// Reflect returns a short supportive reflection on a journal entry.
func (c *Client) Reflect(ctx context.Context, entry string) (string, error) {
	return c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.ReflectionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: reflectionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "My journal entry: " + entry},
		},
		Temperature: constants.Temperature,
		MaxTokens:   constants.ReflectionMaxTokens,
	})
}

func (c *Client) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.api == nil {
		return "", &ServiceError{Kind: KindMissingCredentials}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	log := logger.With("assistant")
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		serr := classify(err)
		log.Warn("Chat completion failed", "model", req.Model, "kind", serr.Kind, "error", err)
		return "", serr
	}
	log.Debug("Chat completion", "model", req.Model, "tokens", resp.Usage.TotalTokens, "took", time.Since(start))

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ServiceError{Kind: KindProvider, Err: errors.New("empty response")}
	}
	return resp.Choices[0].Message.Content, nil
}
