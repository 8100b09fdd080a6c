// Package ai wraps the OpenAI API for ticket assistant replies.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/atendix/atendix/internal/setup/config"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("ai assistant is not configured")
	// ErrEmptyCompletion is returned when the model produces no text.
	ErrEmptyCompletion = errors.New("completion contained no text")
)

// Role identifies which side of the conversation produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of the conversation context sent to the model.
type Turn struct {
	Role    Role
	Content string
}

// Client produces assistant replies. A nil *Client is a valid disabled
// client, which keeps callers free of enablement checks.
type Client struct {
	client    *openai.Client
	breaker   *gobreaker.CircuitBreaker
	semaphore *semaphore.Weighted
	model     string
	maxTokens int64
	logger    *zap.Logger
}

// NewClient creates a new Client. Returns nil when no API key is configured.
func NewClient(cfg *config.OpenAI, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}

	client := openai.NewClient(
		option.WithAPIKey(cfg.APIKey),
		option.WithRequestTimeout(90*time.Second),
		option.WithMaxRetries(0),
	)

	settings := gobreaker.Settings{
		Name:        "openai",
		MaxRequests: 1,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
		OnStateChange: func(_ string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		client:    &client,
		breaker:   gobreaker.NewCircuitBreaker(settings),
		semaphore: semaphore.NewWeighted(cfg.MaxConcurrent),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    logger.Named("ai_client"),
	}
}

// Enabled reports whether the client can produce replies.
func (c *Client) Enabled() bool { return c != nil }

// Reply generates an assistant response for the given conversation. The
// history should hold the most recent turns, oldest first.
func (c *Client) Reply(ctx context.Context, systemPrompt string, history []Turn) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	if err := c.semaphore.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire semaphore: %w", err)
	}
	defer c.semaphore.Release(1)

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, turn := range history {
		switch turn.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:     c.model,
		Messages:  messages,
		MaxTokens: openai.Int(c.maxTokens),
	}

	var reply string
	operation := func() error {
		result, err := c.breaker.Execute(func() (any, error) {
			return c.client.Chat.Completions.New(ctx, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return backoff.Permanent(err)
			}
			c.logger.Warn("Completion request failed", zap.Error(err))
			return err
		}

		completion := result.(*openai.ChatCompletion)
		if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
			return backoff.Permanent(ErrEmptyCompletion)
		}
		reply = completion.Choices[0].Message.Content
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx))
	if err != nil {
		return "", fmt.Errorf("failed to generate reply: %w", err)
	}

	return reply, nil
}
