package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/config"
	"github.com/pageza/recipe-remix/backend/internal/logger"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

const (
	chefSystemPrompt = "You are a helpful chef."
	recipesPrompt    = "Give me 3 recipes using: %s"
)

// ErrNotRecipeList is returned when the model's text parses as JSON null
var ErrNotRecipeList = errors.New("response is not a recipe list")

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completion request
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Response is the subset of the chat-completion response the client reads
type Response struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// RecipeClient talks to a hosted chat-completion endpoint
type RecipeClient struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
	logger *zap.Logger
}

// NewRecipeClient creates a new RecipeClient from configuration
func NewRecipeClient(cfg *config.Config, log *zap.Logger) *RecipeClient {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &RecipeClient{
		apiKey: cfg.LLMAPIKey,
		apiURL: cfg.LLMAPIURL,
		model:  cfg.LLMModel,
		client: &http.Client{Timeout: timeout},
		logger: log,
	}
}

// BuildRequest returns the chat-completion body for an ingredient prompt
func (c *RecipeClient) BuildRequest(prompt string) Request {
	return Request{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: chefSystemPrompt},
			{Role: "user", Content: fmt.Sprintf(recipesPrompt, prompt)},
		},
	}
}

// FetchRecipes asks the model for recipes and parses the first message as a JSON array
func (c *RecipeClient) FetchRecipes(ctx context.Context, prompt string) ([]model.Recipe, error) {
	text, err := c.complete(ctx, c.BuildRequest(prompt))
	if err != nil {
		return nil, err
	}
	return ParseRecipes(text)
}

// ParseRecipes parses model output directly as a recipe array. No validation
// of the records themselves is done.
func ParseRecipes(text string) ([]model.Recipe, error) {
	var recipes []model.Recipe
	if err := json.Unmarshal([]byte(text), &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse recipes: %w", err)
	}
	if recipes == nil {
		return nil, ErrNotRecipeList
	}
	return recipes, nil
}

func (c *RecipeClient) complete(ctx context.Context, reqBody Request) (string, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("[RecipeClient] raw response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// A missing choice yields empty text, which then fails to parse
	if len(result.Choices) == 0 {
		return "", nil
	}
	return result.Choices[0].Message.Content, nil
}
