package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"

	"github.com/custodia-labs/checkprioritizer/internal/core/domain"
	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

// Ensure ChatGenerator implements AnswerGenerator
var _ driven.AnswerGenerator = (*ChatGenerator)(nil)

// FactCheckPrompt is the system prompt; %s receives the numbered evidence block.
const FactCheckPrompt = "You are a Fact-Checking Research Assistant. " +
	"Use the following pieces of retrieved claims to answer the user's question. " +
	"If the claims don't contain the answer, say you don't know. " +
	"Always cite your sources by [Source Number].\n\n" +
	"Retrieved Claims:\n%s"

// ChatGenerator drafts answers through an OpenAI-compatible /chat/completions
// endpoint (Groq by default).
type ChatGenerator struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
	breaker     *gobreaker.CircuitBreaker
}

// NewChatGenerator creates a chat-completions generator.
// An empty API key is allowed only for servers that need none (e.g. Ollama).
func NewChatGenerator(settings *domain.LLMSettings, client *http.Client) (*ChatGenerator, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings", domain.ErrNotConfigured)
	}
	if settings.Provider.RequiresAPIKey() && settings.APIKey == "" {
		return nil, fmt.Errorf("%w: %s API key is required", domain.ErrNotConfigured, settings.Provider)
	}

	g := &ChatGenerator{
		apiKey:      settings.APIKey,
		model:       settings.Model,
		baseURL:     strings.TrimRight(settings.BaseURL, "/"),
		temperature: settings.Temperature,
		client:      defaultHTTPClient(client),
		breaker:     newBreaker("chat-" + string(settings.Provider)),
	}
	if g.model == "" {
		g.model = domain.DefaultLLMModel
	}
	if g.baseURL == "" {
		switch settings.Provider {
		case domain.AIProviderOpenAI:
			g.baseURL = "https://api.openai.com/v1"
		case domain.AIProviderOllama:
			g.baseURL = domain.DefaultOllamaBaseURL + "/v1"
		default:
			g.baseURL = domain.DefaultGroqBaseURL
		}
	}
	return g, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Generate sends the system prompt with the evidence block and the user's question
func (g *ChatGenerator) Generate(ctx context.Context, query, contextText string) (string, error) {
	return execute(g.breaker, func() (string, error) {
		return g.complete(ctx, chatRequest{
			Model: g.model,
			Messages: []chatMessage{
				{Role: "system", Content: fmt.Sprintf(FactCheckPrompt, contextText)},
				{Role: "user", Content: query},
			},
			Temperature: g.temperature,
		})
	})
}

func (g *ChatGenerator) complete(ctx context.Context, reqBody chatRequest) (string, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	respBody, httpErr := do(g.client, req)
	var resp chatResponse
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &resp); err != nil && httpErr == nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
	}
	if httpErr != nil {
		if resp.Error != nil {
			return "", fmt.Errorf("chat completion: %s: %w", resp.Error.Message, httpErr)
		}
		return "", fmt.Errorf("chat completion: %w", httpErr)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Model returns the model name being used
func (g *ChatGenerator) Model() string {
	return g.model
}

// Close releases idle connections
func (g *ChatGenerator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
