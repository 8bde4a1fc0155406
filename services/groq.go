package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"resumeai/models"

	"github.com/rs/zerolog/log"
)

// UpstreamError reports a non-2xx reply from the completion provider. The
// detail is the provider's own diagnostic text, meant for operators.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.Status, e.Detail)
}

// GroqService relays chat completions to Groq's OpenAI-compatible API.
type GroqService struct {
	apiKey        string
	baseURL       string
	defaultModel  string
	allowedModels map[string]bool
	httpClient    *http.Client
}

// NewGroqService creates the upstream client. The API key comes from the
// GROQ_API_KEY environment variable; an empty allow-list falls back to the
// known-good Groq model identifiers.
func NewGroqService(baseURL, defaultModel string, allowed []string) *GroqService {
	apiKey := os.Getenv("GROQ_API_KEY")

	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	if defaultModel == "" {
		defaultModel = "llama-3.1-70b-versatile"
	}
	if len(allowed) == 0 {
		allowed = []string{"llama-3.1-70b-versatile", "llama-3.1-8b-instant", "mixtral-8x7b-32768"}
	}

	allowedModels := make(map[string]bool, len(allowed))
	for _, m := range allowed {
		allowedModels[m] = true
	}

	return &GroqService{
		apiKey:        apiKey,
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		defaultModel:  defaultModel,
		allowedModels: allowedModels,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// IsAvailable reports whether the upstream credential is configured.
func (g *GroqService) IsAvailable() bool {
	return g.apiKey != ""
}

// ResolveModel applies the allow-list: an empty model falls back to the
// default, an unknown identifier is rejected.
func (g *GroqService) ResolveModel(model string) (string, error) {
	if model == "" {
		return g.defaultModel, nil
	}
	if !g.allowedModels[model] {
		return "", fmt.Errorf("model %q not allowed", model)
	}
	return model, nil
}

// completionRequest is the upstream wire format.
type completionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Stream      bool                 `json:"stream"`
}

// completionResponse is the non-streaming upstream reply.
type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// streamChunk is one SSE data payload from the upstream stream.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// post sends a completion request and returns the response for 2xx, or an
// *UpstreamError carrying the provider's diagnostic body otherwise.
func (g *GroqService) post(ctx context.Context, payload completionRequest) (*http.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call completion API: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// Completion performs a non-streaming chat completion and returns the answer
// text.
func (g *GroqService) Completion(ctx context.Context, model string, messages []models.ChatMessage, temperature float64, maxTokens int) (string, error) {
	if !g.IsAvailable() {
		return "", fmt.Errorf("GROQ_API_KEY not set")
	}

	resp, err := g.post(ctx, completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if result.Error != nil {
		return "", fmt.Errorf("completion API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}

// StreamCompletion opens a streaming completion and delivers each content
// delta on the returned channel, in upstream arrival order. The channel
// carries a Done token on natural completion, or an Err token if the stream
// breaks first, and is then closed.
func (g *GroqService) StreamCompletion(ctx context.Context, model string, messages []models.ChatMessage, temperature float64, maxTokens int) (<-chan models.StreamToken, error) {
	if !g.IsAvailable() {
		return nil, fmt.Errorf("GROQ_API_KEY not set")
	}

	resp, err := g.post(ctx, completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, err
	}

	tokens := make(chan models.StreamToken)
	go func() {
		defer close(tokens)
		defer resp.Body.Close()

		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					err = fmt.Errorf("upstream closed before [DONE]")
				}
				g.emit(ctx, tokens, models.StreamToken{Err: err})
				return
			}

			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, ":") {
				continue
			}
			if line == "data: [DONE]" {
				g.emit(ctx, tokens, models.StreamToken{Done: true})
				return
			}
			if !strings.HasPrefix(line, "data: ") {
				continue
			}

			var chunk streamChunk
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
				log.Debug().Err(err).Msg("skipping malformed upstream chunk")
				continue
			}
			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if !g.emit(ctx, tokens, models.StreamToken{Content: chunk.Choices[0].Delta.Content}) {
					return
				}
			}
		}
	}()

	return tokens, nil
}

// emit sends a token unless the caller has gone away.
func (g *GroqService) emit(ctx context.Context, tokens chan<- models.StreamToken, tok models.StreamToken) bool {
	select {
	case tokens <- tok:
		return true
	case <-ctx.Done():
		return false
	}
}

// GetModel returns the configured default model.
func (g *GroqService) GetModel() string {
	return g.defaultModel
}

// GetStatus returns a diagnostic snapshot of the upstream client.
func (g *GroqService) GetStatus() map[string]interface{} {
	allowed := make([]string, 0, len(g.allowedModels))
	for m := range g.allowedModels {
		allowed = append(allowed, m)
	}

	status := map[string]interface{}{
		"base_url":       g.baseURL,
		"default_model":  g.defaultModel,
		"allowed_models": allowed,
		"timeout":        g.httpClient.Timeout.String(),
	}

	if g.IsAvailable() {
		status["status"] = "available"
		if len(g.apiKey) > 8 {
			status["api_key"] = g.apiKey[:4] + "..." + g.apiKey[len(g.apiKey)-4:]
		} else {
			status["api_key"] = "***"
		}
	} else {
		status["status"] = "unavailable"
		status["error"] = "GROQ_API_KEY not set"
	}

	return status
}
