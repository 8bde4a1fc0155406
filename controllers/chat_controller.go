package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"resumeai/models"
	"resumeai/services"

	"github.com/rs/zerolog/log"
)

const (
	defaultTemperature = 0.2
	defaultMaxTokens   = 512
)

// ChatHandler relays a chat request to the upstream completion API, streaming
// the answer back token by token unless the client asked for a single body.
func (c *Controller) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, models.CodeValidation, "Method not allowed", "")
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON body", "")
		return
	}

	messages := req.Messages
	if len(messages) == 0 {
		// The widget failed to build context; keep the exchange alive with
		// the default persona instead of refusing.
		messages = []models.ChatMessage{
			{Role: models.RoleSystem, Content: c.systemPrompt},
			{Role: models.RoleUser, Content: "Hello"},
		}
	}

	if err := validateMessageOrder(messages); err != nil {
		writeError(w, http.StatusBadRequest, models.CodeValidation, err.Error(), "")
		return
	}

	model, err := c.groq.ResolveModel(req.Model)
	if err != nil {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Model not allowed", req.Model)
		return
	}

	if !c.groq.IsAvailable() {
		writeError(w, http.StatusInternalServerError, models.CodeConfig, "Server misconfigured: GROQ_API_KEY missing", "")
		return
	}

	temperature := defaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := defaultMaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}
	stream := true
	if req.Stream != nil {
		stream = *req.Stream
	}

	if !stream {
		content, err := c.groq.Completion(r.Context(), model, messages, temperature, maxTokens)
		if err != nil {
			status, detail := upstreamFailure(err)
			writeError(w, status, models.CodeUpstream, "Completion failed", detail)
			return
		}
		writeJSON(w, http.StatusOK, models.ChatResponse{Content: content, Model: model})
		return
	}

	c.streamChat(w, r, model, messages, temperature, maxTokens)
}

// streamChat forwards upstream deltas as SSE events, ending with a terminal
// [DONE] marker on natural completion only.
func (c *Controller) streamChat(w http.ResponseWriter, r *http.Request, model string, messages []models.ChatMessage, temperature float64, maxTokens int) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, models.CodeConfig, "Streaming not supported", "")
		return
	}

	tokens, err := c.groq.StreamCompletion(r.Context(), model, messages, temperature, maxTokens)
	if err != nil {
		status, detail := upstreamFailure(err)
		writeError(w, status, models.CodeUpstream, "Completion failed", detail)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for tok := range tokens {
		if tok.Err != nil {
			// Streaming already began: close without the terminal marker so
			// the client treats the truncated answer as a failure.
			log.Error().Err(tok.Err).Str("model", model).Msg("upstream stream broke mid-answer")
			return
		}
		if tok.Done {
			fmt.Fprint(w, "data: [DONE]\n\n")
			flusher.Flush()
			return
		}

		data, err := json.Marshal(models.StreamEvent{Token: tok.Content})
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}
}

// validateMessageOrder enforces that a system message, when present, comes
// before any user or assistant messages.
func validateMessageOrder(messages []models.ChatMessage) error {
	for i, m := range messages {
		if m.Role == models.RoleSystem && i > 0 {
			return fmt.Errorf("system message must precede all other messages")
		}
	}
	return nil
}

// upstreamFailure maps an upstream error to a status code and diagnostic
// detail: 502 for a provider-side rejection, 500 for everything else.
func upstreamFailure(err error) (int, string) {
	var ue *services.UpstreamError
	if errors.As(err, &ue) {
		return http.StatusBadGateway, ue.Detail
	}
	return http.StatusInternalServerError, err.Error()
}
