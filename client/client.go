// Package client talks to a running ResumeAI relay the way the browser
// widget does: fetch the knowledge base, rank it against the question,
// assemble grounding context, stream the answer, then log the exchange
// without waiting on the result.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"resumeai/config"
	"resumeai/models"
	"resumeai/services"

	"github.com/rs/zerolog/log"
)

// OnToken receives each decoded answer fragment, in arrival order.
type OnToken func(token string)

// Client is one widget instance bound to a relay URL.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	session       *Session
	systemPrompt  string
	contextBudget int
}

// New creates a client for the relay at baseURL. The HTTP client carries no
// global timeout: a streaming answer lives as long as the caller's context.
func New(baseURL string) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		httpClient:    &http.Client{},
		session:       NewSession(),
		systemPrompt:  config.DefaultSystemPrompt,
		contextBudget: 6000,
	}
}

// StreamChat posts a chat request and invokes onToken for every token until
// the relay emits its terminal marker. One attempt only; whether to retry is
// the caller's decision. Cancelling ctx aborts the underlying connection.
func (c *Client) StreamChat(ctx context.Context, req models.ChatRequest, onToken OnToken) error {
	stream := true
	req.Stream = &stream

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chat failed: status %d %s: %s", resp.StatusCode, resp.Status, strings.TrimSpace(string(detail)))
	}

	return readEventStream(resp.Body, onToken)
}

// StreamPrompt normalizes a bare prompt into a one-message request and
// streams it.
func (c *Client) StreamPrompt(ctx context.Context, prompt string, onToken OnToken) error {
	req := models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: strings.TrimSpace(prompt)},
		},
	}
	return c.StreamChat(ctx, req, onToken)
}

// Ask runs the full widget pipeline for one question: load the knowledge
// base, rank and assemble grounding, stream the answer through onToken, then
// record the exchange fire-and-forget.
func (c *Client) Ask(ctx context.Context, prompt string, onToken OnToken) error {
	loader := &services.HTTPLoader{BaseURL: c.baseURL, Client: c.httpClient}
	grounding := services.NewKnowledgeService(loader, c.contextBudget).ContextFor(ctx, prompt)

	system := c.systemPrompt
	if grounding != "" {
		system = system + "\n\n" + grounding
	} else {
		system = system + "\n\nNote: detailed resume data is unavailable right now; say so if asked for specifics."
	}

	req := models.ChatRequest{
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: system},
			{Role: models.RoleUser, Content: strings.TrimSpace(prompt)},
		},
	}

	var answer strings.Builder
	err := c.StreamChat(ctx, req, func(token string) {
		answer.WriteString(token)
		onToken(token)
	})
	if err != nil {
		return err
	}

	c.recordExchange(prompt, answer.String(), req.Model)
	return nil
}

// recordExchange dispatches the log write in a detached goroutine. Failures
// are swallowed after a debug line: logging must never disturb an exchange
// the visitor already saw.
func (c *Client) recordExchange(prompt, answer, model string) {
	req := models.LogRequest{
		SessionID: c.session.ID(),
		User:      prompt,
		AI:        answer,
		Meta:      models.LogMeta{Model: model, Path: "/"},
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.postLog(ctx, req); err != nil {
			log.Debug().Err(err).Msg("exchange log failed")
		}
	}()
}

// postLog performs the single log POST behind recordExchange.
func (c *Client) postLog(ctx context.Context, req models.LogRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal log request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/log", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build log request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("log request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("log failed: status %d", resp.StatusCode)
	}
	return nil
}

// readEventStream decodes the relay's SSE framing from an arbitrary chunking
// of the response body. Bytes are carried across reads, so UTF-8 sequences
// and event boundaries split mid-chunk reassemble exactly. A stream that ends
// without the terminal marker is an error: the answer may be truncated.
func readEventStream(body io.Reader, onToken OnToken) error {
	var carry []byte
	buf := make([]byte, 2048)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			carry = append(carry, buf[:n]...)
			for {
				idx := bytes.Index(carry, []byte("\n\n"))
				if idx < 0 {
					break
				}
				event := carry[:idx]
				carry = carry[idx+2:]

				token, done := parseEvent(event)
				if done {
					return nil
				}
				if token != "" {
					onToken(token)
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				return fmt.Errorf("stream closed before terminal marker")
			}
			return fmt.Errorf("read stream: %w", err)
		}
	}
}

// parseEvent extracts the token from one "data: ..." event. Comment lines
// and frames that fail to parse are skipped.
func parseEvent(event []byte) (token string, done bool) {
	line := strings.TrimSpace(string(event))
	if !strings.HasPrefix(line, "data: ") {
		return "", false
	}

	data := strings.TrimPrefix(line, "data: ")
	if data == "[DONE]" {
		return "", true
	}

	var ev models.StreamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return "", false
	}
	return ev.Token, false
}
