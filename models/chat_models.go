package models

// Message roles accepted by the relay and forwarded upstream.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single message in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /api/chat. Stream defaults to true when
// absent, so the pointer distinguishes "not sent" from an explicit false.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Model       string        `json:"model,omitempty"`
	Stream      *bool         `json:"stream,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse is the non-streaming relay response.
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
}

// StreamEvent is one server-sent event emitted by the relay in streaming
// mode. The stream ends with a literal "data: [DONE]" marker rather than a
// StreamEvent.
type StreamEvent struct {
	Token string `json:"token"`
}

// StreamToken is one incremental fragment read from the upstream completion.
type StreamToken struct {
	Content string
	Done    bool
	Err     error
}
