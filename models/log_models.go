package models

// LogRequest is the body of POST /api/log. Two generations of the widget are
// in play, so both field-name variants (user/ai and prompt/answer) are
// accepted.
type LogRequest struct {
	SessionID string  `json:"sessionId"`
	User      string  `json:"user,omitempty"`
	AI        string  `json:"ai,omitempty"`
	Prompt    string  `json:"prompt,omitempty"`
	Answer    string  `json:"answer,omitempty"`
	Meta      LogMeta `json:"meta,omitempty"`
}

// UserPrompt returns the visitor's prompt under either naming variant.
func (r *LogRequest) UserPrompt() string {
	if r.User != "" {
		return r.User
	}
	return r.Prompt
}

// AIAnswer returns the assistant's answer under either naming variant.
func (r *LogRequest) AIAnswer() string {
	if r.AI != "" {
		return r.AI
	}
	return r.Answer
}

// LogMeta carries request context worth keeping with an exchange.
type LogMeta struct {
	Model     string `json:"model,omitempty"`
	Path      string `json:"path,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
}

// LogRecord is the immutable object written to the log store, one per
// completed exchange.
type LogRecord struct {
	Timestamp  string  `json:"ts"`
	SessionID  string  `json:"sessionId"`
	UserPrompt string  `json:"userPrompt"`
	AIAnswer   string  `json:"aiAnswer"`
	Meta       LogMeta `json:"meta"`
}
