package services

import (
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
)

// MailerService forwards contact-form submissions to the EmailJS REST API.
type MailerService struct {
	serviceID  string
	templateID string
	privateKey string
	publicKey  string
	endpoint   string
	httpClient *http.Client
}

// NewMailerService reads the EmailJS credentials from the environment. The
// endpoint override (EMAILJS_ENDPOINT) exists for tests and self-hosted
// relays.
func NewMailerService() *MailerService {
	endpoint := os.Getenv("EMAILJS_ENDPOINT")
	if endpoint == "" {
		endpoint = "https://api.emailjs.com/api/v1.0/email/send"
	}

	return &MailerService{
		serviceID:  os.Getenv("EMAILJS_SERVICE_ID"),
		templateID: os.Getenv("EMAILJS_TEMPLATE_ID"),
		privateKey: os.Getenv("EMAILJS_PRIVATE_KEY"),
		publicKey:  os.Getenv("EMAILJS_PUBLIC_KEY"),
		endpoint:   endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsAvailable reports whether the mail credentials are configured.
func (m *MailerService) IsAvailable() bool {
	return m.serviceID != "" && m.templateID != "" && m.privateKey != ""
}

// Send submits one contact message through the provider.
func (m *MailerService) Send(ctx context.Context, req models.ContactRequest) error {
	submittedAt := req.Time
	if submittedAt == "" {
		submittedAt = time.Now().UTC().Format(time.RFC3339)
	}
	title := req.Title
	if title == "" {
		title = "Contact from Portfolio Site"
	}

	payload := map[string]interface{}{
		"service_id":  m.serviceID,
		"template_id": m.templateID,
		"accessToken": m.privateKey,
		"template_params": map[string]string{
			"from_name":    req.Name,
			"from_email":   req.Email,
			"message":      req.Message,
			"form_title":   title,
			"submitted_at": submittedAt,
		},
	}
	if m.publicKey != "" {
		payload["user_id"] = m.publicKey
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call mail API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &UpstreamError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return nil
}

// GetStatus returns a diagnostic snapshot of the mailer.
func (m *MailerService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"endpoint": m.endpoint,
	}

	if m.IsAvailable() {
		status["status"] = "available"
		status["service_id"] = m.serviceID
	} else {
		status["status"] = "unavailable"
		status["error"] = "EmailJS credentials not set"
	}

	return status
}
