package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeai/models"
	"resumeai/services"
)

func TestKnowledgeBaseHandler_ServesDocumentFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume_qa.json")
	doc := `{"profile":{"name":"Alex","summary":"Engineer"},"highlights":[],"qa":[]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c := &Controller{kbPath: path}
	w := httptest.NewRecorder()
	c.KnowledgeBaseHandler(w, httptest.NewRequest(http.MethodGet, "/assets/resume_qa.json", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if w.Body.String() != doc {
		t.Errorf("body = %q, want the file verbatim", w.Body.String())
	}

	// Edits must show up without a restart.
	updated := strings.Replace(doc, "Alex", "Sam", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	w = httptest.NewRecorder()
	c.KnowledgeBaseHandler(w, httptest.NewRequest(http.MethodGet, "/assets/resume_qa.json", nil))
	if !strings.Contains(w.Body.String(), "Sam") {
		t.Error("handler served a stale document")
	}
}

func TestKnowledgeBaseHandler_MissingDocument(t *testing.T) {
	c := &Controller{kbPath: filepath.Join(t.TempDir(), "missing.json")}
	w := httptest.NewRecorder()
	c.KnowledgeBaseHandler(w, httptest.NewRequest(http.MethodGet, "/assets/resume_qa.json", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if e := decodeError(t, w); e.Code != models.CodeConfig {
		t.Errorf("code = %q, want %q", e.Code, models.CodeConfig)
	}
}

func TestHealthHandler_AggregatesServiceStatus(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "test-key")
	t.Setenv("EMAILJS_SERVICE_ID", "")
	t.Setenv("EMAILJS_TEMPLATE_ID", "")
	t.Setenv("EMAILJS_PRIVATE_KEY", "")
	t.Setenv("EMAILJS_PUBLIC_KEY", "")
	t.Setenv("EMAILJS_ENDPOINT", "")

	c := &Controller{
		groq:   services.NewGroqService("", "test-model", []string{"test-model"}),
		logs:   services.NewLogService(&services.FSBlobStore{Root: t.TempDir()}, ""),
		mailer: services.NewMailerService(),
	}

	w := httptest.NewRecorder()
	c.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var health map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("bad health body: %v", err)
	}
	if health["status"] != "healthy" {
		t.Errorf("status = %v", health["status"])
	}
	for _, key := range []string{"upstream", "logs", "mail"} {
		if _, ok := health[key].(map[string]interface{}); !ok {
			t.Errorf("health missing %q section", key)
		}
	}
	mail, _ := health["mail"].(map[string]interface{})
	if mail["status"] != "unavailable" {
		t.Errorf("mail status = %v, want unavailable without credentials", mail["status"])
	}
}

func TestIndexHandler_ListsEndpoints(t *testing.T) {
	c := &Controller{}
	w := httptest.NewRecorder()
	c.IndexHandler(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, endpoint := range []string{"/api/chat", "/api/log", "/api/contact", "/health"} {
		if !strings.Contains(w.Body.String(), endpoint) {
			t.Errorf("index page missing %s", endpoint)
		}
	}
}
