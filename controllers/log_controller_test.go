package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeai/models"
	"resumeai/services"
)

type failingStore struct{}

func (failingStore) Put(ctx context.Context, key string, data []byte) error {
	return errors.New("disk full")
}

func postLog(c *Controller, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(body))
	req.Header.Set("User-Agent", "widget/1.0")
	w := httptest.NewRecorder()
	c.LogHandler(w, req)
	return w
}

func TestLogHandler_MethodNotAllowed(t *testing.T) {
	c := &Controller{logs: services.NewLogService(&services.FSBlobStore{Root: t.TempDir()}, "")}

	req := httptest.NewRequest(http.MethodGet, "/api/log", nil)
	w := httptest.NewRecorder()
	c.LogHandler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestLogHandler_InvalidJSON(t *testing.T) {
	c := &Controller{logs: services.NewLogService(&services.FSBlobStore{Root: t.TempDir()}, "")}

	if w := postLog(c, "{not json"); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestLogHandler_RequiresPromptAndAnswer(t *testing.T) {
	c := &Controller{logs: services.NewLogService(&services.FSBlobStore{Root: t.TempDir()}, "")}

	tests := []string{
		`{"sessionId":"s","user":"only prompt"}`,
		`{"sessionId":"s","ai":"only answer"}`,
		`{}`,
	}
	for _, body := range tests {
		w := postLog(c, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want %d", body, w.Code, http.StatusBadRequest)
		}
		if e := decodeError(t, w); e.Code != models.CodeValidation {
			t.Errorf("body %s: code = %q, want %q", body, e.Code, models.CodeValidation)
		}
	}
}

func TestLogHandler_StoreNotConfigured(t *testing.T) {
	c := &Controller{logs: services.NewLogService(nil, "")}

	w := postLog(c, `{"sessionId":"s","user":"p","ai":"a"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if e := decodeError(t, w); e.Code != models.CodeConfig {
		t.Errorf("code = %q, want %q", e.Code, models.CodeConfig)
	}
}

func TestLogHandler_StoreFailure(t *testing.T) {
	c := &Controller{logs: services.NewLogService(failingStore{}, "")}

	w := postLog(c, `{"sessionId":"s","user":"p","ai":"a"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	if e := decodeError(t, w); e.Code != models.CodeUpstream {
		t.Errorf("code = %q, want %q", e.Code, models.CodeUpstream)
	}
}

func TestLogHandler_WritesRecord(t *testing.T) {
	root := t.TempDir()
	c := &Controller{logs: services.NewLogService(&services.FSBlobStore{Root: root}, "resume-ai/logs")}

	w := postLog(c, `{"sessionId":"sess-9","user":"What do you do?","ai":"I build backends."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp models.OKResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.OK {
		t.Fatalf("body = %s, want ok:true", w.Body.String())
	}

	var files []string
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if len(files) != 1 {
		t.Fatalf("expected one record object, found %d", len(files))
	}

	data, _ := os.ReadFile(files[0])
	var rec models.LogRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("record is not valid JSON: %v", err)
	}
	if rec.SessionID != "sess-9" || rec.UserPrompt != "What do you do?" {
		t.Errorf("record content mismatch: %+v", rec)
	}
	if rec.Meta.UserAgent != "widget/1.0" {
		t.Errorf("user agent not captured: %+v", rec.Meta)
	}
}
