package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resumeai/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BlobStore writes one immutable object per key. Keys use forward slashes;
// objects are never read back or rewritten by this service, which is what
// keeps concurrent writers from losing records to a read-modify-write race.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
}

// FSBlobStore stores objects as files under a root directory.
type FSBlobStore struct {
	Root string
}

// Put writes one object, creating partition directories as needed.
func (s *FSBlobStore) Put(ctx context.Context, key string, data []byte) error {
	path := filepath.Join(s.Root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log partition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write log object: %w", err)
	}
	return nil
}

// HTTPBlobStore uploads objects to an external blob endpoint with a bearer
// token, the hosted-storage counterpart of FSBlobStore.
type HTTPBlobStore struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// Put uploads one object to {base}/{key}.
func (s *HTTPBlobStore) Put(ctx context.Context, key string, data []byte) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	url := strings.TrimSuffix(s.BaseURL, "/") + "/" + key
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build blob request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload log object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &UpstreamError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}
	return nil
}

// NewLogStore picks the configured blob backend: a hosted endpoint when
// BLOB_STORE_URL is set, a local directory when logDir is, nil when neither.
func NewLogStore(logDir string) BlobStore {
	if base := os.Getenv("BLOB_STORE_URL"); base != "" {
		return &HTTPBlobStore{BaseURL: base, Token: os.Getenv("BLOB_STORE_TOKEN")}
	}
	if logDir == "" {
		logDir = os.Getenv("LOG_DIR")
	}
	if logDir != "" {
		return &FSBlobStore{Root: logDir}
	}
	return nil
}

// LogService persists one record per completed chat exchange.
type LogService struct {
	store  BlobStore
	prefix string
}

// NewLogService creates the recorder. A nil store leaves the service
// unavailable; callers reject log requests with a configuration error.
func NewLogService(store BlobStore, prefix string) *LogService {
	if prefix == "" {
		prefix = "resume-ai/logs"
	}
	return &LogService{store: store, prefix: prefix}
}

// IsAvailable reports whether a log store is configured.
func (l *LogService) IsAvailable() bool {
	return l.store != nil
}

// Record writes one exchange under its daily partition and returns the key.
// One object per record: concurrent exchanges never contend on a shared file.
func (l *LogService) Record(ctx context.Context, req *models.LogRequest, userAgent, referrer string) (string, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	meta := req.Meta
	if meta.UserAgent == "" {
		meta.UserAgent = userAgent
	}
	if meta.Referrer == "" {
		meta.Referrer = referrer
	}

	now := time.Now().UTC()
	record := models.LogRecord{
		Timestamp:  now.Format(time.RFC3339),
		SessionID:  sessionID,
		UserPrompt: req.UserPrompt(),
		AIAnswer:   req.AIAnswer(),
		Meta:       meta,
	}

	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal log record: %w", err)
	}
	data = append(data, '\n')

	key := fmt.Sprintf("%s/%s/%s/%d.jsonl", l.prefix, now.Format("2006-01-02"), sessionID, now.UnixNano())
	if err := l.store.Put(ctx, key, data); err != nil {
		return "", err
	}

	log.Debug().Str("key", key).Msg("exchange logged")
	return key, nil
}

// GetStatus returns a diagnostic snapshot of the log recorder.
func (l *LogService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"prefix": l.prefix,
	}

	switch l.store.(type) {
	case *FSBlobStore:
		status["status"] = "available"
		status["backend"] = "filesystem"
	case *HTTPBlobStore:
		status["status"] = "available"
		status["backend"] = "blob_endpoint"
	default:
		status["status"] = "unavailable"
		status["error"] = "no log store configured (set LOG_DIR or BLOB_STORE_URL)"
	}

	return status
}
