package controllers

import (
	"fmt"
	"net/http"
	"os"

	"resumeai/models"

	"github.com/rs/zerolog/log"
)

// IndexHandler serves a minimal landing page describing the API surface.
func (c *Controller) IndexHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	html := `<!DOCTYPE html>
<html>
<head>
	<title>ResumeAI</title>
	<style>
		body { font-family: Arial, sans-serif; margin: 40px; }
		.container { max-width: 600px; }
		.endpoint { background: #f5f5f5; padding: 15px; margin: 10px 0; border-radius: 5px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>ResumeAI</h1>
		<p>Relay behind the portfolio chat widget.</p>

		<h2>Endpoints:</h2>
		<div class="endpoint"><strong>GET /assets/resume_qa.json</strong> - Knowledge base</div>
		<div class="endpoint"><strong>POST /api/chat</strong> - Chat relay (SSE or JSON)</div>
		<div class="endpoint"><strong>POST /api/log</strong> - Exchange log</div>
		<div class="endpoint"><strong>POST /api/contact</strong> - Contact form relay</div>
		<div class="endpoint"><strong>GET /health</strong> - Health check</div>
	</div>
</body>
</html>`

	fmt.Fprint(w, html)
}

// KnowledgeBaseHandler serves the resume document, read from disk on every
// request so edits show up without a restart.
func (c *Controller) KnowledgeBaseHandler(w http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(c.kbPath)
	if err != nil {
		log.Error().Err(err).Str("path", c.kbPath).Msg("knowledge base unreadable")
		writeError(w, http.StatusInternalServerError, models.CodeConfig, "Knowledge base unavailable", "")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// HealthHandler aggregates the status of every service behind the API.
func (c *Controller) HealthHandler(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"service":   "resumeai",
		"endpoints": []string{"/", "/assets/resume_qa.json", "/api/chat", "/api/log", "/api/contact", "/health"},
		"upstream":  c.groq.GetStatus(),
		"logs":      c.logs.GetStatus(),
		"mail":      c.mailer.GetStatus(),
	}
	if c.discordService != nil {
		health["discord"] = c.discordService.GetStatus()
	}

	writeJSON(w, http.StatusOK, health)
}
