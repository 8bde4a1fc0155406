package controllers

import (
	"encoding/json"
	"net/http"

	"resumeai/models"

	"github.com/rs/zerolog/log"
)

// LogHandler persists one completed exchange. The widget fires this after the
// answer has fully streamed and never waits on the outcome, so nothing here
// can affect what the visitor already saw.
func (c *Controller) LogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, models.CodeValidation, "Method not allowed", "")
		return
	}

	var req models.LogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON body", "")
		return
	}

	if req.UserPrompt() == "" || req.AIAnswer() == "" {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Both prompt and answer are required", "")
		return
	}

	if !c.logs.IsAvailable() {
		writeError(w, http.StatusInternalServerError, models.CodeConfig, "Log store not configured", "")
		return
	}

	key, err := c.logs.Record(r.Context(), &req, r.UserAgent(), r.Referer())
	if err != nil {
		log.Error().Err(err).Msg("log write failed")
		writeError(w, http.StatusInternalServerError, models.CodeUpstream, "Log write failed", err.Error())
		return
	}

	log.Debug().Str("key", key).Str("session", req.SessionID).Msg("exchange recorded")
	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}
