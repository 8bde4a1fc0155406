package controllers

import (
	"encoding/json"
	"net/http"

	"resumeai/models"

	"github.com/rs/zerolog/log"
)

// ContactHandler relays the contact form to the transactional mail provider.
func (c *Controller) ContactHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, models.CodeValidation, "Method not allowed", "")
		return
	}

	var req models.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Invalid JSON body", "")
		return
	}

	// Honeypot: report success to the bot and send nothing.
	if req.Company != "" {
		log.Info().Msg("contact honeypot tripped, dropping submission")
		writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
		return
	}

	if req.Name == "" || req.Email == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, models.CodeValidation, "Missing required fields", "")
		return
	}

	if !c.mailer.IsAvailable() {
		writeError(w, http.StatusInternalServerError, models.CodeConfig, "Email service not configured", "")
		return
	}

	if err := c.mailer.Send(r.Context(), req); err != nil {
		log.Error().Err(err).Msg("contact relay failed")
		status, detail := upstreamFailure(err)
		writeError(w, status, models.CodeUpstream, "Email service failed", detail)
		return
	}

	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}
