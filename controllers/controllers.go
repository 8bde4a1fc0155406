package controllers

import (
	"encoding/json"
	"net/http"

	"resumeai/config"
	"resumeai/models"
	"resumeai/services"

	"github.com/rs/zerolog/log"
)

// Controller wires the HTTP surface to the services behind it.
type Controller struct {
	knowledge      *services.KnowledgeService
	groq           *services.GroqService
	logs           *services.LogService
	mailer         *services.MailerService
	discordService *services.DiscordService
	kbPath         string
	systemPrompt   string
}

// NewController assembles all services from the loaded configuration.
func NewController(cfg *config.Config) *Controller {
	knowledge := services.NewKnowledgeService(&services.FileLoader{Path: cfg.KBPath}, cfg.ContextBudget)
	groq := services.NewGroqService(cfg.UpstreamBase, cfg.DefaultModel, cfg.AllowedModels)
	logs := services.NewLogService(services.NewLogStore(cfg.LogDir), cfg.LogPrefix)
	mailer := services.NewMailerService()
	discordService := services.NewDiscordService(knowledge, groq, logs, cfg.SystemPrompt)

	return &Controller{
		knowledge:      knowledge,
		groq:           groq,
		logs:           logs,
		mailer:         mailer,
		discordService: discordService,
		kbPath:         cfg.KBPath,
		systemPrompt:   cfg.SystemPrompt,
	}
}

// StartServices starts all background services (Discord bot, etc.)
func (c *Controller) StartServices(enableDiscord bool) error {
	if enableDiscord && c.discordService.IsEnabled() {
		if err := c.discordService.Start(); err != nil {
			log.Error().Err(err).Msg("failed to start Discord service")
			return err
		}
	} else if enableDiscord && !c.discordService.IsEnabled() {
		log.Warn().Msg("Discord service requested but not configured (missing DISCORD_BOT_TOKEN)")
	} else {
		log.Info().Msg("Discord service disabled via command line flag")
	}

	return nil
}

// StopServices stops all background services.
func (c *Controller) StopServices() error {
	if c.discordService != nil {
		return c.discordService.Stop()
	}
	return nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

// writeError writes the structured error body used by every endpoint.
func writeError(w http.ResponseWriter, status int, code, message, detail string) {
	writeJSON(w, status, models.ErrorResponse{
		Error:  message,
		Code:   code,
		Detail: detail,
	})
}
