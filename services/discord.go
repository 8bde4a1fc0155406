package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"resumeai/models"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

// DiscordService is an optional second surface for the resume assistant: a
// bot that answers "!resume <question>" in any channel it can read, using the
// same retrieval and completion pipeline as the web widget.
type DiscordService struct {
	session       *discordgo.Session
	knowledge     *KnowledgeService
	groq          *GroqService
	logs          *LogService
	systemPrompt  string
	commandPrefix string
	enabled       bool
	startTime     time.Time
}

// NewDiscordService creates the bot. Without DISCORD_BOT_TOKEN in the
// environment the service stays disabled and the rest of the server runs
// normally.
func NewDiscordService(knowledge *KnowledgeService, groq *GroqService, logs *LogService, systemPrompt string) *DiscordService {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	commandPrefix := os.Getenv("DISCORD_COMMAND_PREFIX")
	if commandPrefix == "" {
		commandPrefix = "!resume "
	}

	service := &DiscordService{
		knowledge:     knowledge,
		groq:          groq,
		logs:          logs,
		systemPrompt:  systemPrompt,
		commandPrefix: commandPrefix,
		enabled:       false,
		startTime:     time.Now(),
	}

	if token == "" {
		log.Info().Msg("Discord bot disabled: DISCORD_BOT_TOKEN not set")
		return service
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Error().Err(err).Msg("error creating Discord session")
		return service
	}
	service.session = session

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		log.Info().Str("user", event.User.Username).Int("guilds", len(event.Guilds)).Msg("Discord bot online")
	})
	session.AddHandler(service.messageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	service.enabled = true
	log.Info().Str("prefix", commandPrefix).Msg("Discord service initialized")
	return service
}

// Start opens the bot's websocket connection.
func (d *DiscordService) Start() error {
	if !d.enabled {
		return fmt.Errorf("Discord service not enabled (missing bot token)")
	}
	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}
	log.Info().Str("prefix", strings.TrimSpace(d.commandPrefix)).Msg("Discord bot started")
	return nil
}

// Stop closes the bot connection.
func (d *DiscordService) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

// messageCreate answers one resume question per prefixed message.
func (d *DiscordService) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}
	if !strings.HasPrefix(m.Content, d.commandPrefix) {
		return
	}

	question := strings.TrimSpace(m.Content[len(d.commandPrefix):])
	if question == "" {
		d.sendMessage(s, m.ChannelID, fmt.Sprintf("Ask me something after `%s`", strings.TrimSpace(d.commandPrefix)))
		return
	}

	s.ChannelTyping(m.ChannelID)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	answer, model, err := d.answer(ctx, question)
	if err != nil {
		log.Error().Err(err).Str("channel", m.ChannelID).Msg("Discord answer failed")
		d.sendMessage(s, m.ChannelID, "Sorry, I couldn't reach my brain just now. Try again in a moment.")
		return
	}

	d.sendMessage(s, m.ChannelID, answer)

	// Same best-effort logging contract as the web widget: the reply above is
	// already out, so a failed write changes nothing for the user.
	sessionID := fmt.Sprintf("discord_%s_%s", m.Author.ID, m.ChannelID)
	go func() {
		logCtx, logCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer logCancel()
		if !d.logs.IsAvailable() {
			return
		}
		req := &models.LogRequest{
			SessionID: sessionID,
			User:      question,
			AI:        answer,
			Meta:      models.LogMeta{Model: model, Path: "discord"},
		}
		if _, err := d.logs.Record(logCtx, req, "discordgo", ""); err != nil {
			log.Debug().Err(err).Msg("discord exchange log failed")
		}
	}()
}

// answer runs the grounded completion for one question.
func (d *DiscordService) answer(ctx context.Context, question string) (string, string, error) {
	system := d.systemPrompt
	if grounding := d.knowledge.ContextFor(ctx, question); grounding != "" {
		system = system + "\n\n" + grounding
	}

	messages := []models.ChatMessage{
		{Role: models.RoleSystem, Content: system},
		{Role: models.RoleUser, Content: question},
	}

	model := d.groq.GetModel()
	answer, err := d.groq.Completion(ctx, model, messages, 0.2, 512)
	if err != nil {
		return "", "", err
	}
	return answer, model, nil
}

// sendMessage sends a reply, splitting it under Discord's 2000 character
// message limit.
func (d *DiscordService) sendMessage(s *discordgo.Session, channelID, message string) {
	if len(message) <= 2000 {
		if _, err := s.ChannelMessageSend(channelID, message); err != nil {
			log.Error().Err(err).Msg("error sending Discord message")
		}
		return
	}

	chunks := d.splitMessage(message, 1900)
	for i, chunk := range chunks {
		if i > 0 {
			chunk = "...continued:\n" + chunk
		}
		if i < len(chunks)-1 {
			chunk = chunk + "\n..."
		}

		if _, err := s.ChannelMessageSend(channelID, chunk); err != nil {
			log.Error().Err(err).Msg("error sending Discord message chunk")
		}

		// Small delay between messages to avoid rate limiting
		time.Sleep(200 * time.Millisecond)
	}
}

// splitMessage splits a message into chunks respecting word boundaries.
func (d *DiscordService) splitMessage(message string, maxLength int) []string {
	if len(message) <= maxLength {
		return []string{message}
	}

	var chunks []string
	for len(message) > maxLength {
		splitIndex := maxLength
		if spaceIndex := strings.LastIndex(message[:maxLength], " "); spaceIndex > maxLength/2 {
			splitIndex = spaceIndex
		}

		chunks = append(chunks, message[:splitIndex])
		message = strings.TrimPrefix(message[splitIndex:], " ")
	}

	if len(message) > 0 {
		chunks = append(chunks, message)
	}
	return chunks
}

// IsEnabled returns whether the Discord service is enabled.
func (d *DiscordService) IsEnabled() bool {
	return d.enabled
}

// GetStatus returns the current status of the Discord service.
func (d *DiscordService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"enabled":        d.enabled,
		"command_prefix": d.commandPrefix,
		"uptime":         time.Since(d.startTime).String(),
	}

	if d.enabled && d.session != nil && d.session.State != nil && d.session.State.User != nil {
		status["status"] = "connected"
		status["user"] = map[string]interface{}{
			"id":       d.session.State.User.ID,
			"username": d.session.State.User.Username,
		}
		status["guilds"] = len(d.session.State.Guilds)
	} else if d.enabled {
		status["status"] = "initialized_not_started"
	} else {
		status["status"] = "disabled"
		status["note"] = "Set DISCORD_BOT_TOKEN environment variable to enable"
	}

	return status
}
