package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"resumeai/client"
	"resumeai/config"
	"resumeai/controllers"
	"resumeai/utils"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Server ties the router, middleware and controllers together.
type Server struct {
	router *mux.Router
	ctrl   *controllers.Controller
	port   string
}

// NewServer creates a new server instance.
func NewServer(port string, ctrl *controllers.Controller) *Server {
	return &Server{
		router: mux.NewRouter(),
		ctrl:   ctrl,
		port:   port,
	}
}

// setupRoutes configures all endpoints.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.ctrl.IndexHandler).Methods("GET")
	s.router.HandleFunc("/assets/resume_qa.json", s.ctrl.KnowledgeBaseHandler).Methods("GET")
	s.router.HandleFunc("/api/chat", s.ctrl.ChatHandler).Methods("POST")
	s.router.HandleFunc("/api/log", s.ctrl.LogHandler).Methods("POST")
	s.router.HandleFunc("/api/contact", s.ctrl.ContactHandler).Methods("POST")
	s.router.HandleFunc("/health", s.ctrl.HealthHandler).Methods("GET")
}

// Start configures and starts the HTTP server.
func (s *Server) Start() error {
	s.setupRoutes()

	// Cross-origin calls are only expected from the deployed portfolio site.
	// Without ALLOWED_ORIGIN the fallback origin blocks everything else;
	// same-origin traffic is unaffected either way.
	origin := os.Getenv("ALLOWED_ORIGIN")
	if origin == "" {
		origin = "https://example.com"
		zlog.Warn().Msg("ALLOWED_ORIGIN not set, cross-origin requests will be rejected")
	}

	c := cors.New(cors.Options{
		AllowedOrigins: []string{origin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
	handler := c.Handler(s.router)

	if !strings.HasPrefix(s.port, ":") {
		s.port = ":" + s.port
	}

	server := &http.Server{
		Addr:         s.port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 300 * time.Second, // streamed answers can run long
	}

	zlog.Info().Str("addr", s.port).Msg("ResumeAI server starting")
	return server.ListenAndServe()
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	utils.LoadEnvWithFallback()

	configPath := flag.String("config", "config.yaml", "Path to the YAML config file")
	enableDiscord := flag.Bool("discord", false, "Enable the Discord bot surface")
	ask := flag.String("ask", "", "Ask one question against a running relay and exit")
	relay := flag.String("relay", "http://localhost:8080", "Relay URL for -ask mode")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("error loading config")
	}

	if *ask != "" {
		runAsk(*relay, *ask)
		return
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	ctrl := controllers.NewController(cfg)
	if err := ctrl.StartServices(*enableDiscord); err != nil {
		zlog.Error().Err(err).Msg("background services failed to start")
	}
	defer ctrl.StopServices()

	server := NewServer(cfg.Port, ctrl)
	if err := server.Start(); err != nil {
		zlog.Fatal().Err(err).Msg("server failed")
	}
}

// runAsk streams one grounded answer from a running relay to stdout.
func runAsk(relayURL, question string) {
	cl := client.New(relayURL)

	err := cl.Ask(context.Background(), question, func(token string) {
		fmt.Print(token)
	})
	fmt.Println()

	if err != nil {
		zlog.Fatal().Err(err).Msg("ask failed")
	}
}
