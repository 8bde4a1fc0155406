package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the non-secret settings for the server and CLI. Secrets
// (upstream API key, blob token, mail credentials, Discord token) always come
// from the environment, never from the file.
type Config struct {
	Port          string   `yaml:"port"`
	UpstreamBase  string   `yaml:"upstream_base"`
	DefaultModel  string   `yaml:"default_model"`
	AllowedModels []string `yaml:"allowed_models"`
	SystemPrompt  string   `yaml:"system_prompt"`
	ContextBudget int      `yaml:"context_budget"`
	KBPath        string   `yaml:"kb_path"`
	LogDir        string   `yaml:"log_dir"`
	LogPrefix     string   `yaml:"log_prefix"`
}

// DefaultSystemPrompt is the persona used when the client supplies no system
// message of its own.
const DefaultSystemPrompt = "You are ResumeAI, a concise assistant that answers visitor questions " +
	"about this portfolio's owner using the resume details provided. If a detail is not in the " +
	"provided context, say you don't have it rather than guessing."

// Default returns the settings used when no config file is present.
func Default() *Config {
	return &Config{
		Port:         "8080",
		UpstreamBase: "https://api.groq.com/openai/v1",
		DefaultModel: "llama-3.1-70b-versatile",
		AllowedModels: []string{
			"llama-3.1-70b-versatile",
			"llama-3.1-8b-instant",
			"mixtral-8x7b-32768",
		},
		SystemPrompt:  DefaultSystemPrompt,
		ContextBudget: 6000,
		KBPath:        "assets/resume_qa.json",
		LogDir:        "",
		LogPrefix:     "resume-ai/logs",
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults are complete on their own.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
