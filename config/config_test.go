package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.DefaultModel != "llama-3.1-70b-versatile" {
		t.Errorf("default model = %q", cfg.DefaultModel)
	}
	if len(cfg.AllowedModels) != 3 {
		t.Errorf("allowed models = %v", cfg.AllowedModels)
	}
	if cfg.ContextBudget != 6000 {
		t.Errorf("context budget = %d", cfg.ContextBudget)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Error("system prompt not defaulted")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "port: \"9090\"\ndefault_model: \"llama-3.1-8b-instant\"\nallowed_models:\n  - \"llama-3.1-8b-instant\"\ncontext_budget: 2000\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.DefaultModel != "llama-3.1-8b-instant" {
		t.Errorf("default model = %q", cfg.DefaultModel)
	}
	if len(cfg.AllowedModels) != 1 {
		t.Errorf("allowed models = %v", cfg.AllowedModels)
	}
	if cfg.ContextBudget != 2000 {
		t.Errorf("context budget = %d", cfg.ContextBudget)
	}

	// Keys absent from the file keep their defaults.
	if cfg.KBPath != "assets/resume_qa.json" {
		t.Errorf("kb path = %q", cfg.KBPath)
	}
	if cfg.SystemPrompt != DefaultSystemPrompt {
		t.Error("system prompt lost its default")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [not a string"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
