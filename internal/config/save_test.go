package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSaveExecutionPreferencesCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")
	quality := 0.35

	saved, err := SaveExecutionPreferences(ExecutionConfig{
		Local:       true,
		Model:       "huggingface/TheBloke/Mistral-7B-Instruct-v0.1-GGUF",
		APIKey:      "sk-should-not-persist",
		GGUFQuality: &quality,
	}, WithConfigPath(path))
	if err != nil {
		t.Fatalf("SaveExecutionPreferences returned error: %v", err)
	}
	if saved != path {
		t.Fatalf("expected path %q, got %q", path, saved)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if v, ok := raw["local"].(bool); !ok || !v {
		t.Fatalf("expected local true, got %v", raw["local"])
	}
	if v, ok := raw["gguf_quality"].(float64); !ok || v != 0.35 {
		t.Fatalf("expected gguf_quality 0.35, got %v", raw["gguf_quality"])
	}
	if _, ok := raw["api_key"]; ok {
		t.Fatal("api_key must never be written")
	}
}

func TestSaveExecutionPreferencesPreservesExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	existing := "api_key: sk-existing\npip_command: python3 -m pip\ngguf_quality: 0.5\n"
	if err := os.WriteFile(path, []byte(existing), 0o600); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	if _, err := SaveExecutionPreferences(ExecutionConfig{Model: "gpt-4", AutoRun: true}, WithConfigPath(path)); err != nil {
		t.Fatalf("SaveExecutionPreferences returned error: %v", err)
	}

	cfg, _, err := Load(WithConfigPath(path), WithEnv(envMap{}.Lookup))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Execution.APIKey != "sk-existing" {
		t.Fatalf("expected existing api key to survive, got %q", cfg.Execution.APIKey)
	}
	if cfg.PipCommand != "python3 -m pip" {
		t.Fatalf("expected pip command to survive, got %q", cfg.PipCommand)
	}
	if cfg.Execution.Model != "gpt-4" || !cfg.Execution.AutoRun || cfg.Execution.Local {
		t.Fatalf("unexpected execution config: %+v", cfg.Execution)
	}
	if cfg.Execution.GGUFQuality != nil {
		t.Fatalf("expected unset gguf_quality to be removed, got %v", *cfg.Execution.GGUFQuality)
	}
}

func TestSaveExecutionPreferencesRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("local: [unterminated"), 0o600); err != nil {
		t.Fatalf("write existing: %v", err)
	}

	if _, err := SaveExecutionPreferences(ExecutionConfig{}, WithConfigPath(path)); err == nil {
		t.Fatal("expected parse error")
	}
}
