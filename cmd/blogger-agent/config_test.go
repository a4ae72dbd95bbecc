package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig("")

	if cfg.MCP.ServerURL != "http://localhost:8000" && os.Getenv("MCP_SERVER_URL") == "" {
		t.Errorf("Expected default server URL, got %q", cfg.MCP.ServerURL)
	}
	if cfg.MCP.Endpoint != "/mcp" {
		t.Errorf("Expected default endpoint /mcp, got %q", cfg.MCP.Endpoint)
	}
	if cfg.Ollama.Model != "qwen2.5:0.5b" && os.Getenv("OLLAMA_MODEL") == "" {
		t.Errorf("Expected default model, got %q", cfg.Ollama.Model)
	}
}

func TestLoadConfig_TOMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.toml")
	content := `
[mcp]
server_url = "http://mcp.internal:9000"
cache_ttl = "10m"

[ollama]
model = "llama3"

[known_blogs]
"our company blog" = "https://blog.example.com"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg := loadConfig(path)

	if cfg.MCP.ServerURL != "http://mcp.internal:9000" {
		t.Errorf("Expected server URL from file, got %q", cfg.MCP.ServerURL)
	}
	if cfg.MCP.CacheTTL != "10m" {
		t.Errorf("Expected cache_ttl from file, got %q", cfg.MCP.CacheTTL)
	}
	if cfg.Ollama.Model != "llama3" {
		t.Errorf("Expected model from file, got %q", cfg.Ollama.Model)
	}
	if cfg.KnownBlogs["our company blog"] != "https://blog.example.com" {
		t.Errorf("Expected known blog mapping, got %v", cfg.KnownBlogs)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("MCP_SERVER_URL", "http://override:8001")
	t.Setenv("OLLAMA_HOST", "http://override:11435")
	t.Setenv("OLLAMA_MODEL", "qwen2.5:7b")

	cfg := loadConfig("")

	if cfg.MCP.ServerURL != "http://override:8001" {
		t.Errorf("Expected env server URL, got %q", cfg.MCP.ServerURL)
	}
	if cfg.Ollama.Host != "http://override:11435" {
		t.Errorf("Expected env Ollama host, got %q", cfg.Ollama.Host)
	}
	if cfg.Ollama.Model != "qwen2.5:7b" {
		t.Errorf("Expected env model, got %q", cfg.Ollama.Model)
	}
}

func TestParseDuration(t *testing.T) {
	if d := parseDuration("45s", time.Minute); d != 45*time.Second {
		t.Errorf("Expected 45s, got %v", d)
	}
	if d := parseDuration("bogus", time.Minute); d != time.Minute {
		t.Errorf("Expected fallback for invalid input, got %v", d)
	}
	if d := parseDuration("-5s", time.Minute); d != time.Minute {
		t.Errorf("Expected fallback for non-positive duration, got %v", d)
	}
	if d := parseDuration("", time.Minute); d != time.Minute {
		t.Errorf("Expected fallback for empty input, got %v", d)
	}
}
