package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/karthiks/query-blogger-mcp-server/internal/agent"
	"github.com/karthiks/query-blogger-mcp-server/internal/common"
	"github.com/karthiks/query-blogger-mcp-server/internal/mcpclient"
)

// MCPConfig holds the MCP server connection settings.
type MCPConfig struct {
	ServerURL string `toml:"server_url"`
	Endpoint  string `toml:"endpoint"`
	Timeout   string `toml:"timeout"`
	CacheTTL  string `toml:"cache_ttl"`
}

// OllamaConfig holds the local LLM settings.
type OllamaConfig struct {
	Host  string `toml:"host"`
	Model string `toml:"model"`
}

// Config holds all blogger-agent configuration.
type Config struct {
	MCP        MCPConfig            `toml:"mcp"`
	Ollama     OllamaConfig         `toml:"ollama"`
	KnownBlogs map[string]string    `toml:"known_blogs"`
	Logging    common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		MCP: MCPConfig{
			ServerURL: "http://localhost:8000",
			Endpoint:  "/mcp",
			Timeout:   "30s",
			CacheTTL:  "5m",
		},
		Ollama: OllamaConfig{
			Host:  "http://localhost:11434",
			Model: "qwen2.5:0.5b",
		},
		Logging: common.LoggingConfig{
			Level:      "warn",
			Outputs:    []string{"file"},
			FilePath:   "logs/blogger-agent.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// loadConfig loads configuration from a TOML file with defaults and env overrides.
func loadConfig(path string) Config {
	cfg := newDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Fatalf("Failed to read config file %s: %v", path, err)
			}
			// File not found — use defaults
		} else {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				log.Fatalf("Failed to parse config file %s: %v", path, err)
			}
		}
	}

	if url := os.Getenv("MCP_SERVER_URL"); url != "" {
		cfg.MCP.ServerURL = url
	}
	if host := os.Getenv("OLLAMA_HOST"); host != "" {
		cfg.Ollama.Host = host
	}
	if model := os.Getenv("OLLAMA_MODEL"); model != "" {
		cfg.Ollama.Model = model
	}

	return cfg
}

// parseDuration parses a config duration with a fallback.
func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func showIntro(cfg Config) {
	fmt.Printf("Using local LLM model: %s\n", cfg.Ollama.Model)
	fmt.Printf("Connecting to MCP Server at: %s\n", cfg.MCP.ServerURL)
	fmt.Println("\nHow can I help you with your Blogger content? (Type 'exit' to quit)")
	fmt.Println("Try questions like:")
	fmt.Println("  - 'Tell me about our company blog.'")
	fmt.Println("  - 'Get latest posts from our blog.'")
	fmt.Println("  - 'Get latest posts from our blog with content.'")
	fmt.Println("  - 'Search for 'Python' posts on our blog.'")
}

func main() {
	configFile := flag.String("config", "blogger-agent.toml", "Path to config file")
	flag.Parse()

	cfg := loadConfig(*configFile)

	logger := common.NewLoggerFromConfig(cfg.Logging)

	client := mcpclient.New(mcpclient.Config{
		BaseURL:  cfg.MCP.ServerURL,
		Endpoint: cfg.MCP.Endpoint,
		Timeout:  parseDuration(cfg.MCP.Timeout, 30*time.Second),
		CacheTTL: parseDuration(cfg.MCP.CacheTTL, 5*time.Minute),
	}, logger)
	defer client.Close()

	llm := agent.NewOllamaLLM(cfg.Ollama.Host, cfg.Ollama.Model)
	a := agent.New(client, llm, cfg.KnownBlogs, logger)

	ctx := context.Background()

	showIntro(cfg)

	fmt.Println("Loading available MCP tools...")
	tools := a.ListTools(ctx)
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}
	fmt.Printf("Available MCP tools: %v\n", names)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}
		input := scanner.Text()
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}

		fmt.Println("AI:", a.ProcessQuery(ctx, input))
	}

	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Msg("Input loop terminated")
	}
	fmt.Println("\nExiting...")
}
