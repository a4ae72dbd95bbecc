package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mark3labs/mcp-go/server"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/karthiks/query-blogger-mcp-server/internal/blogger"
	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

const serverVersion = "0.1.0"

// BloggerConfig holds Blogger API access settings.
type BloggerConfig struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	AllowedDomains []string `toml:"allowed_domains"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Host        string `toml:"host"`
	Port        string `toml:"port"`
}

// Config holds all query-blogger-mcp configuration.
type Config struct {
	Server  ServerConfig         `toml:"server"`
	Blogger BloggerConfig        `toml:"blogger"`
	Logging common.LoggingConfig `toml:"logging"`
}

// newDefaultConfig returns a Config with sensible defaults.
func newDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:        "QueryBloggerMCPServer",
			Description: "Provides read-only tools to query public Blogger content from specific, allowed domains.",
			Host:        "0.0.0.0",
			Port:        "8000",
		},
		Logging: common.LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console", "file"},
			FilePath:   "logs/query-blogger-mcp.log",
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

	// Apply environment overrides
	if key := os.Getenv("BLOGGER_API_KEY"); key != "" {
		cfg.Blogger.APIKey = key
	}
	if domains := os.Getenv("ALLOWED_DOMAINS"); domains != "" {
		cfg.Blogger.AllowedDomains = splitDomains(domains)
	}
	if host := os.Getenv("QUERY_BLOGGER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("QUERY_BLOGGER_PORT"); port != "" {
		cfg.Server.Port = port
	}
	if level := os.Getenv("QUERY_BLOGGER_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg
}

// splitDomains parses a comma-separated domain list, trimming whitespace and
// dropping empty entries.
func splitDomains(s string) []string {
	parts := strings.Split(s, ",")
	domains := make([]string, 0, len(parts))
	for _, p := range parts {
		if d := strings.TrimSpace(p); d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

func main() {
	stdio := flag.Bool("stdio", false, "Use stdio transport (for Claude Desktop)")
	configFile := flag.String("config", "query-blogger-mcp.toml", "Path to config file")
	flag.Parse()

	cfg := loadConfig(*configFile)

	logger := common.NewLoggerFromConfig(cfg.Logging)

	if cfg.Blogger.APIKey == "" {
		logger.Error().Msg("BLOGGER_API_KEY is not set (CRITICAL!)")
		os.Exit(1)
	}
	logger.Info().Int("allowed_domains", len(cfg.Blogger.AllowedDomains)).Msg("Blogger API key set")

	bloggerClient, err := blogger.NewClient(cfg.Blogger.APIKey, cfg.Blogger.BaseURL, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create Blogger API client")
		os.Exit(1)
	}

	allowed := make(map[string]bool, len(cfg.Blogger.AllowedDomains))
	for _, d := range cfg.Blogger.AllowedDomains {
		allowed[d] = true
	}

	deps := &toolDeps{
		blogger: bloggerClient,
		allowed: allowed,
		logger:  logger,
	}

	mcpServer := server.NewMCPServer(
		cfg.Server.Name,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(cfg.Server.Description),
	)

	registerTools(mcpServer, deps)

	if *stdio {
		// Stdio transport — reads stdin, writes stdout
		logger.Info().Msg("Starting QueryBlogger MCP Server in STDIO mode")
		if err := server.ServeStdio(mcpServer); err != nil {
			fmt.Fprintf(os.Stderr, "stdio server error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Streamable HTTP transport mounted in a chi router with a health probe
	streamable := server.NewStreamableHTTPServer(mcpServer,
		server.WithStateLess(true),
	)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","name":%q,"version":%q}`, cfg.Server.Name, serverVersion)
	})
	r.Handle("/mcp", streamable)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Info().Str("addr", addr).Msg("Starting QueryBlogger MCP Server via Streamable HTTP")
	fmt.Fprintf(os.Stderr, "Starting MCP Streamable HTTP on %s\n", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "http server error: %v\n", err)
		os.Exit(1)
	}
}
