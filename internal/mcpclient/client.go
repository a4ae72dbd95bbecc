package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

// Config holds the client construction parameters. There is no runtime
// reconfiguration; base URL, timeout, and cache TTL are fixed for the life
// of the client.
type Config struct {
	BaseURL  string
	Endpoint string        // JSON-RPC endpoint path (default "/mcp")
	Timeout  time.Duration // per-call HTTP timeout (default 30s)
	CacheTTL time.Duration // tool registry TTL (default 5m)
}

// Client invokes tools on a remote MCP server over JSON-RPC 2.0 HTTP POST.
// One shared keep-alive transport handle is held per instance; the owner must
// call Close on all exit paths.
type Client struct {
	baseURL    string
	endpoint   string
	httpClient *http.Client
	logger     *common.Logger
	registry   *Registry
}

// rpcRequest is an outgoing JSON-RPC 2.0 request.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// callParams is the params member of a tools/call request.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// New creates a client for the MCP server at cfg.BaseURL.
func New(cfg Config, logger *common.Logger) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "/mcp"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
	c.registry = newRegistry(c, ttl, logger)
	return c
}

// Tools returns the available tool definitions, served from the registry
// cache until its TTL elapses or forceRefresh is set.
func (c *Client) Tools(ctx context.Context, forceRefresh bool) []ToolDefinition {
	return c.registry.Tools(ctx, forceRefresh)
}

// CallTool invokes the named tool with the given arguments and returns the
// unwrapped result. Every failure — transport, parse, protocol violation, or
// an application error from the tool — comes back as a tagged *Error; no
// panic or untagged error crosses this boundary.
func (c *Client) CallTool(ctx context.Context, name string, arguments map[string]any) (any, error) {
	if arguments == nil {
		arguments = map[string]any{}
	}
	env, err := c.rpc(ctx, "tools/call", callParams{Name: name, Arguments: arguments})
	if err != nil {
		return nil, err
	}
	return Unwrap(env)
}

// rpc sends one JSON-RPC request and parses the response envelope. Request
// identifiers are freshly generated per call and never reused; the transport
// is strictly request/response.
func (c *Client) rpc(ctx context.Context, method string, params any) (*Envelope, error) {
	id := uuid.NewString()
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Err:     err,
			Message: fmt.Sprintf("Tool call failed: could not encode request - %v", err),
		}
	}

	c.logger.Debug().
		Str("method", method).
		Str("request_id", id).
		Msg("MCP Client Request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Err:     err,
			Message: fmt.Sprintf("Tool call failed: Network error - %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Dur("duration", duration).Msg("MCP Client Request Failed")
		return nil, &Error{
			Kind:    KindTransport,
			Err:     err,
			Message: fmt.Sprintf("Tool call failed: Network error - %v", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:    KindTransport,
			Err:     err,
			Message: fmt.Sprintf("Tool call failed: Network error - %v", err),
		}
	}

	c.logger.Debug().
		Str("status", resp.Status).
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("MCP Client Response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:    KindTransport,
			Message: fmt.Sprintf("Tool call failed: HTTP %d - %s", resp.StatusCode, string(body)),
		}
	}

	return ParseEnvelope(body)
}

// Close releases the transport handle. Must be invoked exactly once by the
// owner on all exit paths.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
