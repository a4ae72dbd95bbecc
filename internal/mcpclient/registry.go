package mcpclient

import (
	"context"
	"sync"
	"time"

	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

// ToolDefinition describes one remote tool advertised by the server's
// tools/list discovery call. Instances are immutable once constructed and
// live only inside a registry snapshot.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Method      string         `json:"method"`
}

// Registry caches the server's tool list with a fixed TTL. A snapshot is
// replaced wholesale on a successful refresh and never mutated in place.
// A failed refresh logs and keeps the last-good snapshot; it never evicts
// still-valid data and never retries automatically.
type Registry struct {
	client *Client
	ttl    time.Duration
	logger *common.Logger

	mu            sync.Mutex
	tools         []ToolDefinition
	lastRefreshed time.Time
}

// newRegistry creates a registry bound to the client's transport.
func newRegistry(client *Client, ttl time.Duration, logger *common.Logger) *Registry {
	return &Registry{client: client, ttl: ttl, logger: logger}
}

// Tools returns the cached tool definitions, refreshing from the server when
// forced, never fetched, or past the TTL. On refresh failure the previous
// snapshot (possibly empty) is returned unchanged.
func (r *Registry) Tools(ctx context.Context, forceRefresh bool) []ToolDefinition {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !forceRefresh && !r.lastRefreshed.IsZero() && time.Since(r.lastRefreshed) <= r.ttl {
		return r.tools
	}

	tools, err := r.fetch(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("Tool discovery failed; serving last-good snapshot")
		return r.tools
	}

	r.tools = tools
	r.lastRefreshed = time.Now()
	r.logger.Debug().Int("count", len(tools)).Msg("Tool registry refreshed")
	return r.tools
}

// fetch issues the tools/list discovery call and maps each entry to a
// ToolDefinition, preserving order. The RPC method name mirrors the tool
// name for now; servers do not advertise a separate method.
func (r *Registry) fetch(ctx context.Context) ([]ToolDefinition, error) {
	env, err := r.client.rpc(ctx, "tools/list", map[string]any{})
	if err != nil {
		return nil, err
	}
	payload, err := Unwrap(env)
	if err != nil {
		return nil, err
	}

	m, ok := payload.(map[string]any)
	if !ok {
		return nil, &Error{Kind: KindProtocolViolation, Message: "Discovery response is not a JSON object."}
	}
	entries, ok := m["tools"].([]any)
	if !ok {
		return nil, &Error{Kind: KindProtocolViolation, Message: "Discovery response missing 'tools' list."}
	}

	tools := make([]ToolDefinition, 0, len(entries))
	for _, e := range entries {
		entry, _ := e.(map[string]any)
		name, _ := entry["name"].(string)
		description, _ := entry["description"].(string)
		params, _ := entry["parameters"].(map[string]any)
		if params == nil {
			// mcp-go servers advertise schemas under inputSchema
			params, _ = entry["inputSchema"].(map[string]any)
		}
		if params == nil {
			params = map[string]any{}
		}
		tools = append(tools, ToolDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
			Method:      name,
		})
	}
	return tools, nil
}
