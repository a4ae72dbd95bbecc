// Package agent orchestrates user queries by pattern-matching them to MCP
// tool calls and asking a local LLM to summarize the results.
package agent

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/karthiks/query-blogger-mcp-server/internal/common"
	"github.com/karthiks/query-blogger-mcp-server/internal/mcpclient"
)

// ToolCaller is the slice of the MCP client the agent depends on.
type ToolCaller interface {
	Tools(ctx context.Context, forceRefresh bool) []mcpclient.ToolDefinition
	CallTool(ctx context.Context, name string, arguments map[string]any) (any, error)
}

// Agent matches free-text queries to Blogger tools and synthesizes answers.
type Agent struct {
	tools      ToolCaller
	llm        LLM
	knownBlogs map[string]string
	aliases    []string // sorted known-blog aliases for deterministic matching
	logger     *common.Logger
}

var (
	digitsRe     = regexp.MustCompile(`\d+`)
	searchTermRe = regexp.MustCompile(`search for '([^']+)'`)
)

// New creates an agent. knownBlogs maps query aliases (e.g. "our company
// blog") to blog URLs.
func New(tools ToolCaller, llm LLM, knownBlogs map[string]string, logger *common.Logger) *Agent {
	aliases := make([]string, 0, len(knownBlogs))
	for alias := range knownBlogs {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return &Agent{
		tools:      tools,
		llm:        llm,
		knownBlogs: knownBlogs,
		aliases:    aliases,
		logger:     logger,
	}
}

// ListTools returns the tools discovered from the MCP server.
func (a *Agent) ListTools(ctx context.Context) []mcpclient.ToolDefinition {
	tools := a.tools.Tools(ctx, false)
	a.logger.Info().Int("count", len(tools)).Msg("Discovered tools")
	return tools
}

// blogURLFromQuery resolves a known blog URL mentioned in the query.
func (a *Agent) blogURLFromQuery(query string) string {
	for _, alias := range a.aliases {
		if strings.Contains(query, alias) {
			url := a.knownBlogs[alias]
			a.logger.Info().Str("alias", alias).Str("url", url).Msg("Matched known blog")
			return url
		}
	}
	return ""
}

// ProcessQuery routes a user query: tool call plus LLM synthesis when a
// pattern matches, direct LLM chat otherwise. Failures come back as
// descriptive strings, never as a panic or partial structured data.
func (a *Agent) ProcessQuery(ctx context.Context, userQuery string) string {
	// Normalize for easier matching
	query := strings.ToLower(userQuery)
	query = strings.ReplaceAll(query, "recent", "latest")
	query = strings.ReplaceAll(query, "blogs", "posts")

	blogURL := a.blogURLFromQuery(query)

	switch {
	case strings.Contains(query, "latest posts from") && blogURL != "":
		return a.latestPosts(ctx, query, blogURL)
	case searchTermRe.MatchString(query) && blogURL != "":
		return a.searchPosts(ctx, query, blogURL)
	case strings.Contains(query, "about our blog") || (blogURL != "" && strings.Contains(query, "about")):
		if blogURL == "" {
			blogURL = a.knownBlogs["our company blog"]
		}
		return a.blogInfo(ctx, query, blogURL)
	}

	// No tool matched — let the LLM answer directly
	answer, err := a.llm.Chat(ctx, userQuery, "")
	if err != nil {
		return fmt.Sprintf("Error calling LLM: %v", err)
	}
	return answer
}

// latestPosts fetches recent posts and asks the LLM to summarize them.
func (a *Agent) latestPosts(ctx context.Context, query, blogURL string) string {
	numPosts := 3
	before, _, _ := strings.Cut(query, "latest posts from")
	if m := digitsRe.FindString(before); m != "" {
		fmt.Sscanf(m, "%d", &numPosts)
	}
	includeContent := strings.Contains(query, "with content") || strings.Contains(query, "for answering questions")

	out, err := a.tools.CallTool(ctx, "get_recent_posts", map[string]any{
		"blog_url":        blogURL,
		"num_posts":       numPosts,
		"include_content": includeContent,
	})
	if err != nil {
		return fmt.Sprintf("Failed to get latest posts: %v", err)
	}

	payload, failure := toolPayload(out)
	if failure != "" {
		return fmt.Sprintf("Failed to get latest posts: %s", failure)
	}
	posts, ok := payload["recent_posts"].([]any)
	if !ok || len(posts) == 0 {
		return "Failed to get latest posts: No posts found."
	}

	contextText := fmt.Sprintf(
		"Here are the latest posts from %v:\n%s\nPlease summarize this information for the user's request: '%s'",
		payload["blog_title"], formatPosts(posts), query,
	)
	answer, err := a.llm.Chat(ctx, query, contextText)
	if err != nil {
		return fmt.Sprintf("Error calling LLM: %v", err)
	}
	return answer
}

// searchPosts runs a quoted-term search and asks the LLM to summarize.
func (a *Agent) searchPosts(ctx context.Context, query, blogURL string) string {
	terms := searchTermRe.FindStringSubmatch(query)[1]

	out, err := a.tools.CallTool(ctx, "search_posts", map[string]any{
		"blog_url":    blogURL,
		"query_terms": terms,
	})
	if err != nil {
		return fmt.Sprintf("Failed to search posts: %v", err)
	}

	payload, failure := toolPayload(out)
	if failure != "" {
		return fmt.Sprintf("Failed to search posts: %s", failure)
	}
	posts, ok := payload["matching_posts"].([]any)
	if !ok || len(posts) == 0 {
		return fmt.Sprintf("No posts found matching '%s'.", terms)
	}

	contextText := fmt.Sprintf(
		"Here are posts from %v matching '%s':\n%s\nPlease summarize this information for the user's request: '%s'",
		payload["blog_title"], terms, formatPosts(posts), query,
	)
	answer, err := a.llm.Chat(ctx, query, contextText)
	if err != nil {
		return fmt.Sprintf("Error calling LLM: %v", err)
	}
	return answer
}

// blogInfo fetches blog metadata and asks the LLM to summarize it.
func (a *Agent) blogInfo(ctx context.Context, query, blogURL string) string {
	out, err := a.tools.CallTool(ctx, "get_blog_info_by_url", map[string]any{
		"blog_url": blogURL,
	})
	if err != nil {
		return fmt.Sprintf("Failed to get blog info: %v", err)
	}

	payload, failure := toolPayload(out)
	if failure != "" {
		return fmt.Sprintf("Failed to get blog info: %s", failure)
	}

	contextText := fmt.Sprintf(
		"Blog Info: Title: %s, URL: %s, Published: %s, Description: %s\n\nPlease summarize this blog information for the user's request: '%s'",
		stringOr(payload, "blog_title", "N/A"),
		stringOr(payload, "blog_url", "N/A"),
		stringOr(payload, "published_date", "N/A"),
		stringOr(payload, "description", "No description available."),
		query,
	)
	answer, err := a.llm.Chat(ctx, query, contextText)
	if err != nil {
		return fmt.Sprintf("Error calling LLM: %v", err)
	}
	return answer
}

// toolPayload asserts a tool result to a mapping and extracts an embedded
// "error" descriptor when the tool reported one.
func toolPayload(out any) (map[string]any, string) {
	payload, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Sprintf("unexpected tool result shape: %T", out)
	}
	if errMsg, ok := payload["error"].(string); ok && errMsg != "" {
		return nil, errMsg
	}
	return payload, ""
}

// formatPosts renders post entries as a bullet list for LLM context.
func formatPosts(posts []any) string {
	var b strings.Builder
	for _, p := range posts {
		post, ok := p.(map[string]any)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %v (%v) published %v\n", post["title"], post["url"], post["published"])
		if content, ok := post["content"].(string); ok && content != "" {
			preview := content
			if len(preview) > 200 {
				preview = preview[:200]
			}
			fmt.Fprintf(&b, "  Content Preview: %s\n", preview)
		}
	}
	return b.String()
}

// stringOr returns payload[key] as a string, or fallback when absent/empty.
func stringOr(payload map[string]any, key, fallback string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
