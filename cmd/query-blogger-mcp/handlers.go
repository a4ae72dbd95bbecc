package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/karthiks/query-blogger-mcp-server/internal/blogger"
	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

// toolDeps carries the shared dependencies for tool handlers.
type toolDeps struct {
	blogger *blogger.Client
	allowed map[string]bool
	logger  *common.Logger
}

// --- Helpers ---

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

// jsonResult encodes a payload as a JSON text content block. Tool payloads
// (including domain-denial and not-found descriptors with an "error" key) are
// returned this way so the client's unwrapper sees one consistent shape.
func jsonResult(payload any) *mcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		return errorResult(fmt.Sprintf("Error encoding result: %v", err))
	}
	return textResult(string(data))
}

// isAllowedDomain reports whether the blog URL's host is on the allow-list.
// An empty allow-list denies everything.
func (d *toolDeps) isAllowedDomain(blogURL string) bool {
	if len(d.allowed) == 0 {
		d.logger.Warn().Msg("Allowed domains list is empty; all domains are disallowed by default")
		return false
	}
	parsed, err := url.Parse(blogURL)
	if err != nil || parsed.Host == "" {
		d.logger.Warn().Str("blog_url", blogURL).Msg("Failed to parse URL for domain check")
		return false
	}
	if !d.allowed[parsed.Host] {
		d.logger.Warn().Str("domain", parsed.Host).Msg("Domain is not in allowed domains")
		return false
	}
	return true
}

func deniedPayload(blogURL, what string) map[string]any {
	return map[string]any{
		"error":         fmt.Sprintf("Access denied: This tool can only query %s from pre-approved domains.", what),
		"requested_url": blogURL,
	}
}

// resolveBlog looks up the blog for a URL and returns its raw record, or a
// payload describing why it could not be resolved.
func (d *toolDeps) resolveBlog(blogURL string) (map[string]any, map[string]any) {
	blogData, err := d.blogger.GetBlogByURL(blogURL)
	if err != nil {
		return nil, map[string]any{
			"error":         fmt.Sprintf("Failed to retrieve blog info: %v", err),
			"requested_url": blogURL,
		}
	}
	if blogData == nil || blogData["id"] == nil {
		return nil, map[string]any{
			"error":         fmt.Sprintf("Could not find blog for %s. It might not exist or there was an API issue.", blogURL),
			"requested_url": blogURL,
		}
	}
	return blogData, nil
}

// --- Handlers ---

func handleGetBlogInfo(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blogURL, err := request.RequireString("blog_url")
		if err != nil {
			return errorResult("Error: blog_url parameter is required"), nil
		}

		d.logger.Info().Str("blog_url", blogURL).Msg("Received tool call: get_blog_info_by_url")

		if !d.isAllowedDomain(blogURL) {
			return jsonResult(deniedPayload(blogURL, "blogs")), nil
		}

		blogData, err := d.blogger.GetBlogByURL(blogURL)
		if err != nil {
			return jsonResult(map[string]any{
				"error":         fmt.Sprintf("Failed to retrieve blog info: %v", err),
				"requested_url": blogURL,
			}), nil
		}
		if blogData == nil {
			return jsonResult(map[string]any{
				"error":         fmt.Sprintf("Could not find blog at %s. It might not exist or the URL is incorrect.", blogURL),
				"requested_url": blogURL,
			}), nil
		}

		description, _ := blogData["description"].(string)
		if description == "" {
			description = "No description available."
		}
		return jsonResult(map[string]any{
			"blog_id":        blogData["id"],
			"blog_title":     blogData["name"],
			"blog_url":       blogData["url"],
			"description":    description,
			"published_date": blogData["published"],
		}), nil
	}
}

func handleGetRecentPosts(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blogURL, err := request.RequireString("blog_url")
		if err != nil {
			return errorResult("Error: blog_url parameter is required"), nil
		}
		numPosts := request.GetInt("num_posts", 3)
		includeContent := request.GetBool("include_content", true)

		d.logger.Info().Str("blog_url", blogURL).Int("num_posts", numPosts).Msg("Received tool call: get_recent_posts")

		if !d.isAllowedDomain(blogURL) {
			return jsonResult(deniedPayload(blogURL, "posts")), nil
		}

		blogData, failure := d.resolveBlog(blogURL)
		if failure != nil {
			return jsonResult(failure), nil
		}
		blogID := fmt.Sprintf("%v", blogData["id"])

		postsData, err := d.blogger.GetRecentPosts(blogID, numPosts, includeContent)
		if err != nil {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("Failed to retrieve posts: %v", err),
				"blog_url": blogURL,
			}), nil
		}

		posts := extractPosts(postsData, true)
		if len(posts) == 0 {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("No recent posts found for %s or an issue with the Blogger API.", blogURL),
				"blog_url": blogURL,
			}), nil
		}

		return jsonResult(map[string]any{
			"blog_title":        blogData["name"],
			"blog_url":          blogURL,
			"total_posts_found": totalItems(postsData, len(posts)),
			"recent_posts":      posts,
		}), nil
	}
}

func handleListRecentPosts(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blogURL, err := request.RequireString("blog_url")
		if err != nil {
			return errorResult("Error: blog_url parameter is required"), nil
		}
		numPosts := request.GetInt("num_posts", 3)

		d.logger.Info().Str("blog_url", blogURL).Int("num_posts", numPosts).Msg("Received tool call: list_recent_posts")

		if !d.isAllowedDomain(blogURL) {
			return jsonResult(deniedPayload(blogURL, "posts")), nil
		}

		blogData, failure := d.resolveBlog(blogURL)
		if failure != nil {
			return jsonResult(failure), nil
		}
		blogID := fmt.Sprintf("%v", blogData["id"])

		postsData, err := d.blogger.ListRecentPosts(blogID, numPosts)
		if err != nil {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("Failed to retrieve posts: %v", err),
				"blog_url": blogURL,
			}), nil
		}

		posts := extractPosts(postsData, false)
		if len(posts) == 0 {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("No recent posts found for %s or an issue with the Blogger API.", blogURL),
				"blog_url": blogURL,
			}), nil
		}

		return jsonResult(map[string]any{
			"blog_title":        blogData["name"],
			"blog_url":          blogURL,
			"total_posts_found": totalItems(postsData, len(posts)),
			"recent_posts":      posts,
		}), nil
	}
}

func handleSearchPosts(d *toolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		blogURL, err := request.RequireString("blog_url")
		if err != nil {
			return errorResult("Error: blog_url parameter is required"), nil
		}
		queryTerms, err := request.RequireString("query_terms")
		if err != nil {
			return errorResult("Error: query_terms parameter is required"), nil
		}
		numPosts := request.GetInt("num_posts", 5)

		d.logger.Info().Str("blog_url", blogURL).Str("query", queryTerms).Msg("Received tool call: search_posts")

		if !d.isAllowedDomain(blogURL) {
			return jsonResult(deniedPayload(blogURL, "posts")), nil
		}

		blogData, failure := d.resolveBlog(blogURL)
		if failure != nil {
			return jsonResult(failure), nil
		}
		blogID := fmt.Sprintf("%v", blogData["id"])

		postsData, err := d.blogger.SearchPosts(blogID, queryTerms, numPosts)
		if err != nil {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("Failed to retrieve posts: %v", err),
				"blog_url": blogURL,
			}), nil
		}

		posts := extractPosts(postsData, true)
		if len(posts) == 0 {
			return jsonResult(map[string]any{
				"error":    fmt.Sprintf("No posts found matching '%s' for %s or an issue with the Blogger API.", queryTerms, blogURL),
				"blog_url": blogURL,
			}), nil
		}

		return jsonResult(map[string]any{
			"blog_title":        blogData["name"],
			"blog_url":          blogURL,
			"total_posts_found": totalItems(postsData, len(posts)),
			"matching_posts":    posts,
		}), nil
	}
}

// extractPosts shapes the raw items list into LLM-friendly post entries.
func extractPosts(postsData map[string]any, withContent bool) []map[string]any {
	if postsData == nil {
		return nil
	}
	items, ok := postsData["items"].([]any)
	if !ok {
		return nil
	}
	posts := make([]map[string]any, 0, len(items))
	for _, it := range items {
		raw, ok := it.(map[string]any)
		if !ok {
			continue
		}
		post := map[string]any{
			"title":     raw["title"],
			"url":       raw["url"],
			"published": raw["published"],
		}
		if withContent {
			content, _ := raw["content"].(string)
			post["content"] = content
		}
		posts = append(posts, post)
	}
	return posts
}

// totalItems returns the API-reported total, falling back to the local count.
func totalItems(postsData map[string]any, fallback int) any {
	if postsData != nil {
		if total, ok := postsData["totalItems"]; ok {
			return total
		}
	}
	return fallback
}
