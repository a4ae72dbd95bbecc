package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/karthiks/query-blogger-mcp-server/internal/blogger"
	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

func newTestDeps(t *testing.T, apiURL string, domains ...string) *toolDeps {
	t.Helper()
	logger := common.NewSilentLogger()
	client, err := blogger.NewClient("test-key", apiURL, logger)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		allowed[d] = true
	}
	return &toolDeps{blogger: client, allowed: allowed, logger: logger}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	request := mcp.CallToolRequest{}
	request.Params.Arguments = args
	return request
}

// resultPayload decodes the JSON text content block of a tool result.
func resultPayload(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Result has no content")
	}
	text := result.Content[0].(mcp.TextContent).Text
	var payload map[string]any
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		t.Fatalf("Result text is not valid JSON: %v (%q)", err, text)
	}
	return payload
}

func bloggerAPIStub(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/blogs/byurl":
			json.NewEncoder(w).Encode(map[string]any{
				"id":          "12345",
				"name":        "Example Blog",
				"url":         "https://blog.example.com/",
				"description": "A test blog",
				"published":   "2020-01-01T00:00:00Z",
			})
		case r.URL.Path == "/blogs/12345/posts":
			json.NewEncoder(w).Encode(map[string]any{
				"totalItems": 2,
				"items": []map[string]any{
					{"title": "First", "url": "https://blog.example.com/1", "published": "2026-01-01", "content": "<p>Body one</p>"},
					{"title": "Second", "url": "https://blog.example.com/2", "published": "2026-01-02", "content": "<p>Body two</p>"},
				},
			})
		case r.URL.Path == "/blogs/12345/posts/search":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"title": "Match", "url": "https://blog.example.com/3", "published": "2026-01-03", "content": "<p>Go content</p>"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestHandleGetBlogInfo_Success(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleGetBlogInfo(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got error: %v", result.Content)
	}

	payload := resultPayload(t, result)
	if payload["blog_id"] != "12345" {
		t.Errorf("Expected blog_id 12345, got %v", payload["blog_id"])
	}
	if payload["blog_title"] != "Example Blog" {
		t.Errorf("Expected blog_title, got %v", payload["blog_title"])
	}
	if payload["description"] != "A test blog" {
		t.Errorf("Expected description, got %v", payload["description"])
	}
}

func TestHandleGetBlogInfo_DisallowedDomain(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleGetBlogInfo(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://evil.example.org"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	errMsg, _ := payload["error"].(string)
	if !strings.Contains(errMsg, "Access denied") {
		t.Errorf("Expected access denied, got %v", payload)
	}
	if payload["requested_url"] != "https://evil.example.org" {
		t.Errorf("Expected requested_url echoed, got %v", payload["requested_url"])
	}
}

func TestHandleGetBlogInfo_EmptyAllowList(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL) // no allowed domains
	handler := handleGetBlogInfo(deps)

	result, _ := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	payload := resultPayload(t, result)
	if errMsg, _ := payload["error"].(string); !strings.Contains(errMsg, "Access denied") {
		t.Errorf("Empty allow-list should deny everything, got %v", payload)
	}
}

func TestHandleGetBlogInfo_MissingParam(t *testing.T) {
	deps := newTestDeps(t, "http://localhost:1", "blog.example.com")
	handler := handleGetBlogInfo(deps)

	result, err := handler(nil, callRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError for missing blog_url")
	}
}

func TestHandleGetBlogInfo_DefaultDescription(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "1", "name": "Bare"})
	}))
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleGetBlogInfo(deps)

	result, _ := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	payload := resultPayload(t, result)
	if payload["description"] != "No description available." {
		t.Errorf("Expected default description, got %v", payload["description"])
	}
}

func TestHandleGetRecentPosts_Success(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleGetRecentPosts(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com", "num_posts": 2}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	if payload["blog_title"] != "Example Blog" {
		t.Errorf("Expected blog_title, got %v", payload["blog_title"])
	}
	posts, ok := payload["recent_posts"].([]any)
	if !ok || len(posts) != 2 {
		t.Fatalf("Expected 2 recent posts, got %v", payload["recent_posts"])
	}
	first := posts[0].(map[string]any)
	if first["title"] != "First" {
		t.Errorf("Expected first post title, got %v", first["title"])
	}
	if _, ok := first["content"]; !ok {
		t.Error("Expected content included by default")
	}
	if payload["total_posts_found"] != float64(2) {
		t.Errorf("Expected total_posts_found 2, got %v", payload["total_posts_found"])
	}
}

func TestHandleListRecentPosts_ExcludesContent(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleListRecentPosts(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	posts := payload["recent_posts"].([]any)
	first := posts[0].(map[string]any)
	if _, ok := first["content"]; ok {
		t.Error("list_recent_posts should not include content")
	}
	if first["title"] != "First" || first["url"] == nil || first["published"] == nil {
		t.Errorf("Expected title/url/published, got %v", first)
	}
}

func TestHandleSearchPosts_Success(t *testing.T) {
	api := bloggerAPIStub(t)
	defer api.Close()

	deps := newTestDeps(t, api.URL, "blog.example.com")
	handler := handleSearchPosts(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com", "query_terms": "go"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	payload := resultPayload(t, result)
	posts, ok := payload["matching_posts"].([]any)
	if !ok || len(posts) != 1 {
		t.Fatalf("Expected 1 matching post, got %v", payload["matching_posts"])
	}
	content := posts[0].(map[string]any)["content"].(string)
	if strings.Contains(content, "<p>") {
		t.Errorf("Expected Markdown content, got %q", content)
	}
}

func TestHandleSearchPosts_MissingQueryTerms(t *testing.T) {
	deps := newTestDeps(t, "http://localhost:1", "blog.example.com")
	handler := handleSearchPosts(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected IsError for missing query_terms")
	}
}

func TestHandleGetRecentPosts_BlogAPIDown(t *testing.T) {
	deps := newTestDeps(t, "http://localhost:1", "blog.example.com")
	handler := handleGetRecentPosts(deps)

	result, err := handler(nil, callRequest(map[string]any{"blog_url": "https://blog.example.com"}))
	if err != nil {
		t.Fatalf("Handler must not propagate errors, got %v", err)
	}
	payload := resultPayload(t, result)
	if _, ok := payload["error"].(string); !ok {
		t.Errorf("Expected error descriptor payload, got %v", payload)
	}
}
