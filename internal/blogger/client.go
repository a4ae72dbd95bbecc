// Package blogger wraps the public Blogger v3 REST API behind a small
// read-only client authenticated with a static API key.
package blogger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/karthiks/query-blogger-mcp-server/internal/common"
)

// DefaultBaseURL is the public Blogger v3 API root.
const DefaultBaseURL = "https://www.googleapis.com/blogger/v3"

// Client queries the Blogger API. Not-found blogs and posts are reported as
// (nil, nil); HTTP and network failures are reported as errors embedding the
// status and body.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// NewClient creates a Blogger API client. The API key is required; an empty
// baseURL selects the public API root.
func NewClient(apiKey, baseURL string, logger *common.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("blogger API key must be provided")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// GetBlogByURL retrieves a blog by its URL.
// https://developers.google.com/blogger/docs/3.0/reference/blogs/getByUrl
func (c *Client) GetBlogByURL(blogURL string) (map[string]any, error) {
	params := url.Values{}
	params.Set("url", blogURL)
	params.Set("key", c.apiKey)
	return c.get("/blogs/byurl", params)
}

// GetRecentPosts retrieves the most recently updated posts for a blog,
// optionally with full bodies.
// https://developers.google.com/blogger/docs/3.0/reference/posts/list
func (c *Client) GetRecentPosts(blogID string, maxResults int, withBody bool) (map[string]any, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("orderBy", "updated")
	params.Set("fetchBodies", strconv.FormatBool(withBody))
	return c.get("/blogs/"+blogID+"/posts", params)
}

// ListRecentPosts retrieves recent post metadata without bodies.
func (c *Client) ListRecentPosts(blogID string, maxResults int) (map[string]any, error) {
	return c.GetRecentPosts(blogID, maxResults, false)
}

// SearchPosts searches a blog's posts by query terms. Results are truncated
// to maxResults client-side and post bodies are converted to Markdown.
// https://developers.google.com/blogger/docs/3.0/reference/posts/search
func (c *Client) SearchPosts(blogID, queryTerms string, maxResults int) (map[string]any, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", queryTerms)
	params.Set("orderBy", "published")
	params.Set("fetchBodies", "true")

	result, err := c.get("/blogs/"+blogID+"/posts/search", params)
	if err != nil || result == nil {
		return nil, err
	}
	return processPosts(result, maxResults), nil
}

// get performs a GET request against the Blogger API and decodes the JSON
// response. A 404 is reported as (nil, nil) — blog or posts not found.
func (c *Client) get(path string, params url.Values) (map[string]any, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	c.logger.Debug().Str("path", path).Msg("Blogger API Request")

	start := time.Now()
	resp, err := c.httpClient.Get(reqURL)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error().Err(err).Str("path", path).Dur("duration", duration).Msg("Blogger API Request Failed")
		return nil, fmt.Errorf("network error connecting to Blogger API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Blogger API response: %w", err)
	}

	c.logger.Debug().
		Int("status_code", resp.StatusCode).
		Dur("duration", duration).
		Msg("Blogger API Response")

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("Blogger API error: %d - %s", resp.StatusCode, string(body))
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse Blogger API response: %w", err)
	}
	return result, nil
}

// processPosts truncates the items list to maxResults and converts each
// post's HTML content to Markdown.
func processPosts(data map[string]any, maxResults int) map[string]any {
	items, ok := data["items"].([]any)
	if !ok {
		return data
	}
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}
	for _, it := range items {
		post, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if content, ok := post["content"].(string); ok {
			if md, err := HTMLToMarkdown(content); err == nil {
				post["content"] = md
			}
		}
	}
	data["items"] = items
	return data
}
