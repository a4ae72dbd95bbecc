package main

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerTools registers the read-only Blogger query tools on the server.
func registerTools(s *server.MCPServer, deps *toolDeps) {
	s.AddTool(createGetBlogInfoTool(), handleGetBlogInfo(deps))
	s.AddTool(createGetRecentPostsTool(), handleGetRecentPosts(deps))
	s.AddTool(createListRecentPostsTool(), handleListRecentPosts(deps))
	s.AddTool(createSearchPostsTool(), handleSearchPosts(deps))
}

func createGetBlogInfoTool() mcp.Tool {
	return mcp.NewTool("get_blog_info_by_url",
		mcp.WithDescription("Retrieves public information about a Blogger blog given its URL. ONLY works for allowed, pre-configured domains."),
		mcp.WithString("blog_url", mcp.Required(), mcp.Description("The full URL of the blog (e.g., 'https://yourcompanyblog.blogspot.com').")),
		mcp.WithTitleAnnotation("Get Blog Information By It's URL"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func createGetRecentPostsTool() mcp.Tool {
	return mcp.NewTool("get_recent_posts",
		mcp.WithDescription("Fetches the most recent public blog posts for a specified blog URL. ONLY works for allowed, pre-configured domains."),
		mcp.WithString("blog_url", mcp.Required(), mcp.Description("The full URL of the blog.")),
		mcp.WithNumber("num_posts", mcp.Description("The maximum number of posts to retrieve (default is 3).")),
		mcp.WithBoolean("include_content", mcp.Description("Whether to fetch full post content (default is true).")),
		mcp.WithTitleAnnotation("Get Recent Blog Posts (includes content)"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func createListRecentPostsTool() mcp.Tool {
	return mcp.NewTool("list_recent_posts",
		mcp.WithDescription("Fetches the most recent public blog posts (Titles only) for a specified blog. ONLY works for allowed, pre-configured domains."),
		mcp.WithString("blog_url", mcp.Required(), mcp.Description("The full URL of the blog.")),
		mcp.WithNumber("num_posts", mcp.Description("The maximum number of posts to retrieve (default is 3).")),
		mcp.WithTitleAnnotation("List Recent Blog Posts (excludes content)"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}

func createSearchPostsTool() mcp.Tool {
	return mcp.NewTool("search_posts",
		mcp.WithDescription("Searches for blog posts in a specified blog by query terms. ONLY works for allowed, pre-configured domains."),
		mcp.WithString("blog_url", mcp.Required(), mcp.Description("The full URL of the blog.")),
		mcp.WithString("query_terms", mcp.Required(), mcp.Description("The search terms to use in the query.")),
		mcp.WithNumber("num_posts", mcp.Description("The maximum number of posts to retrieve (default is 5).")),
		mcp.WithTitleAnnotation("Search Blog Posts"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	)
}
