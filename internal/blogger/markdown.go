package blogger

import (
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// HTMLToMarkdown converts raw HTML post content to Markdown so downstream
// LLM consumers get clean text instead of markup.
func HTMLToMarkdown(htmlContent string) (string, error) {
	converter := md.NewConverter("", true, nil)
	text, err := converter.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
