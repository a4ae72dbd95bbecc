package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// LLM produces a chat completion for a user question, optionally grounded in
// tool-call context.
type LLM interface {
	Chat(ctx context.Context, userInput, contextText string) (string, error)
}

// ChatClient captures the subset of the go-openai client used by the agent.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (
		openai.ChatCompletionResponse, error)
}

// OllamaLLM calls a local Ollama instance through its OpenAI-compatible
// chat completions endpoint.
type OllamaLLM struct {
	chat  ChatClient
	model string
}

// NewOllamaLLM builds an LLM client for the Ollama host (e.g.
// "http://localhost:11434") and model name.
func NewOllamaLLM(host, model string) *OllamaLLM {
	cfg := openai.DefaultConfig("ollama") // Ollama ignores the API key
	cfg.BaseURL = strings.TrimRight(host, "/") + "/v1"
	return &OllamaLLM{chat: openai.NewClientWithConfig(cfg), model: model}
}

// Chat sends a single-turn chat completion. When contextText is set the
// question is framed against it; there is no multi-turn dialogue state.
func (o *OllamaLLM) Chat(ctx context.Context, userInput, contextText string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: "You are a helpful assistant. Provide concise answers."},
	}
	if contextText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: fmt.Sprintf("Based on the following context, answer the question: %s\n\nQuestion: %s", contextText, userInput),
		})
	} else {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	resp, err := o.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ollama chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
