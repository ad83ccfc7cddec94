package study

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Analyzer sends a prompt to a language model and returns its raw reply.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string) (string, error)
	Model() string
}

// AnalyzeError is returned when the model call itself fails.
type AnalyzeError struct {
	Reason  string
	Wrapped error
}

func (e *AnalyzeError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("study analysis failed: %s: %v", e.Reason, e.Wrapped)
	}
	return "study analysis failed: " + e.Reason
}

func (e *AnalyzeError) Unwrap() error {
	return e.Wrapped
}

// OpenAIAnalyzer talks to OpenAI or any compatible endpoint.
type OpenAIAnalyzer struct {
	client *openai.Client
	model  string
}

var _ Analyzer = (*OpenAIAnalyzer)(nil)

func NewOpenAIAnalyzer(apiKey, baseURL, model string) *OpenAIAnalyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIAnalyzer{client: openai.NewClientWithConfig(cfg), model: model}
}

func (a *OpenAIAnalyzer) Model() string {
	return a.model
}

func (a *OpenAIAnalyzer) Analyze(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.7,
	})
	if err != nil {
		return "", &AnalyzeError{Reason: "chat completion", Wrapped: err}
	}
	if len(resp.Choices) == 0 {
		return "", &AnalyzeError{Reason: "no choices returned"}
	}
	return resp.Choices[0].Message.Content, nil
}
