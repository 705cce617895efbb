// Package ai summarizes detection batches through an OpenAI-compatible
// chat endpoint.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/Tayebwa-ian/DDoS-Detection/internal/config"
)

const systemPrompt = "You are a senior network security analyst reviewing output " +
	"from a real-time DDoS detection pipeline. For each batch of flagged flows, " +
	"assess the likely attack type and severity, call out false-positive signals " +
	"if the statistics look benign, and recommend concrete next steps. Answer in " +
	"markdown and keep it short."

// DetectionAnalyzer implements the Analyzer interface over the chat
// completion API.
type DetectionAnalyzer struct {
	model  string
	client *openai.Client
}

// NewDetectionAnalyzer creates a new instance of DetectionAnalyzer.
func NewDetectionAnalyzer(cfg *config.AIConfig) (*DetectionAnalyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &DetectionAnalyzer{
		model:  cfg.Model,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// AnalyzeTraffic sends the detection summary for assessment and
// returns the analyst-style response.
func (a *DetectionAnalyzer) AnalyzeTraffic(ctx context.Context, input string) (string, error) {
	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       a.model,
			Temperature: 0.2,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: "Flagged flows from the last check window:\n\n" + input,
				},
			},
		},
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("AI request timeout: %w", err)
		}
		if errors.Is(err, context.Canceled) {
			return "", fmt.Errorf("AI request canceled by client: %w", err)
		}
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
