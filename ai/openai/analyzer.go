package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/prompt"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Analyzer implements ai.Analyzer using OpenAI-compatible chat APIs.
type Analyzer struct {
	client llms.Model
	model  string // overrides the template model when non-empty
	logger *slog.Logger
}

// newAnalyzer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newAnalyzer(config *ai.Config) (*Analyzer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ModelHost),
		openai.WithToken("none"),
	)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		client: client,
		model:  config.Model,
		logger: slog.Default().With("component", "openai-analyzer"),
	}, nil
}

// NewAnalyzer creates a new analyzer using the provided configuration.
//
// Returns ai.Analyzer interface to enforce abstraction.
func NewAnalyzer(config *ai.Config) (ai.Analyzer, error) {
	return newAnalyzer(config)
}

// Analyze runs the template against the document text and returns the model's
// response verbatim. The document is substituted for "{input}" placeholders;
// templates without a placeholder get the document appended as a final user
// message.
func (a *Analyzer) Analyze(ctx context.Context, tmpl *prompt.Template, document string) (string, error) {
	hasPlaceholder := false
	for _, msg := range tmpl.Messages {
		if strings.Contains(msg.Content, "{input}") {
			hasPlaceholder = true
			break
		}
	}

	messages := tmpl.Render(map[string]string{"input": document})
	content := make([]llms.MessageContent, 0, len(messages)+1)
	for _, msg := range messages {
		content = append(content, llms.MessageContent{
			Role:  chatRole(msg.Role),
			Parts: []llms.ContentPart{llms.TextPart(msg.Content)},
		})
	}
	if !hasPlaceholder {
		content = append(content, llms.MessageContent{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(document)},
		})
	}

	opts := []llms.CallOption{callModel(a.model, tmpl)}
	if temp, ok := tmpl.Temperature(); ok {
		opts = append(opts, llms.WithTemperature(temp))
	}

	response, err := a.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		a.logger.Error("analysis call failed", "prompt", tmpl.Name, "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", fmt.Errorf("analysis with %s: no choices returned from model", tmpl.Name)
	}

	a.logger.Debug("analysis complete",
		"prompt", tmpl.Name,
		"responseLength", len(response.Choices[0].Content))
	return response.Choices[0].Content, nil
}
