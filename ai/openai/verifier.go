package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/prompt"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Verifier implements ai.Verifier using OpenAI-compatible chat APIs.
// It sends the raw document bytes and the rendered text to the model in one
// request and parses the model's JSON verdict.
type Verifier struct {
	client llms.Model
	model  string // overrides the template model when non-empty
	logger *slog.Logger
}

// newVerifier is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newVerifier(config *ai.Config) (*Verifier, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't
	// require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ModelHost),
		openai.WithToken("none"),
	)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		client: client,
		model:  config.Model,
		logger: slog.Default().With("component", "openai-verifier"),
	}, nil
}

// NewVerifier creates a new verifier using the provided configuration.
//
// Returns ai.Verifier interface to enforce abstraction.
func NewVerifier(config *ai.Config) (ai.Verifier, error) {
	return newVerifier(config)
}

// VerifyRendering asks the model whether rendered faithfully represents the
// raw document. The template's user message receives the raw bytes and the
// rendered text as additional content parts; "{format}" placeholders are
// replaced with the rendering format name.
//
// The returned verdict reports the model's judgement; a negative match is not
// an error. An error means the service call or verdict parsing failed.
func (v *Verifier) VerifyRendering(ctx context.Context, raw ai.RawDocument, rendered string, format string, tmpl *prompt.Template) (*ai.Verdict, error) {
	messages := tmpl.Render(map[string]string{"format": format})

	content := make([]llms.MessageContent, 0, len(messages))
	attached := false
	for _, msg := range messages {
		role := chatRole(msg.Role)
		parts := []llms.ContentPart{llms.TextPart(msg.Content)}
		if role == llms.ChatMessageTypeHuman && !attached {
			parts = append(parts,
				llms.BinaryPart(raw.MIME, raw.Data),
				llms.TextPart(rendered),
			)
			attached = true
		}
		content = append(content, llms.MessageContent{Role: role, Parts: parts})
	}

	opts := []llms.CallOption{llms.WithJSONMode(), callModel(v.model, tmpl)}
	if temp, ok := tmpl.Temperature(); ok {
		opts = append(opts, llms.WithTemperature(temp))
	}

	response, err := v.client.GenerateContent(ctx, content, opts...)
	if err != nil {
		v.logger.Error("verification call failed", "document", raw.Name, "err", err)
		return nil, err
	}
	if len(response.Choices) < 1 {
		return nil, fmt.Errorf("verification of %s: no choices returned from model", raw.Name)
	}

	fields, err := parseJSONResponse(response.Choices[0].Content)
	if err != nil {
		v.logger.Error("unparseable verification verdict", "document", raw.Name, "err", err)
		return nil, fmt.Errorf("verification of %s: %w", raw.Name, err)
	}

	match, _ := fields["match"].(bool)
	v.logger.Debug("verification verdict", "document", raw.Name, "match", match)
	return &ai.Verdict{Match: match, Fields: fields}, nil
}

// parseJSONResponse strips markdown code fences, repairs common LLM JSON
// mistakes, and unmarshals the result into a generic map.
func parseJSONResponse(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = repairJSON(text)

	var fields map[string]any
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// chatRole maps a template role name to the langchaingo message type.
func chatRole(role string) llms.ChatMessageType {
	switch strings.ToLower(role) {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// callModel picks the configured model override, falling back to the model
// named in the template.
func callModel(override string, tmpl *prompt.Template) llms.CallOption {
	model := override
	if model == "" {
		model = tmpl.Model
	}
	return llms.WithModel(model)
}
