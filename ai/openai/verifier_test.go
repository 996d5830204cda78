package openai

import (
	"testing"

	"github.com/poiesic/docflow/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestParseJSONResponse(t *testing.T) {
	fields, err := parseJSONResponse(`{"match": true, "document": "a.pdf"}`)
	require.NoError(t, err)
	assert.Equal(t, true, fields["match"])
	assert.Equal(t, "a.pdf", fields["document"])
}

func TestParseJSONResponseStripsFences(t *testing.T) {
	fields, err := parseJSONResponse("```json\n{\"match\": false}\n```")
	require.NoError(t, err)
	assert.Equal(t, false, fields["match"])

	fields, err = parseJSONResponse("```\n{\"match\": true}\n```")
	require.NoError(t, err)
	assert.Equal(t, true, fields["match"])
}

func TestParseJSONResponseRepairsMissingQuote(t *testing.T) {
	// Some models drop the opening quote on keys
	fields, err := parseJSONResponse(`{match": true, reason": "looks fine"}`)
	require.NoError(t, err)
	assert.Equal(t, true, fields["match"])
	assert.Equal(t, "looks fine", fields["reason"])
}

func TestParseJSONResponseInvalid(t *testing.T) {
	_, err := parseJSONResponse("the document looks fine to me")
	assert.Error(t, err)
}

func TestRepairJSONLeavesValidInputAlone(t *testing.T) {
	valid := `{"match": true, "nested": {"a": 1}, "list": [1, 2]}`
	assert.Equal(t, valid, repairJSON(valid))
}

func TestChatRole(t *testing.T) {
	assert.Equal(t, llms.ChatMessageTypeSystem, chatRole("system"))
	assert.Equal(t, llms.ChatMessageTypeSystem, chatRole("System"))
	assert.Equal(t, llms.ChatMessageTypeAI, chatRole("assistant"))
	assert.Equal(t, llms.ChatMessageTypeHuman, chatRole("user"))
	assert.Equal(t, llms.ChatMessageTypeHuman, chatRole("anything-else"))
}

func TestCallModelOverride(t *testing.T) {
	tmpl := &prompt.Template{Model: "template-model"}

	opts := llms.CallOptions{}
	callModel("override-model", tmpl)(&opts)
	assert.Equal(t, "override-model", opts.Model)

	opts = llms.CallOptions{}
	callModel("", tmpl)(&opts)
	assert.Equal(t, "template-model", opts.Model)
}
