package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("docs/report.pdf")
		b := IDFromContent("docs/report.pdf")
		assert.Equal(t, a, b)
	})

	t.Run("distinct inputs produce distinct IDs", func(t *testing.T) {
		a := IDFromContent("docs/report.pdf")
		b := IDFromContent("docs/report2.pdf")
		assert.NotEqual(t, a, b)
	})
}

func TestStepOrder(t *testing.T) {
	assert.Equal(t, 0, StepConvert.Index())
	assert.Equal(t, 1, StepValidate.Index())
	assert.Equal(t, 2, StepAnalyze.Index())
	assert.Equal(t, 3, StepEmbed.Index())
	assert.Equal(t, -1, Step("upload").Index())

	assert.True(t, StepValidate.Valid())
	assert.False(t, Step("").Valid())
}

func TestStepKeyID(t *testing.T) {
	assert.Equal(t, "conversion", Key(StepConvert).ID())
	assert.Equal(t, "analysis", Key(StepAnalyze).ID())
	assert.Equal(t, "analysis:finance", TopicKey(StepAnalyze, "finance").ID())

	// A topic literally named like a step must not collide with the step itself.
	assert.NotEqual(t, Key(StepAnalyze).ID(), TopicKey(StepAnalyze, "analysis").ID())
}

func TestDocumentVectorId(t *testing.T) {
	entry := &DocumentVector{Path: "docs/report.pdf.converted.md"}
	assert.Equal(t, IDFromContent(entry.Path), entry.Id())
}
