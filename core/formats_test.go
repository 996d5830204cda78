package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutputFormat(t *testing.T) {
	format, err := ParseOutputFormat("markdown")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, format)

	_, err = ParseOutputFormat("rtf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseOutputFormats(t *testing.T) {
	formats, err := ParseOutputFormats([]string{"markdown", "html"})
	require.NoError(t, err)
	assert.Equal(t, []OutputFormat{FormatMarkdown, FormatHTML}, formats)

	_, err = ParseOutputFormats([]string{"markdown", "rtf"})
	assert.ErrorIs(t, err, ErrUnknownFormat)

	formats, err = ParseOutputFormats(nil)
	require.NoError(t, err)
	assert.Empty(t, formats)
}

func TestFormatSuffixes(t *testing.T) {
	assert.Equal(t, ".md", FormatMarkdown.Suffix())
	assert.Equal(t, ".converted.md", FormatMarkdown.ConvertedSuffix())
	assert.Equal(t, ".converted.txt", FormatText.ConvertedSuffix())
}
