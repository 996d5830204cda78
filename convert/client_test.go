package convert

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/docflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	c, err := NewClient("http://localhost:5001/")
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewClient("")
	assert.Error(t, err)
}

func TestConvertWritesArtifacts(t *testing.T) {
	var gotFormats []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFormats = r.MultipartForm.Value["to_formats"]
		assert.Equal(t, "/v1/convert/file", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","document":{"md_content":"# Report","text_content":"Report"}}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	source := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(source, []byte("raw bytes"), 0o644))

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	written, err := client.Convert(context.Background(), source, []core.OutputFormat{core.FormatMarkdown, core.FormatText})
	require.NoError(t, err)
	assert.Equal(t, []string{"md", "text"}, gotFormats)

	md, err := os.ReadFile(written[core.FormatMarkdown])
	require.NoError(t, err)
	assert.Equal(t, "# Report", string(md))

	txt, err := os.ReadFile(written[core.FormatText])
	require.NoError(t, err)
	assert.Equal(t, "Report", string(txt))
}

func TestConvertRejectionIsConversionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported document", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	dir := t.TempDir()
	source := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(source, []byte("not a pdf"), 0o644))

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), source, []core.OutputFormat{core.FormatMarkdown})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, source, convErr.Path)
}

func TestConvertFailureStatusIsConversionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"failure","errors":["could not parse page 3"]}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	source := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(source, []byte("raw"), 0o644))

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), source, []core.OutputFormat{core.FormatMarkdown})
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Contains(t, convErr.Error(), "could not parse page 3")

	// No artifact gets written on failure
	assert.NoFileExists(t, ConvertedPath(source, core.FormatMarkdown))
}

func TestConvertServerErrorIsNotConversionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	dir := t.TempDir()
	source := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(source, []byte("raw"), 0o644))

	client, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = client.Convert(context.Background(), source, []core.OutputFormat{core.FormatMarkdown})
	require.Error(t, err)
	var convErr *ConversionError
	assert.False(t, errors.As(err, &convErr))
}
