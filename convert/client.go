package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/docflow/core"
)

// serviceFormat maps output formats to the rendering service's format names.
var serviceFormat = map[core.OutputFormat]string{
	core.FormatMarkdown: "md",
	core.FormatHTML:     "html",
	core.FormatJSON:     "json",
	core.FormatText:     "text",
	core.FormatDoctags:  "doctags",
}

// Client is an HTTP client for a docling-serve style document rendering
// service. The service accepts a raw document upload and returns its textual
// renderings in one response.
type Client struct {
	host       string
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
// There is deliberately no request timeout by default: conversions of large
// documents are slow and a hung call occupies one pipeline worker slot.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a rendering-service client for the given host,
// e.g. "http://localhost:5001".
func NewClient(host string, opts ...ClientOption) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("conversion service host is required")
	}
	c := &Client{
		host:       strings.TrimSuffix(host, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default().With("component", "convert-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// convertResponse mirrors the service's response body.
type convertResponse struct {
	Status   string          `json:"status"`
	Errors   []string        `json:"errors"`
	Document convertDocument `json:"document"`
}

type convertDocument struct {
	MDContent      string `json:"md_content"`
	HTMLContent    string `json:"html_content"`
	JSONContent    string `json:"json_content"`
	TextContent    string `json:"text_content"`
	DoctagsContent string `json:"doctags_content"`
}

func (d *convertDocument) content(format core.OutputFormat) string {
	switch format {
	case core.FormatMarkdown:
		return d.MDContent
	case core.FormatHTML:
		return d.HTMLContent
	case core.FormatJSON:
		return d.JSONContent
	case core.FormatText:
		return d.TextContent
	case core.FormatDoctags:
		return d.DoctagsContent
	}
	return ""
}

// Convert uploads the document and writes one artifact per requested format
// next to the source. A service rejection (4xx or an error status in the
// body) is reported as *ConversionError so callers can treat it as a
// per-document failure.
func (c *Client) Convert(ctx context.Context, sourcePath string, formats []core.OutputFormat) (map[core.OutputFormat]string, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("files", filepath.Base(sourcePath))
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	for _, format := range formats {
		name, ok := serviceFormat[format]
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrUnknownFormat, format)
		}
		if err := form.WriteField("to_formats", name); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+"/v1/convert/file", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("conversion request for %s: %w", sourcePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &ConversionError{
			Path: sourcePath,
			Err:  fmt.Errorf("service rejected document (%d): %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("conversion service returned %d for %s", resp.StatusCode, sourcePath)
	}

	var parsed convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode conversion response for %s: %w", sourcePath, err)
	}
	if parsed.Status != "" && parsed.Status != "success" {
		return nil, &ConversionError{
			Path: sourcePath,
			Err:  fmt.Errorf("status %q: %s", parsed.Status, strings.Join(parsed.Errors, "; ")),
		}
	}

	written := make(map[core.OutputFormat]string, len(formats))
	for _, format := range formats {
		content := parsed.Document.content(format)
		out := ConvertedPath(sourcePath, format)
		if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write artifact %s: %w", out, err)
		}
		written[format] = out
	}

	c.logger.Debug("converted document",
		"source", sourcePath,
		"formats", len(formats),
		"elapsed", time.Since(started))
	return written, nil
}
