// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Config holds configuration for the AI services behind the pipeline's
// validation, analysis, and embedding stages.
type Config struct {
	// ModelHost is the base URL for the chat-completion service API used by
	// validation and analysis.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	ModelHost string

	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// Model overrides the model named in a prompt template when non-empty.
	Model string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// EmbedDimensions is the expected embedding vector length. Zero means
	// "whatever the model returns"; when non-zero it must be positive and
	// returned vectors are checked against it.
	EmbedDimensions int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithModelHost sets the chat-completion service host URL.
func WithModelHost(host string) ConfigOption {
	return func(c *Config) {
		c.ModelHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithHost sets both hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.ModelHost = host
		c.EmbeddingHost = host
	}
}

// WithModel sets the chat model override.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbedDimensions sets the expected embedding vector length.
func WithEmbedDimensions(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbedDimensions = dim
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		ModelHost:      defaultHost,
		EmbeddingHost:  defaultHost,
		EmbeddingModel: "embeddinggemma",
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// ParseDimensions parses an embedding dimension from its textual
// configuration form. An empty value yields zero (model default); anything
// else must be a positive integer or the configuration is rejected before any
// document processing begins.
func ParseDimensions(val string) (int, error) {
	if val == "" {
		return 0, nil
	}
	dim, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("embed dimensions must be a positive integer; got %q", val)
	}
	if dim <= 0 {
		return 0, fmt.Errorf("embed dimensions must be a positive integer; got %q", val)
	}
	return dim, nil
}

// Normalize ensures the configuration is in a canonical form. It adds the /v1
// suffix to hosts if missing, which OpenAI-compatible APIs (Ollama, LocalAI,
// vLLM, etc) require.
func (c *Config) Normalize() {
	if c.ModelHost != "" && !strings.HasSuffix(c.ModelHost, "/v1") {
		c.ModelHost = strings.TrimSuffix(c.ModelHost, "/") + "/v1"
	}
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ModelHost == "" {
		return errors.New("ai config: ModelHost is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.EmbedDimensions < 0 {
		return fmt.Errorf("ai config: EmbedDimensions must not be negative; got %d", c.EmbedDimensions)
	}
	return nil
}
