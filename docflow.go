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


package docflow

import (
	"log/slog"

	"github.com/poiesic/docflow/ai"
	"github.com/poiesic/docflow/ai/openai"
	"github.com/poiesic/docflow/convert"
	"github.com/poiesic/docflow/pipeline"
	"github.com/poiesic/docflow/search"
	"github.com/poiesic/docflow/storage"
	badgerstore "github.com/poiesic/docflow/storage/badger"
)

// DefaultConvertHost is the rendering service address used when none is
// configured.
const DefaultConvertHost = "http://localhost:5001"

// Library bundles the external service handles behind the pipeline: the
// document rendering client, the AI provider, and an optional vector index.
// It is constructed once and shared; there is no module-global client state.
type Library struct {
	converter convert.Converter
	provider  ai.Provider
	index     storage.VectorIndex
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// LibraryOption configures a Library.
type LibraryOption func(*libraryOptions)

type libraryOptions struct {
	aiConfig    *ai.Config
	convertHost string
	indexPath   string
	withIndex   bool
}

// WithAIConfig overrides the AI service configuration.
func WithAIConfig(config *ai.Config) LibraryOption {
	return func(o *libraryOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithConvertHost sets the document rendering service address.
func WithConvertHost(host string) LibraryOption {
	return func(o *libraryOptions) {
		if host != "" {
			o.convertHost = host
		}
	}
}

// WithVectorIndex opens a BadgerDB vector index at the given path and wires
// it into pipelines and searchers created from this library. An empty path
// opens an in-memory index.
func WithVectorIndex(path string) LibraryOption {
	return func(o *libraryOptions) {
		o.indexPath = path
		o.withIndex = true
	}
}

// NewLibrary constructs the service handles from the given options.
func NewLibrary(opts ...LibraryOption) (*Library, error) {
	options := &libraryOptions{
		aiConfig:    ai.DefaultConfig(),
		convertHost: DefaultConvertHost,
	}
	for _, opt := range opts {
		opt(options)
	}

	converter, err := convert.NewClient(options.convertHost)
	if err != nil {
		return nil, err
	}

	provider, err := openai.NewProvider(options.aiConfig)
	if err != nil {
		return nil, err
	}

	var index storage.VectorIndex
	if options.withIndex {
		if options.indexPath == "" {
			index, err = badgerstore.NewMemoryIndex()
		} else {
			index, err = badgerstore.NewVectorIndex(options.indexPath)
		}
		if err != nil {
			provider.Close()
			return nil, err
		}
	}

	return &Library{
		converter: converter,
		provider:  provider,
		index:     index,
		aiConfig:  options.aiConfig,
		logger:    slog.Default(),
	}, nil
}

// Close releases the AI provider and the vector index, if open.
func (l *Library) Close() error {
	if err := l.provider.Close(); err != nil {
		l.logger.Error("error closing AI provider", "err", err)
	}
	if l.index != nil {
		if err := l.index.Close(); err != nil {
			l.logger.Error("error closing vector index", "err", err)
			return err
		}
	}
	return nil
}

// Converter returns the document rendering client.
func (l *Library) Converter() convert.Converter {
	return l.converter
}

// Provider returns the AI provider.
func (l *Library) Provider() ai.Provider {
	return l.provider
}

// Index returns the vector index, or nil if none was configured.
func (l *Library) Index() storage.VectorIndex {
	return l.index
}

// NewPipeline creates a document pipeline wired to the library's services.
func (l *Library) NewPipeline(opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	base := []pipeline.Option{
		pipeline.WithEmbeddingModel(l.aiConfig.EmbeddingModel),
	}
	if l.index != nil {
		base = append(base, pipeline.WithIndex(l.index))
	}
	return pipeline.NewPipeline(l.converter, l.provider, append(base, opts...)...)
}

// NewSearcher creates a semantic searcher over the library's vector index.
func (l *Library) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(l.index, l.provider, opts...)
}
