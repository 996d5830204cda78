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


// Package ai provides abstractions for the AI services used by the document
// pipeline.
//
// This package defines interfaces for verification, analysis, and text
// embedding. The pipeline depends on these abstractions rather than concrete
// implementations, so fakes can be substituted in tests without patching any
// global state.
//
// The package is designed around three service interfaces:
//
//   - Verifier: judges whether a rendered document matches its raw source
//   - Analyzer: runs an analysis prompt over document text
//   - Embedder: generates vector embeddings from text
//
// and a Provider interface aggregating them for initialization and lifecycle
// management.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors (openai.NewProvider etc.) return interface types to
// enforce abstraction. Test utility constructors in ai/mock return concrete
// types to enable behavior injection and call-count assertions.
package ai
