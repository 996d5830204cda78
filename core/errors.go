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


package core

import "errors"

// Domain validation errors
var (
	// ErrUnknownFormat indicates an output format name that is not supported.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownStep indicates a step name outside the pipeline order.
	ErrUnknownStep = errors.New("unknown pipeline step")

	// ErrInvalidDimensions indicates a non-positive embedding dimension.
	ErrInvalidDimensions = errors.New("embedding dimensions must be a positive integer")

	// ErrInvalidWorkers indicates a non-positive worker count.
	ErrInvalidWorkers = errors.New("worker count must be a positive integer")

	// ErrInvalidVector indicates a vector entry that failed validation.
	ErrInvalidVector = errors.New("invalid document vector")

	// ErrEmptyPath indicates an entry with no document path.
	ErrEmptyPath = errors.New("document path cannot be empty")
)
