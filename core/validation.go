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

import "fmt"

// ValidateDocumentVector validates a DocumentVector according to domain rules.
//
// Validation rules:
//   - Path must not be empty
//   - Vector must not be empty
//
// NOT validated:
//   - Fingerprint and Model (informational provenance)
//   - IndexedAt (zero means "not yet indexed")
func ValidateDocumentVector(entry *DocumentVector) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidVector)
	}

	if entry.Path == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVector, ErrEmptyPath)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: vector is empty", ErrInvalidVector)
	}

	return nil
}

// ValidateStep validates that a step name is one of the pipeline stages.
func ValidateStep(step Step) error {
	if !step.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStep, step)
	}
	return nil
}

// ValidateDimensions validates a configured embedding dimension.
// Zero means "use the model default" and is accepted; negative values are not.
func ValidateDimensions(dim int) error {
	if dim < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimensions, dim)
	}
	return nil
}

// ValidateWorkers validates a configured worker count.
func ValidateWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, n)
	}
	return nil
}
