package metadata

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docflow/core"
)

// Suffix is appended to a document path to form its sidecar location.
const Suffix = ".metadata.json"

// Record is the sidecar metadata persisted next to each source document.
// It tracks the document's content fingerprint and per-step completion
// state. The zero value is a valid empty record.
type Record struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	Size        int64  `json:"size,omitempty"`
	Extra       Extra  `json:"extra,omitempty"`
}

// Extra holds per-step completion state, produced artifacts, and provenance.
// All derived state lives here so a fingerprint mismatch can discard it
// wholesale.
type Extra struct {
	Steps   map[string]bool           `json:"steps,omitempty"`
	Outputs map[string][]string       `json:"outputs,omitempty"`
	Inputs  map[string]map[string]any `json:"inputs,omitempty"`
}

// Path returns the sidecar location for a document path.
func Path(docPath string) string {
	return docPath + Suffix
}

// IsSidecar reports whether the file name is a metadata sidecar.
func IsSidecar(name string) bool {
	return len(name) >= len(Suffix) && name[len(name)-len(Suffix):] == Suffix
}

// Fingerprint reads the file once in full and returns the hex BLAKE2b digest
// of its content together with the byte size.
func Fingerprint(path string) (digest string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()

	h, err := blake2b.New(32, nil)
	if err != nil {
		return "", 0, err
	}
	size, err = io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

// Load reads the sidecar record for a document. A missing sidecar is not an
// error: it yields a fresh empty record.
func Load(docPath string) (*Record, error) {
	data, err := os.ReadFile(Path(docPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Record{}, nil
		}
		return nil, fmt.Errorf("load metadata for %s: %w", docPath, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", docPath, err)
	}
	return &rec, nil
}

// Save persists the record to the document's sidecar location. The write goes
// through a temporary file in the same directory followed by a rename, so a
// reader never observes a half-written sidecar. The last writer wins; there is
// no locking across concurrent pipeline invocations.
func Save(docPath string, rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata for %s: %w", docPath, err)
	}
	data = append(data, '\n')

	target := Path(docPath)
	tmp, err := os.CreateTemp(filepath.Dir(target), filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("save metadata for %s: %w", docPath, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save metadata for %s: %w", docPath, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save metadata for %s: %w", docPath, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save metadata for %s: %w", docPath, err)
	}
	return nil
}

// Refresh compares the record's stored fingerprint with a freshly computed
// one. On mismatch all derived state in Extra is discarded and the new
// fingerprint is recorded, invalidating every step for the document. Callers
// must Refresh before consulting IsStepDone; a stale fingerprint makes every
// step flag untrustworthy.
func (r *Record) Refresh(digest string, size int64) (changed bool) {
	if r.Fingerprint == digest {
		return false
	}
	r.Fingerprint = digest
	r.Size = size
	r.Extra = Extra{}
	return true
}

// IsStepDone reports whether the step was recorded as completed.
// Unknown keys default to false.
func (r *Record) IsStepDone(key core.StepKey) bool {
	return r.Extra.Steps[key.ID()]
}

// MarkStep records completion state, produced artifacts, and provenance for
// one step. Only the entry for this step is touched; entries for other steps
// are preserved. The three maps are always written together so no step flag
// exists without its provenance.
func (r *Record) MarkStep(key core.StepKey, done bool, outputs []string, inputs map[string]any) {
	id := key.ID()
	if r.Extra.Steps == nil {
		r.Extra.Steps = make(map[string]bool)
	}
	r.Extra.Steps[id] = done

	if outputs != nil {
		if r.Extra.Outputs == nil {
			r.Extra.Outputs = make(map[string][]string)
		}
		r.Extra.Outputs[id] = outputs
	}
	if inputs != nil {
		if r.Extra.Inputs == nil {
			r.Extra.Inputs = make(map[string]map[string]any)
		}
		r.Extra.Inputs[id] = inputs
	}
}

// StepInput returns the stored provenance record for a step, or nil.
func (r *Record) StepInput(key core.StepKey) map[string]any {
	return r.Extra.Inputs[key.ID()]
}

// StepOutputs returns the stored artifact names for a step, or nil.
func (r *Record) StepOutputs(key core.StepKey) []string {
	return r.Extra.Outputs[key.ID()]
}
