package badger

import (
	"fmt"

	"github.com/poiesic/docflow/core"
)

// Key prefixes for different data types
const (
	docVectorPrefix = "docvec"
)

// makeDocVectorKey generates a key for a document vector entry.
// The ID is derived from the document path, so each path occupies one slot.
func makeDocVectorKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", docVectorPrefix, id))
}
