package models

import (
	"fmt"

	"github.com/google/uuid"
)

// ChunkID derives a stable id so re-indexing a document overwrites its records
func ChunkID(namespace, sourceDocument string, chunkIndex int) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s/%s#%d", namespace, sourceDocument, chunkIndex)))
}
