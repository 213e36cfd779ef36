package pairing

import (
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/slide-flow/internal/logicalid"
	"github.com/nguyentantai21042004/slide-flow/internal/models"
)

// Collision is a set of files on one side that resolve to the same id.
type Collision struct {
	Kind  models.MediaKind `json:"kind"`
	ID    string           `json:"id"`
	Files []string         `json:"files"`
}

// AmbiguousIDError lists every id collision found in one pairing run.
// It matches logicalid.ErrAmbiguousID.
type AmbiguousIDError struct {
	Collisions []Collision
}

func (e *AmbiguousIDError) Error() string {
	parts := make([]string, 0, len(e.Collisions))
	for _, c := range e.Collisions {
		parts = append(parts, fmt.Sprintf("%s id %s claimed by %s", c.Kind, c.ID, strings.Join(c.Files, ", ")))
	}
	return fmt.Sprintf("%v: %s", logicalid.ErrAmbiguousID, strings.Join(parts, "; "))
}

func (e *AmbiguousIDError) Is(target error) bool { return target == logicalid.ErrAmbiguousID }
