package logicalid

import "github.com/nguyentantai21042004/slide-flow/internal/models"

// Scheme extracts logical ids from filenames and orders them.
// One scheme is active per run.
type Scheme interface {
	// Name is the configuration name of the scheme.
	Name() string
	// Extract returns the canonical id for a file of the given kind.
	// ok is false when the name does not carry an id under this scheme.
	Extract(kind models.MediaKind, name string) (id string, ok bool)
	// Compare orders two canonical ids: negative, zero or positive.
	Compare(a, b string) int
	// Validate rejects id sets the comparator cannot order unambiguously.
	Validate(ids []string) error
}
