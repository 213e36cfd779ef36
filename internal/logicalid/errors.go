package logicalid

import (
	"errors"
	"fmt"
)

// ErrAmbiguousID classifies naming defects: ids that collide or cannot be
// ordered. Match it with errors.Is.
var ErrAmbiguousID = errors.New("ambiguous logical id")

// MixedTokenError reports sibling dotted ids that hold a numeric token in
// one and an alphabetic token in the other at the same position.
type MixedTokenError struct {
	Parent   string
	Position int
	First    string
	Second   string
}

func (e *MixedTokenError) Error() string {
	parent := e.Parent
	if parent == "" {
		parent = "(root)"
	}
	return fmt.Sprintf("%v: %q and %q mix numeric and alphabetic tokens at position %d under %s",
		ErrAmbiguousID, e.First, e.Second, e.Position, parent)
}

func (e *MixedTokenError) Is(target error) bool { return target == ErrAmbiguousID }
