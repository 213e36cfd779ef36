package assembler

import (
	"errors"
	"fmt"
)

var (
	// ErrNoClips means no clip survived validation; nothing was encoded.
	ErrNoClips = errors.New("no valid clips to assemble")
	// ErrAborted means the confirmation hook declined the encode.
	ErrAborted = errors.New("assembly aborted")
)

// EncodeError wraps a failed final encode. No output file is left behind.
type EncodeError struct {
	Output string
	Err    error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Output, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }
