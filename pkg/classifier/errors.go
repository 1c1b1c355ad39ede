package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrChunkTooSmall is returned for chunks too short to contain real code. No
// model call is made for them.
var ErrChunkTooSmall = errors.New("chunk below minimum content length")

// FailureKind classifies why a chunk contributed nothing to the analysis
type FailureKind int

const (
	// KindMalformedResponse means the model response was not a JSON object
	KindMalformedResponse FailureKind = iota + 1

	// KindIncompleteSchema means a required feature key was missing
	KindIncompleteSchema

	// KindInvalidFieldType means a required feature's present flag was not a boolean
	KindInvalidFieldType

	// KindTransport covers network, rate limit, retry exhaustion, open circuit and anything unexpected
	KindTransport
)

func (k FailureKind) String() string {
	switch k {
	case KindMalformedResponse:
		return "malformed_response"
	case KindIncompleteSchema:
		return "incomplete_schema"
	case KindInvalidFieldType:
		return "invalid_field_type"
	case KindTransport:
		return "transport_error"
	default:
		return "unknown"
	}
}

// ChunkError describes a chunk-local classification failure
type ChunkError struct {
	Kind  FailureKind
	Chunk int

	// Missing lists absent required keys for KindIncompleteSchema
	Missing []string

	// Field names the offending feature for KindInvalidFieldType
	Field string

	// Raw is the model response, when one was received
	Raw string

	Err error
}

func (e *ChunkError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "chunk %d: %s", e.Chunk, e.Kind)
	switch {
	case len(e.Missing) > 0:
		fmt.Fprintf(&b, ": missing %s", strings.Join(e.Missing, ", "))
	case e.Field != "":
		fmt.Fprintf(&b, ": %s.present is not a boolean", e.Field)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or zero when err is not a ChunkError
func KindOf(err error) FailureKind {
	var chunkErr *ChunkError
	if errors.As(err, &chunkErr) {
		return chunkErr.Kind
	}
	return 0
}
