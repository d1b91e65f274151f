package engine

import (
	"errors"

	"github.com/katalvlaran/transformlab/snapshot"
	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// Reason codes returned by Reason.
const (
	ReasonArity       = "invalid_arity"
	ReasonRange       = "out_of_range"
	ReasonNonFinite   = "non_finite"
	ReasonKind        = "unknown_kind"
	ReasonEmptyID     = "empty_id"
	ReasonDuplicateID = "duplicate_id"
	ReasonNotFound    = "not_found"
	ReasonPermutation = "invalid_permutation"
	ReasonIndex       = "index_out_of_range"
	ReasonFormat      = "unsupported_format"
	ReasonOther       = "other"
)

var reasons = []struct {
	err  error
	code string
}{
	{transform.ErrInvalidArity, ReasonArity},
	{transform.ErrOutOfRange, ReasonRange},
	{transform.ErrNonFinite, ReasonNonFinite},
	{transform.ErrUnknownKind, ReasonKind},
	{transform.ErrEmptyID, ReasonEmptyID},
	{store.ErrDuplicateID, ReasonDuplicateID},
	{store.ErrNotFound, ReasonNotFound},
	{store.ErrInvalidPermutation, ReasonPermutation},
	{store.ErrIndexOutOfRange, ReasonIndex},
	{snapshot.ErrFormat, ReasonFormat},
}

// Reason maps a rejection error to a short stable code, suitable for metric
// labels and API error bodies. Unknown errors map to ReasonOther.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.code
		}
	}

	return ReasonOther
}
