package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// IDFn generates a descriptor identifier from a 1-based sequence number.
// Schemes that ignore seq (UUIDIDFn) must still return unique values.
type IDFn func(seq int) string

// UUIDIDFn returns a random RFC 4122 version 4 UUID; seq is ignored.
// Complexity: O(1).
func UUIDIDFn(int) string {
	return uuid.NewString()
}

// SequentialIDFn returns prefix + decimal seq, e.g. "t1", "t2", ...
// Complexity: O(d) where d is the number of decimal digits in seq.
// Panics if seq < 1.
func SequentialIDFn(prefix string) IDFn {
	return func(seq int) string {
		if seq < 1 {
			panic(fmt.Sprintf("SequentialIDFn: seq must be ≥ 1, got %d", seq))
		}
		return prefix + strconv.Itoa(seq)
	}
}

// ParseIDScheme maps a configuration name to an IDFn: "uuid" (default when
// empty) or "sequential" (prefix "t").
func ParseIDScheme(name string) (IDFn, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "uuid":
		return UUIDIDFn, nil
	case "sequential", "seq":
		return SequentialIDFn("t"), nil
	}

	return nil, fmt.Errorf("engine: id scheme %q: %w", name, ErrUnknownIDScheme)
}
