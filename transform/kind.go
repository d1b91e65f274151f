package transform

import (
	"fmt"
	"strings"
)

// Kind enumerates the transform kinds. The zero value is invalid so that an
// uninitialized Descriptor never passes validation.
type Kind uint8

const (
	kindInvalid Kind = iota
	// Scale scales along X, Y, Z. Parameters: [sx, sy, sz] (offset 1).
	Scale
	// Rotate rotates about the world X, then Y, then Z axis. Parameters:
	// [ax, ay, az] in degrees.
	Rotate
	// Translate moves along X, Y, Z. Parameters: [tx, ty, tz].
	Translate
	// Shear displaces each axis proportionally to the others. Parameters:
	// [xy, xz, yx, yz, zx, zy].
	Shear
	// Custom is an arbitrary matrix given as 16 values in storage order.
	Custom

	kindCount
)

var kindNames = [...]string{
	kindInvalid: "invalid",
	Scale:       "scale",
	Rotate:      "rotate",
	Translate:   "translate",
	Shear:       "shear",
	Custom:      "custom",
}

// Kinds returns every valid kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := Scale; k < kindCount; k++ {
		out = append(out, k)
	}

	return out
}

// Valid reports whether k is a member of the enumeration.
func (k Kind) Valid() bool {
	return k > kindInvalid && k < kindCount
}

// String returns the lowercase text form ("scale", "rotate", ...).
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind parses the text form, ignoring case and surrounding space.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := Scale; k < kindCount; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}

	return kindInvalid, transformErrorf(fmt.Sprintf("ParseKind(%q)", s), ErrUnknownKind)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, transformErrorf("Kind.MarshalText", ErrUnknownKind)
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed

	return nil
}
