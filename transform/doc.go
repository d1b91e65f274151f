// Package transform defines the transform descriptors and the pure functions
// of the composition engine: per-kind matrix construction, factor
// interpolation and ordered composition into one combined matrix.
//
// Conventions (fixed once, relied upon everywhere):
//
//   - Matrices are matrix.Mat4: row-major storage, row-vector points (p' = p·M).
//   - Composition folds descriptors left to right with right multiplication,
//     acc = acc × M_i, so the FIRST descriptor is applied to points first.
//   - rotate takes Euler angles in degrees; the rotation about the world X axis
//     is applied first, then world Y, then world Z (R = Rx·Ry·Rz).
//   - shear coefficient "ab" displaces axis a by ab·b. Storage slots:
//     xy→4, xz→8, yx→1, yz→9, zx→2, zy→6.
//   - custom takes 16 values in storage order (no transpose).
//
// Factor semantics:
//
//   - Templated kinds (scale, rotate, translate, shear) map every parameter to
//     v·factor + offset before construction; the offset is 1 for scale and 0
//     for the others, so factor 0 always yields the identity.
//   - custom applies the factor by Interpolate (blend toward identity).
//   - The global factor of a Collection is applied by Interpolate after the
//     fold, exactly like a custom descriptor's factor.
//
// Kind dispatch goes through a table of per-kind variants indexed by Kind; a
// compile-time assertion rejects the build when the table and the enumeration
// disagree in length, and the catalog test rejects empty entries.
//
// Errors are package sentinels (ErrInvalidArity, ErrOutOfRange, ErrNonFinite,
// ErrUnknownKind, ErrEmptyID, ErrDuplicateID) wrapped with call-site context;
// match them with errors.Is.
package transform
