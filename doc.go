// Package transformlab composes parametric 3D affine transforms into a
// single 4x4 matrix.
//
// What is transformlab?
//
//	An ordered list of transforms, each one a kind plus parameters plus a
//	blend factor, reduced to one combined matrix and its determinant:
//		• Kinds: scale, rotate (degrees, X then Y then Z), translate, shear,
//		  custom 4x4
//		• Factors: every transform and the whole composition blend toward
//		  identity with a factor in [0, 1]
//		• Store: versioned, validated mutations with ordered change
//		  notification and lock-free snapshots
//		• Derived cache: combined matrix and determinant memoized per commit
//
// Conventions: matrices are row-major with row vectors (p' = p·M), the
// translation sits in the bottom row, and index 0 of the list is applied
// first.
//
// Layout:
//
//	matrix/     - Mat4 value type, Mul, Lerp, Determinant
//	transform/  - kinds, catalog, Build, Interpolate, Compose
//	store/      - the transform collection store
//	derived/    - memoized combined matrix and determinant
//	engine/     - facade: ids, logging, observers
//	snapshot/   - persisted Record, JSON and TOML codecs, Backend contract
//	persist/    - backends (memory, file, sqlite, postgres, redis, mongo, s3)
//	              and autosave
//	metrics/    - Prometheus collectors
//	config/     - TOML config with environment overrides
//	server/     - HTTP API
//	cmd/transformlab - CLI
//
// Quick example (scale by 2, then move 1 along X):
//
//	(1,1,1) → scale → (2,2,2) → translate → (3,2,2), det = 8
//
//	go install github.com/katalvlaran/transformlab/cmd/transformlab@latest
package transformlab
