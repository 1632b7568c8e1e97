package dims

import "errors"

// ErrExhausted indicates a fresh allocation probed past MaxDim.
var ErrExhausted = errors.New("out of free dims")

// ErrDimConflict indicates an exact dim request collided with an existing
// allocation in a visible frame.
var ErrDimConflict = errors.New("dim already allocated")

// ErrPartialMap indicates a conversion map covered some but not all batch
// axes. Maps must be fully specified or empty.
var ErrPartialMap = errors.New("partially specified conversion map")

// ErrSnapshotDepth indicates a snapshot restore at a different stack depth
// than the snapshot was taken at.
var ErrSnapshotDepth = errors.New("snapshot depth mismatch")
