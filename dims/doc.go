// Package dims implements scoped allocation of tensor dimensions.
//
// This package contains:
//   - Bijective name<->dim binding frames
//   - The allocation stack with history-bounded lookup windows
//   - Re-entrant scope handlers (cleanup, named, local, global, window)
//   - Conversions between named and positional values
//   - CBOR snapshots and a structured inspector
//
// Dims are strictly negative integers addressing tensor axes from the
// right end of the batch shape. A Stack is an explicit context object:
// create one per logical execution, never share it across goroutines.
package dims
