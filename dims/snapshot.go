package dims

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dims: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type bindingState struct {
	Name string `cbor:"1,keyasint"`
	Dim  int    `cbor:"2,keyasint"`
}

type frameState struct {
	History  int            `cbor:"1,keyasint"`
	Keep     bool           `cbor:"2,keyasint"`
	Bindings []bindingState `cbor:"3,keyasint"`
}

type stackState struct {
	Session string       `cbor:"1,keyasint"`
	First   int          `cbor:"2,keyasint"`
	Frames  []frameState `cbor:"3,keyasint"`
}

// Snapshot serializes the allocator state to canonical CBOR: the cursor
// and every frame's ordered bindings. Handler bookkeeping (owners,
// reference counts, archives, iteration anchors) is not captured; take
// and restore snapshots at balanced points.
func (s *Stack) Snapshot() ([]byte, error) {
	state := stackState{Session: s.id, First: s.first}
	for _, f := range s.frames {
		fs := frameState{History: f.History, Keep: f.Keep}
		for _, b := range f.Bindings() {
			fs.Bindings = append(fs.Bindings, bindingState{Name: b.Name, Dim: b.Dim})
		}
		state.Frames = append(state.Frames, fs)
	}
	return cborEncMode.Marshal(&state)
}

// Restore replaces the allocator state with a snapshot taken at the same
// stack depth.
func (s *Stack) Restore(data []byte) error {
	var state stackState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("dims: unmarshal snapshot: %w", err)
	}
	if len(state.Frames) == 0 {
		return fmt.Errorf("dims: snapshot has no frames")
	}
	if state.First >= 0 || state.First <= MaxDim {
		return fmt.Errorf("dims: snapshot cursor %d out of range", state.First)
	}
	if len(state.Frames) != len(s.frames) {
		return fmt.Errorf("dims: snapshot depth %d, stack depth %d: %w",
			len(state.Frames)-1, len(s.frames)-1, ErrSnapshotDepth)
	}
	frames := make([]*Frame, 0, len(state.Frames))
	for _, fs := range state.Frames {
		f := NewFrame(fs.History, fs.Keep)
		for _, b := range fs.Bindings {
			if b.Name == "" || b.Dim >= 0 {
				return fmt.Errorf("dims: snapshot binding %q=%d is invalid", b.Name, b.Dim)
			}
			f.Write(b.Name, b.Dim)
		}
		frames = append(frames, f)
	}
	s.frames = frames
	s.first = state.First
	log.Debugf("restored snapshot of session %s at depth %d", state.Session, len(frames)-1)
	return nil
}
