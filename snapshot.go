package thicket

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("thicket: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// NodeSnapshot is the resolved state of one attached node.
type NodeSnapshot struct {
	Index      uint32     `cbor:"1,keyasint"`
	Gen        uint32     `cbor:"2,keyasint"`
	Parent     uint32     `cbor:"3,keyasint"`
	Layer      int        `cbor:"4,keyasint"`
	Opacity    float64    `cbor:"5,keyasint"`
	Visible    bool       `cbor:"6,keyasint"`
	Enabled    bool       `cbor:"7,keyasint"`
	Filter     [3]float64 `cbor:"8,keyasint"`
	World      [6]float64 `cbor:"9,keyasint"`
	Bounds     [4]float64 `cbor:"10,keyasint"`
	ContentBox [4]float64 `cbor:"11,keyasint"`
	Virtual    bool       `cbor:"12,keyasint,omitempty"`
	EntityID   uint32     `cbor:"13,keyasint,omitempty"`
}

// ID returns the node id the snapshot was taken from.
func (n NodeSnapshot) ID() NodeID { return NodeID{Index: n.Index, Gen: n.Gen} }

// FrameSnapshot is every attached node's resolved state in painter's order,
// for renderers running out of process.
type FrameSnapshot struct {
	Frame uint64         `cbor:"1,keyasint"`
	Nodes []NodeSnapshot `cbor:"2,keyasint"`
}

func boxArray(b AABB) [4]float64 { return [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} }

// Snapshot copies the resolved tables of every attached node. Call it after
// Resolve; nodes changed since then report their last resolved values.
func (s *Scene) Snapshot() FrameSnapshot {
	snap := FrameSnapshot{Frame: s.frame, Nodes: make([]NodeSnapshot, 0, s.tree.Len())}
	for id := range s.tree.Descendants(s.tree.Root()) {
		r := s.tree.rec(id)
		n := NodeSnapshot{
			Index:    id.Index,
			Gen:      id.Gen,
			Layer:    r.Layer,
			Virtual:  r.Virtual,
			EntityID: s.locals[id.Index].entityID,
		}
		if !r.Parent.IsNil() {
			n.Parent = r.Parent.Index
		}
		n.Opacity, _ = s.opacity.get(id)
		v, _ := s.show.get(id)
		n.Visible, n.Enabled = v.Visible, v.Enabled
		f, _ := s.filter.get(id)
		n.Filter = [3]float64{f.H, f.S, f.V}
		m, _ := s.transform.get(id)
		n.World = m
		b, _ := s.bounds.get(id.Index)
		n.Bounds = boxArray(b)
		cb, _ := s.content.get(id)
		n.ContentBox = boxArray(cb)
		snap.Nodes = append(snap.Nodes, n)
	}
	return snap
}

// MarshalSnapshot serializes a FrameSnapshot to canonical CBOR bytes.
func MarshalSnapshot(snap *FrameSnapshot) ([]byte, error) {
	return cborEncMode.Marshal(snap)
}

// UnmarshalSnapshot deserializes a FrameSnapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*FrameSnapshot, error) {
	var snap FrameSnapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("thicket: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
