// Package wire is the hand-written FlatBuffers encoding for the oracle's
// request/response boundary (SPEC_FULL.md §11): a DealRequest going out to
// the solver and a TrickCount coming back. No `flatc`-generated bindings are
// available, so this mirrors their shape directly against the flatbuffers.Builder/Table
// API, the same layer cgo/bridge.go in the teacher built its own wire types on.
package wire

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// DealRequest field slots, in declaration order: Hands (vector of string
// offsets), Strain (int8), Leader (int8).
const (
	dealRequestHandsSlot  = 0
	dealRequestStrainSlot = 1
	dealRequestLeaderSlot = 2
)

// DealRequest is a read view over an encoded deal-request buffer.
type DealRequest struct {
	tab flatbuffers.Table
}

// GetRootAsDealRequest interprets buf as a DealRequest rooted at offset.
func GetRootAsDealRequest(buf []byte, offset flatbuffers.UOffsetT) *DealRequest {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	req := &DealRequest{}
	req.tab.Bytes = buf
	req.tab.Pos = n + offset
	return req
}

// Hand returns the j'th hand string (seat order North..West).
func (r *DealRequest) Hand(j int) string {
	o := r.tab.Offset(flatbuffers.VOffsetT(4 + dealRequestHandsSlot*2))
	if o == 0 {
		return ""
	}
	vec := r.tab.Vector(o)
	vec += flatbuffers.UOffsetT(j) * 4
	return string(r.tab.ByteVector(vec))
}

// Strain returns the encoded trump strain (0..3 suits, 4 = no trump).
func (r *DealRequest) Strain() int8 {
	o := r.tab.Offset(flatbuffers.VOffsetT(4 + dealRequestStrainSlot*2))
	if o == 0 {
		return 0
	}
	return r.tab.GetInt8(o + r.tab.Pos)
}

// Leader returns the encoded seat on lead (0..3).
func (r *DealRequest) Leader() int8 {
	o := r.tab.Offset(flatbuffers.VOffsetT(4 + dealRequestLeaderSlot*2))
	if o == 0 {
		return 0
	}
	return r.tab.GetInt8(o + r.tab.Pos)
}

// EncodeDealRequest builds a DealRequest buffer. hands must have exactly 4
// PBN hand strings (seat order North..West).
func EncodeDealRequest(hands [4]string, strain, leader int8) []byte {
	b := flatbuffers.NewBuilder(256)

	handOffsets := make([]flatbuffers.UOffsetT, len(hands))
	for i := len(hands) - 1; i >= 0; i-- {
		handOffsets[i] = b.CreateString(hands[i])
	}

	b.StartVector(4, len(hands), 4)
	for i := len(hands) - 1; i >= 0; i-- {
		b.PrependUOffsetT(handOffsets[i])
	}
	handsVec := b.EndVector(len(hands))

	b.StartObject(3)
	b.PrependInt8Slot(dealRequestLeaderSlot, leader, 0)
	b.PrependInt8Slot(dealRequestStrainSlot, strain, 0)
	b.PrependUOffsetTSlot(dealRequestHandsSlot, handsVec, 0)
	root := b.EndObject()

	b.Finish(root)
	return b.FinishedBytes()
}

// TrickCount field slots: Tricks (int32), Ok (bool).
const (
	trickCountTricksSlot = 0
	trickCountOkSlot     = 1
)

// TrickCount is a read view over an encoded trick-count response buffer.
type TrickCount struct {
	tab flatbuffers.Table
}

// GetRootAsTrickCount interprets buf as a TrickCount rooted at offset.
func GetRootAsTrickCount(buf []byte, offset flatbuffers.UOffsetT) *TrickCount {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	tc := &TrickCount{}
	tc.tab.Bytes = buf
	tc.tab.Pos = n + offset
	return tc
}

// Tricks returns the reported trick count for the side on lead.
func (t *TrickCount) Tricks() int32 {
	o := t.tab.Offset(flatbuffers.VOffsetT(4 + trickCountTricksSlot*2))
	if o == 0 {
		return 0
	}
	return t.tab.GetInt32(o + t.tab.Pos)
}

// Ok reports whether the solver completed successfully.
func (t *TrickCount) Ok() bool {
	o := t.tab.Offset(flatbuffers.VOffsetT(4 + trickCountOkSlot*2))
	if o == 0 {
		return false
	}
	return t.tab.GetBool(o + t.tab.Pos)
}

// EncodeTrickCount builds a TrickCount response buffer.
func EncodeTrickCount(tricks int32, ok bool) []byte {
	b := flatbuffers.NewBuilder(32)
	b.StartObject(2)
	b.PrependBoolSlot(trickCountOkSlot, ok, false)
	b.PrependInt32Slot(trickCountTricksSlot, tricks, 0)
	root := b.EndObject()
	b.Finish(root)
	return b.FinishedBytes()
}
