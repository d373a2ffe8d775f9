// Package memory implements the Universal Machine's segmented memory: a
// dynamic collection of variable-length segments of 32-bit words, indexed
// by a 32-bit segment id, plus the free-list that lets ids be recycled.
//
// Segment 0 is the executing program image. It is always mapped and is
// never placed on the free list. Map prefers the oldest recycled id
// (FIFO); if none are free, the segment vector is extended by one.
package memory

import (
	"errors"
	"fmt"
)

// The following sentinel errors identify the fatal conditions a Memory can
// report. Callers wrap them with context via fmt.Errorf("%w: ...").
var (
	// ErrUnmapped indicates an access to a segment id that is not
	// currently mapped (never allocated, already unmapped, or out of
	// range).
	ErrUnmapped = errors.New("memory: segment not mapped")

	// ErrOffsetOutOfRange indicates an access past the end of a segment.
	ErrOffsetOutOfRange = errors.New("memory: offset out of range")

	// ErrUnmapZero indicates an attempt to unmap segment 0.
	ErrUnmapZero = errors.New("memory: cannot unmap segment 0")

	// ErrAlreadyUnmapped indicates an unmap of a segment that is not
	// mapped (double free).
	ErrAlreadyUnmapped = errors.New("memory: segment already unmapped")
)

// initialFreeIDs is the size of the free-list seeded at construction time.
// Purely an allocation-pattern optimization (keeps the first few Map calls
// returning small, predictable ids); it is not observable behavior.
const initialFreeIDs = 8

// Memory owns the collection of segments and the free-id list.
type Memory struct {
	segments [][]uint32 // nil entry == unmapped slot
	free     []uint32   // FIFO queue: pop low (front), push high (back)
}

// New creates a Memory whose segment 0 has the given length in words,
// zero-filled. It seeds the free list with a small range of ids above
// segment 0 so early Map calls are cheap and return small ids.
func New(segZeroLength uint32) *Memory {
	m := &Memory{segments: make([][]uint32, initialFreeIDs+1)}
	for id := uint32(1); id <= initialFreeIDs; id++ {
		m.free = append(m.free, id)
	}
	m.segments[0] = make([]uint32, segZeroLength)
	return m
}

// SegmentZero returns the current segment 0. The returned slice must be
// re-fetched after any call to DuplicateIntoZero: the old slice reference
// is no longer segment 0 once that call returns.
func (m *Memory) SegmentZero() []uint32 {
	return m.segments[0]
}

// Get returns the word at (seg, off).
func (m *Memory) Get(seg, off uint32) (uint32, error) {
	s, err := m.segment(seg)
	if err != nil {
		return 0, err
	}
	if off >= uint32(len(s)) {
		return 0, fmt.Errorf("%w: segment %d offset %d (len %d)", ErrOffsetOutOfRange, seg, off, len(s))
	}
	return s[off], nil
}

// Put stores v at (seg, off).
func (m *Memory) Put(seg, off, v uint32) error {
	s, err := m.segment(seg)
	if err != nil {
		return err
	}
	if off >= uint32(len(s)) {
		return fmt.Errorf("%w: segment %d offset %d (len %d)", ErrOffsetOutOfRange, seg, off, len(s))
	}
	s[off] = v
	return nil
}

// Map allocates a zero-filled segment of the given length and returns the
// id it was assigned. It prefers the oldest recycled id (FIFO pop from the
// front of the free list); if the free list is empty, it extends the
// segment vector by one and uses the new high id.
func (m *Memory) Map(length uint32) uint32 {
	seg := make([]uint32, length)
	if len(m.free) == 0 {
		id := uint32(len(m.segments))
		m.segments = append(m.segments, seg)
		return id
	}
	id := m.free[0]
	m.free = m.free[1:]
	m.segments[id] = seg
	return id
}

// Unmap releases the segment at id back to the free pool. seg must not be
// 0 and must currently be mapped.
func (m *Memory) Unmap(seg uint32) error {
	if seg == 0 {
		return ErrUnmapZero
	}
	if seg >= uint32(len(m.segments)) || m.segments[seg] == nil {
		return fmt.Errorf("%w: segment %d", ErrAlreadyUnmapped, seg)
	}
	m.segments[seg] = nil
	m.free = append(m.free, seg)
	return nil
}

// DuplicateIntoZero replaces segment 0 with a deep copy of segment seg.
// The previous segment 0 is discarded. Segment seg itself is left mapped
// and unchanged. If seg == 0, this is a no-op (the fast self-jump path in
// the engine relies on this).
func (m *Memory) DuplicateIntoZero(seg uint32) error {
	if seg == 0 {
		return nil
	}
	s, err := m.segment(seg)
	if err != nil {
		return err
	}
	dup := make([]uint32, len(s))
	copy(dup, s)
	m.segments[0] = dup
	return nil
}

// segment resolves seg to its backing slice, failing if it is not mapped.
func (m *Memory) segment(seg uint32) ([]uint32, error) {
	if seg >= uint32(len(m.segments)) || m.segments[seg] == nil {
		return nil, fmt.Errorf("%w: segment %d", ErrUnmapped, seg)
	}
	return m.segments[seg], nil
}
