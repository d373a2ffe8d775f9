package memory

import (
	"errors"
	"testing"
)

func TestNewZeroFillsSegmentZero(t *testing.T) {
	m := New(4)
	for i := uint32(0); i < 4; i++ {
		v, err := m.Get(0, i)
		if err != nil {
			t.Fatalf("Get(0, %d): %s", i, err)
		}
		if v != 0 {
			t.Fatalf("Get(0, %d) = %d, want 0", i, v)
		}
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	m := New(4)
	if err := m.Put(0, 2, 0xABCD); err != nil {
		t.Fatalf("Put: %s", err)
	}
	got, err := m.Get(0, 2)
	if err != nil {
		t.Fatalf("Get: %s", err)
	}
	if got != 0xABCD {
		t.Fatalf("Get(0, 2) = %#x, want 0xABCD", got)
	}
}

func TestMapReturnsZeroFilledSegment(t *testing.T) {
	m := New(0)
	id := m.Map(4)
	for i := uint32(0); i < 4; i++ {
		v, err := m.Get(id, i)
		if err != nil {
			t.Fatalf("Get(%d, %d): %s", id, i, err)
		}
		if v != 0 {
			t.Fatalf("Get(%d, %d) = %d, want 0", id, i, v)
		}
	}
}

func TestMapPrefersLowestRecycledID(t *testing.T) {
	m := New(0)
	// The free list is seeded with a small range of low ids above 0.
	first := m.Map(1)
	second := m.Map(1)
	if second != first+1 {
		t.Fatalf("second Map id = %d, want %d (FIFO over the seeded free list)", second, first+1)
	}
}

func TestUnmapThenMapReusesSameIDWhenOldestFree(t *testing.T) {
	m := New(0)
	id := m.Map(4)
	if err := m.Unmap(id); err != nil {
		t.Fatalf("Unmap: %s", err)
	}
	// Drain every id already in the free list ahead of the one we just
	// freed (it was pushed onto the back) so the next Map is forced to
	// return exactly what we unmapped.
	for next := m.Map(0); next != id; next = m.Map(0) {
	}
}

func TestUnmapSegmentZeroFails(t *testing.T) {
	m := New(1)
	if err := m.Unmap(0); !errors.Is(err, ErrUnmapZero) {
		t.Fatalf("Unmap(0) = %v, want ErrUnmapZero", err)
	}
}

func TestUnmapAlreadyUnmappedFails(t *testing.T) {
	m := New(0)
	id := m.Map(1)
	if err := m.Unmap(id); err != nil {
		t.Fatalf("first Unmap: %s", err)
	}
	if err := m.Unmap(id); !errors.Is(err, ErrAlreadyUnmapped) {
		t.Fatalf("second Unmap(%d) = %v, want ErrAlreadyUnmapped", id, err)
	}
}

func TestGetOnUnmappedSegmentFails(t *testing.T) {
	m := New(0)
	if _, err := m.Get(99, 0); !errors.Is(err, ErrUnmapped) {
		t.Fatalf("Get(99, 0) = %v, want ErrUnmapped", err)
	}
}

func TestGetOffsetOutOfRangeFails(t *testing.T) {
	m := New(2)
	if _, err := m.Get(0, 2); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Fatalf("Get(0, 2) = %v, want ErrOffsetOutOfRange", err)
	}
}

func TestDuplicateIntoZeroReplacesSegmentZero(t *testing.T) {
	m := New(1)
	id := m.Map(3)
	m.Put(id, 0, 10)
	m.Put(id, 1, 20)
	m.Put(id, 2, 30)

	if err := m.DuplicateIntoZero(id); err != nil {
		t.Fatalf("DuplicateIntoZero: %s", err)
	}
	seg0 := m.SegmentZero()
	if len(seg0) != 3 {
		t.Fatalf("len(segment 0) = %d, want 3", len(seg0))
	}
	if seg0[0] != 10 || seg0[1] != 20 || seg0[2] != 30 {
		t.Fatalf("segment 0 = %v, want [10 20 30]", seg0)
	}

	// Mutating the copy must not affect the source segment.
	seg0[0] = 999
	v, _ := m.Get(id, 0)
	if v != 10 {
		t.Fatalf("source segment mutated: Get(%d, 0) = %d, want 10", id, v)
	}
}

func TestDuplicateIntoZeroOfZeroIsNoop(t *testing.T) {
	m := New(2)
	m.Put(0, 0, 7)
	if err := m.DuplicateIntoZero(0); err != nil {
		t.Fatalf("DuplicateIntoZero(0): %s", err)
	}
	v, _ := m.Get(0, 0)
	if v != 7 {
		t.Fatalf("segment 0 changed by self-duplicate: got %d, want 7", v)
	}
}
