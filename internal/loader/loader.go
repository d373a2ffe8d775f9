// Package loader reads a UM program image — a binary file whose length is
// a multiple of 4 bytes, each 4-byte group a big-endian instruction word —
// into segment zero of a fresh memory.Memory.
package loader

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/arnebjarne/um/internal/memory"
)

// ErrMisaligned indicates the program image's byte length is not a
// multiple of 4.
var ErrMisaligned = errors.New("loader: program length is not a multiple of 4 bytes")

// ErrShortRead indicates the stream ended before the expected number of
// words was read.
var ErrShortRead = errors.New("loader: short read while loading program")

// Load reads size bytes from r, interpreting them as big-endian 32-bit
// words, and returns a memory.Memory whose segment 0 holds exactly those
// words in order at offsets 0..N-1 (N = size/4).
//
// size is supplied by the host (e.g. from os.File.Stat) rather than
// discovered by reading to EOF, so a truncated or misaligned file is
// reported precisely instead of surfacing as a generic I/O error partway
// through the read.
func Load(r io.Reader, size int64) (*memory.Memory, error) {
	if size%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMisaligned, size)
	}
	n := uint32(size / 4)
	mem := memory.New(n)
	seg0 := mem.SegmentZero()

	var word [4]byte
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, word[:]); err != nil {
			return nil, fmt.Errorf("%w: at word %d: %s", ErrShortRead, i, err)
		}
		seg0[i] = binary.BigEndian.Uint32(word[:])
	}
	return mem, nil
}
