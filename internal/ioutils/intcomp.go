// Package ioutils provides length-prefixed, intcomp-compressed integer
// stream helpers used by the circuit serialization code.
package ioutils

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/ronanh/intcomp"
)

// maxStreamWords bounds the decompressed word count accepted by ReadUints32,
// so a corrupted length prefix cannot trigger a huge allocation.
const maxStreamWords = 1 << 28

// WriteUints32 compresses xs with intcomp and writes it to w with a word
// count prefix.
func WriteUints32(w io.Writer, xs []uint32) error {
	packed := intcomp.CompressUint32(xs, nil)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(packed))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, packed)
}

// ReadUints32 reads a stream written by WriteUints32 and decompresses it.
func ReadUints32(r io.Reader) ([]uint32, error) {
	var length uint64
	if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length > maxStreamWords {
		return nil, fmt.Errorf("compressed stream of %d words exceeds limit", length)
	}
	packed := make([]uint32, length)
	if err := binary.Read(r, binary.LittleEndian, packed); err != nil {
		return nil, err
	}
	return intcomp.UncompressUint32(packed, nil), nil
}
