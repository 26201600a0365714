/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logarray implements a fixed-bit-width integer sequence: n
// entries of width w packed MSB-first, followed by an 8-byte big-endian
// (n, w) control block. It is the construction input for the
// wavelet tree and the storage format for the rank/select index's block
// and super-block tables.
package logarray

import (
	"encoding/binary"
	"fmt"

	structure "github.com/spl/terminus-store"
)

const controlBlockBytes = 8

// LogArray is a random-access, in-memory view over a decoded log-array.
// Construction-time streaming goes through StreamEntries instead; LogArray
// is for the already-mapped, randomly-addressed case (e.g. the rank/select
// index's block and super-block tables).
type LogArray struct {
	buf []byte // payload only, excludes the control block
	n   uint64
	w   uint
}

// Load parses a byte slice in the on-disk log-array format (payload
// followed by an 8-byte big-endian (count, width) control block) and
// returns the LogArray it describes.
func Load(mapped []byte) (*LogArray, error) {
	if len(mapped) < controlBlockBytes {
		return nil, fmt.Errorf("logarray: %w: buffer shorter than the control block", structure.ErrFormatViolation)
	}

	ctrl := mapped[len(mapped)-controlBlockBytes:]
	n := uint64(binary.BigEndian.Uint32(ctrl[0:4]))
	w := uint(binary.BigEndian.Uint32(ctrl[4:8]))

	if w == 0 || w > 64 {
		return nil, fmt.Errorf("logarray: %w: width %d out of range [1,64]", structure.ErrFormatViolation, w)
	}

	payload := mapped[:len(mapped)-controlBlockBytes]
	needBytes := (n*uint64(w) + 7) / 8

	if uint64(len(payload)) < needBytes {
		return nil, fmt.Errorf("logarray: %w: %d entries of width %d need %d bytes, payload has %d", structure.ErrFormatViolation, n, w, needBytes, len(payload))
	}

	return &LogArray{buf: payload, n: n, w: w}, nil
}

// NewLogArray wraps an already-decoded payload (no control block) as a
// LogArray of n entries of width w, for callers holding packed entries in
// memory with no wire-format footer to parse.
func NewLogArray(buf []byte, n uint64, w uint) *LogArray {
	if w == 0 || w > 64 {
		panic(fmt.Errorf("logarray: width %d out of range [1,64]", w))
	}

	needBytes := (n*uint64(w) + 7) / 8

	if uint64(len(buf)) < needBytes {
		panic(fmt.Errorf("logarray: buffer of %d bytes too short for %d entries of width %d", len(buf), n, w))
	}

	return &LogArray{buf: buf, n: n, w: w}
}

// Len returns the number of entries.
func (this *LogArray) Len() uint64 {
	return this.n
}

// Width returns the bit width of each entry.
func (this *LogArray) Width() uint {
	return this.w
}

// Get returns the i-th entry. Panics if i >= Len(): a programmer error.
func (this *LogArray) Get(i uint64) uint64 {
	if i >= this.n {
		panic(fmt.Errorf("logarray: index %d out of range [0,%d)", i, this.n))
	}

	return getBits(this.buf, i*uint64(this.w), this.w)
}

// Decode returns every entry, in order.
func (this *LogArray) Decode() []uint64 {
	out := make([]uint64, this.n)

	for i := range out {
		out[i] = this.Get(uint64(i))
	}

	return out
}

// getBits extracts the 'width'-bit (<=64), MSB-first value starting at bit
// offset 'start' in buf. Bits past the end of buf read as zero.
func getBits(buf []byte, start uint64, width uint) uint64 {
	var result uint64

	for i := uint(0); i < width; i++ {
		pos := start + uint64(i)
		byteIdx := pos >> 3
		var bit uint64

		if byteIdx < uint64(len(buf)) {
			bitOffset := 7 - uint(pos&7)
			bit = uint64((buf[byteIdx] >> bitOffset) & 1)
		}

		result = (result << 1) | bit
	}

	return result
}

// LengthAndWidth decodes the trailing control block of source without
// decoding any entries. It maps the whole source, which is the simplest
// correct way to read a trailing header; callers that need to avoid
// mapping very large sources should track (n, w) themselves alongside the
// source instead of calling this repeatedly.
func LengthAndWidth(source structure.FileLoad) (uint64, uint, error) {
	mapped, err := source.Map()

	if err != nil {
		return 0, 0, err
	}

	la, err := Load(mapped)

	if err != nil {
		return 0, 0, err
	}

	return la.Len(), la.Width(), nil
}
