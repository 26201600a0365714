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

// Package wavelet implements the wavelet-tree layout, construction and
// query algorithms: a layered bit buffer on top of a
// bitindex.RankSelectIndex supporting Access, Lookup and streaming
// construction from a log-array source.
package wavelet

import (
	"fmt"

	structure "github.com/spl/terminus-store"
	"github.com/spl/terminus-store/bitindex"
)

// Tree is an immutable wavelet tree: a rank/select index over a bit buffer
// of length n*numLayers, viewed as numLayers contiguous rows of length n.
type Tree struct {
	idx        *bitindex.RankSelectIndex
	n          uint64
	numLayers  uint
}

// FromParts assembles a Tree from an already-built index and a layer
// count. Returns a wrapped structure.ErrFormatViolation if numLayers is 0
// or does not evenly divide the index's bit length.
func FromParts(idx *bitindex.RankSelectIndex, numLayers uint) (*Tree, error) {
	if numLayers == 0 {
		return nil, fmt.Errorf("wavelet: %w: num_layers must not be zero", structure.ErrFormatViolation)
	}

	if idx.Len()%uint64(numLayers) != 0 {
		return nil, fmt.Errorf("wavelet: %w: bit length %d is not a multiple of num_layers %d", structure.ErrFormatViolation, idx.Len(), numLayers)
	}

	return &Tree{idx: idx, n: idx.Len() / uint64(numLayers), numLayers: numLayers}, nil
}

// Load decodes a wavelet tree from the mapped bytes of its three on-disk
// files plus the caller-supplied layer count (not persisted inside the
// files themselves).
func Load(bitsMapped, blocksMapped, sblocksMapped []byte, numLayers uint) (*Tree, error) {
	idx, err := bitindex.Load(bitsMapped, blocksMapped, sblocksMapped)

	if err != nil {
		return nil, err
	}

	return FromParts(idx, numLayers)
}

// Len returns the number of symbols in the encoded sequence.
func (this *Tree) Len() uint64 {
	return this.n
}

// NumLayers returns the bit width of the tree's alphabet.
func (this *Tree) NumLayers() uint {
	return this.numLayers
}

// Index returns the underlying rank/select index, for callers that need
// to inspect the raw bit layout (e.g. persistence, diagnostics).
func (this *Tree) Index() *bitindex.RankSelectIndex {
	return this.idx
}

// Access decodes the i-th symbol of the original sequence. Panics if
// i >= Len(): a programmer error, not a recoverable condition.
func (this *Tree) Access(i uint64) uint64 {
	if i >= this.n {
		panic(fmt.Errorf("wavelet: access index %d out of range [0,%d)", i, this.n))
	}

	alphabetStart, alphabetEnd := uint64(0), uint64(1)<<this.numLayers
	rangeStart, rangeEnd := uint64(0), this.n
	offset := i

	for layer := uint(0); layer < this.numLayers; layer++ {
		rowStart := uint64(layer)*this.n + rangeStart
		rowEnd := uint64(layer)*this.n + rangeEnd
		g := rowStart + offset
		bit := this.idx.Bits().Get(g)
		mid := (alphabetStart + alphabetEnd) / 2

		if bit {
			offset = this.idx.Rank1Range(rowStart, g+1) - 1
			rangeStart += this.idx.Rank0Range(rowStart, rowEnd)
			alphabetStart = mid
		} else {
			offset = this.idx.Rank0Range(rowStart, g+1) - 1
			rangeEnd -= this.idx.Rank1Range(rowStart, rowEnd)
			alphabetEnd = mid
		}
	}

	return alphabetStart
}

// Decode returns the full original sequence, by repeated application of
// Access.
func (this *Tree) Decode() []uint64 {
	out := make([]uint64, this.n)

	for i := range out {
		out[i] = this.Access(uint64(i))
	}

	return out
}

// Lookup returns a Slice over every occurrence of symbol v in the original
// sequence, or ok == false if v never occurs (including v outside the
// tree's alphabet).
func (this *Tree) Lookup(v uint64) (*Slice, bool) {
	alphabetStart, alphabetEnd := uint64(0), uint64(1)<<this.numLayers

	if v >= alphabetEnd {
		return nil, false
	}

	startIdx, endIdx := uint64(0), this.n
	steps := make([]rangeStep, 0, this.numLayers)

	for layer := uint(0); layer < this.numLayers; layer++ {
		fullStart := uint64(layer)*this.n + startIdx
		fullEnd := uint64(layer)*this.n + endIdx
		mid := (alphabetStart + alphabetEnd) / 2
		bit := v >= mid
		steps = append(steps, rangeStep{bit: bit, start: fullStart, end: fullEnd})

		if bit {
			startIdx += this.idx.Rank0Range(fullStart, fullEnd)
			alphabetStart = mid
		} else {
			endIdx -= this.idx.Rank1Range(fullStart, fullEnd)
			alphabetEnd = mid
		}

		if startIdx == endIdx {
			return nil, false
		}
	}

	return &Slice{entry: v, tree: this, steps: steps}, true
}
