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

// Package bitindex implements a two-level rank/select index: two
// auxiliary log-array-packed tables (per-word and per-super-block
// cumulative popcounts) giving constant-time rank and logarithmic select
// over a bitarray.BitArray.
package bitindex

import (
	"fmt"
	"sort"

	"github.com/spl/terminus-store/bitarray"
	"github.com/spl/terminus-store/internal"
	"github.com/spl/terminus-store/logarray"
)

// SBlockSize is the fixed number of consecutive 64-bit words making up one
// super-block.
const SBlockSize = 52

// RankSelectIndex is an immutable rank/select index over a BitArray. Both
// blocks and sblocks hold the cumulative count of 1-bits through the word
// (respectively super-block) they index; the count of 0-bits is always
// derived from the bit position and the 1-count rather than stored
// separately.
type RankSelectIndex struct {
	bits    *bitarray.BitArray
	blocks  *logarray.LogArray // one entry per word, cumulative popcount through that word
	sblocks *logarray.LogArray // one entry per super-block, cumulative popcount through its last word
}

// FromParts assembles a RankSelectIndex from already-decoded parts,
// without re-deriving them. Used by Load and directly by callers that
// built the tables themselves (e.g. tests).
func FromParts(bits *bitarray.BitArray, blocks, sblocks *logarray.LogArray) *RankSelectIndex {
	return &RankSelectIndex{bits: bits, blocks: blocks, sblocks: sblocks}
}

// Load decodes a bit array and its companion block/super-block files from
// their mapped byte slices (the three on-disk files that back an index).
func Load(bitsMapped, blocksMapped, sblocksMapped []byte) (*RankSelectIndex, error) {
	bits, err := bitarray.Load(bitsMapped)

	if err != nil {
		return nil, err
	}

	blocks, err := logarray.Load(blocksMapped)

	if err != nil {
		return nil, err
	}

	sblocks, err := logarray.Load(sblocksMapped)

	if err != nil {
		return nil, err
	}

	return FromParts(bits, blocks, sblocks), nil
}

// Bits returns the underlying bit array.
func (this *RankSelectIndex) Bits() *bitarray.BitArray {
	return this.bits
}

// Len returns the logical length, in bits, of the underlying bit array.
func (this *RankSelectIndex) Len() uint64 {
	return this.bits.Len()
}

func (this *RankSelectIndex) numWords() uint64 {
	return this.bits.NumWords()
}

// total1s returns the total number of 1-bits in the underlying bit array.
func (this *RankSelectIndex) total1s() uint64 {
	n := this.numWords()

	if n == 0 {
		return 0
	}

	return this.blocks.Get(n - 1)
}

// Rank1 returns the number of 1-bits in bits[0..i). Panics if i > Len().
func (this *RankSelectIndex) Rank1(i uint64) uint64 {
	if i > this.bits.Len() {
		panic(fmt.Errorf("bitindex: rank index %d exceeds length %d", i, this.bits.Len()))
	}

	if i == 0 {
		return 0
	}

	fullWords := i / 64
	rem := i % 64
	var base uint64

	if fullWords > 0 {
		base = this.blocks.Get(fullWords - 1)
	}

	if rem == 0 {
		return base
	}

	masked := internal.MaskUpper(this.bits.Word(fullWords), uint(rem))
	return base + uint64(internal.PopCountWord(masked))
}

// Rank0 returns the number of 0-bits in bits[0..i).
func (this *RankSelectIndex) Rank0(i uint64) uint64 {
	return i - this.Rank1(i)
}

// Rank1Range returns the number of 1-bits in bits[a..b).
func (this *RankSelectIndex) Rank1Range(a, b uint64) uint64 {
	return this.Rank1(b) - this.Rank1(a)
}

// Rank0Range returns the number of 0-bits in bits[a..b).
func (this *RankSelectIndex) Rank0Range(a, b uint64) uint64 {
	return this.Rank0(b) - this.Rank0(a)
}

// Select1 returns the position of the r-th (1-indexed) 1-bit in bits, or
// ok == false if r is 0 or exceeds the total number of 1-bits.
func (this *RankSelectIndex) Select1(r uint64) (uint64, bool) {
	if r == 0 || r > this.total1s() {
		return 0, false
	}

	return this.selectOnes(r), true
}

// Select0 returns the position of the r-th (1-indexed) 0-bit in bits, or
// ok == false if r is 0 or exceeds the total number of 0-bits.
func (this *RankSelectIndex) Select0(r uint64) (uint64, bool) {
	total0 := this.bits.Len() - this.total1s()

	if r == 0 || r > total0 {
		return 0, false
	}

	return this.selectZeros(r), true
}

// Select1Range returns the position of the r-th (1-indexed) 1-bit within
// bits[a..b), or ok == false if there is no such bit.
func (this *RankSelectIndex) Select1Range(r, a, b uint64) (uint64, bool) {
	if r == 0 {
		return 0, false
	}

	target := this.Rank1(a) + r
	pos, ok := this.Select1(target)

	if !ok || pos >= b {
		return 0, false
	}

	return pos, true
}

// Select0Range returns the position of the r-th (1-indexed) 0-bit within
// bits[a..b), or ok == false if there is no such bit.
func (this *RankSelectIndex) Select0Range(r, a, b uint64) (uint64, bool) {
	if r == 0 {
		return 0, false
	}

	target := this.Rank0(a) + r
	pos, ok := this.Select0(target)

	if !ok || pos >= b {
		return 0, false
	}

	return pos, true
}

// onesThroughWord returns the cumulative number of 1-bits through
// (inclusive of) word k, for k in [-1, numWords).
func (this *RankSelectIndex) onesThroughWord(k int) uint64 {
	if k < 0 {
		return 0
	}

	return this.blocks.Get(uint64(k))
}

// bitsThroughWord returns the number of logical bits of B covered by words
// [0,k], i.e. min((k+1)*64, Len()).
func (this *RankSelectIndex) bitsThroughWord(k int) uint64 {
	covered := uint64(k+1) * 64

	if n := this.bits.Len(); covered > n {
		return n
	}

	return covered
}

// zerosThroughWord returns the cumulative number of 0-bits through word k.
func (this *RankSelectIndex) zerosThroughWord(k int) uint64 {
	return this.bitsThroughWord(k) - this.onesThroughWord(k)
}

// onesThroughSBlock / bitsThroughSBlock / zerosThroughSBlock are the same
// computation one level up, over super-blocks.
func (this *RankSelectIndex) onesThroughSBlock(s int) uint64 {
	if s < 0 {
		return 0
	}

	return this.sblocks.Get(uint64(s))
}

func (this *RankSelectIndex) bitsThroughSBlock(s int) uint64 {
	lastWord := (s+1)*SBlockSize - 1
	return this.bitsThroughWord(lastWord)
}

func (this *RankSelectIndex) zerosThroughSBlock(s int) uint64 {
	return this.bitsThroughSBlock(s) - this.onesThroughSBlock(s)
}

// selectOnes implements the 3-step select algorithm (super-block binary
// search, block linear scan, in-word byte table lookup) for 1-bits.
func (this *RankSelectIndex) selectOnes(r uint64) uint64 {
	sCount := internal.IntoUsize64(this.sblocks.Len())
	s := sort.Search(sCount, func(i int) bool { return this.onesThroughSBlock(i) >= r })
	numWords := internal.IntoUsize64(this.numWords())
	wordStart := s * SBlockSize
	wordEnd := wordStart + SBlockSize

	if wordEnd > numWords {
		wordEnd = numWords
	}

	k := wordStart

	for ; k < wordEnd; k++ {
		if this.onesThroughWord(k) >= r {
			break
		}
	}

	localRank := r - this.onesThroughWord(k-1)
	bitPos, _ := selectInWord(this.bits.Word(internal.FromUsize64(k)), localRank)
	return internal.FromUsize64(k)*64 + uint64(bitPos)
}

// selectZeros mirrors selectOnes for 0-bits.
func (this *RankSelectIndex) selectZeros(r uint64) uint64 {
	sCount := internal.IntoUsize64(this.sblocks.Len())
	s := sort.Search(sCount, func(i int) bool { return this.zerosThroughSBlock(i) >= r })
	numWords := internal.IntoUsize64(this.numWords())
	wordStart := s * SBlockSize
	wordEnd := wordStart + SBlockSize

	if wordEnd > numWords {
		wordEnd = numWords
	}

	k := wordStart

	for ; k < wordEnd; k++ {
		if this.zerosThroughWord(k) >= r {
			break
		}
	}

	localRank := r - this.zerosThroughWord(k-1)
	bitPos, _ := selectInWord(^this.bits.Word(internal.FromUsize64(k)), localRank)
	return internal.FromUsize64(k)*64 + uint64(bitPos)
}

// selectInWord locates the r-th (1-indexed) set bit of w via a per-byte
// popcount walk plus the precomputed byte-local select table, MSB-first.
func selectInWord(w uint64, r uint64) (uint, bool) {
	remaining := r

	for byteIdx := 0; byteIdx < 8; byteIdx++ {
		shift := uint(56 - byteIdx*8)
		b := byte(w >> shift)
		pc := uint64(internal.PopCountByte(b))

		if pc >= remaining {
			pos := internal.SelectInByte[b][remaining-1]

			if pos < 0 {
				return 0, false
			}

			return uint(byteIdx*8) + uint(pos), true
		}

		remaining -= pc
	}

	return 0, false
}
