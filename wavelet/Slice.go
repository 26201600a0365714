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

package wavelet

import "fmt"

// rangeStep records, for one layer of a Lookup descent, which side of the
// split the target symbol fell on and the [start,end) row range that was
// active at that layer. Position walks these steps bottom-up to recover
// the original index of a matched occurrence.
type rangeStep struct {
	bit        bool
	start, end uint64
}

// Slice is a view over every occurrence of one symbol in the sequence
// encoded by a Tree, produced by Tree.Lookup. It does not copy any bit
// data; it holds the originating Tree (itself immutable) and the
// per-layer range the descent narrowed down to.
type Slice struct {
	entry uint64
	tree  *Tree
	steps []rangeStep
}

// Entry returns the symbol this slice was looked up for.
func (this *Slice) Entry() uint64 {
	return this.entry
}

// Len returns the number of occurrences of Entry() in the sequence.
func (this *Slice) Len() uint64 {
	last := this.steps[len(this.steps)-1]

	if last.bit {
		return this.tree.idx.Rank1Range(last.start, last.end)
	}

	return this.tree.idx.Rank0Range(last.start, last.end)
}

// Position returns the index, in the original sequence, of the k-th
// (0-indexed) occurrence of Entry(). Panics if k >= Len().
func (this *Slice) Position(k uint64) uint64 {
	if k >= this.Len() {
		panic(fmt.Errorf("wavelet: slice position %d out of range [0,%d)", k, this.Len()))
	}

	r := k + 1

	for i := len(this.steps) - 1; i >= 0; i-- {
		step := this.steps[i]
		var pos uint64
		var ok bool

		if step.bit {
			pos, ok = this.tree.idx.Select1Range(r, step.start, step.end)
		} else {
			pos, ok = this.tree.idx.Select0Range(r, step.start, step.end)
		}

		if !ok {
			panic(fmt.Errorf("wavelet: slice position %d inconsistent at layer %d", k, i))
		}

		r = pos - step.start + 1
	}

	return r - 1
}

// PositionIter is a forward-only cursor over the occurrence positions of a
// Slice, in ascending order.
type PositionIter struct {
	slice  *Slice
	idx    uint64
	length uint64
}

// Iter returns a fresh PositionIter over this slice's occurrences.
func (this *Slice) Iter() *PositionIter {
	return &PositionIter{slice: this, idx: 0, length: this.Len()}
}

// Next returns the next occurrence position, or ok == false once the
// iterator is exhausted.
func (this *PositionIter) Next() (uint64, bool) {
	if this.idx >= this.length {
		return 0, false
	}

	pos := this.slice.Position(this.idx)
	this.idx++
	return pos, true
}

// Collect drains the iterator into a slice, for callers that just want
// every position at once.
func (this *PositionIter) Collect() []uint64 {
	out := make([]uint64, 0, this.length-this.idx)

	for {
		pos, ok := this.Next()

		if !ok {
			return out
		}

		out = append(out, pos)
	}
}
