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

package internal

import "math/bits"

// SelectInByte is a per-byte-value, per-rank lookup table: SelectInByte[b][r-1]
// holds the MSB-first bit position (0..7) of the r-th set bit in byte value b,
// or -1 if b has fewer than r set bits. Built once at package init so Select
// can resolve the exact bit within a word with a popcount walk over its bytes
// plus one table lookup, instead of a per-bit scan.
var SelectInByte [256][8]int8

func init() {
	for b := 0; b < 256; b++ {
		rank := 0

		for pos := 0; pos < 8; pos++ {
			// MSB-first: bit 'pos' of the byte is (b >> (7-pos)) & 1
			if (b>>(7-pos))&1 == 1 {
				SelectInByte[b][rank] = int8(pos)
				rank++
			}
		}

		for ; rank < 8; rank++ {
			SelectInByte[b][rank] = -1
		}
	}
}

// PopCountByte returns the number of set bits in a single byte.
func PopCountByte(b byte) int {
	return bits.OnesCount8(b)
}

// PopCountWord returns the number of set bits in a 64-bit word.
func PopCountWord(w uint64) int {
	return bits.OnesCount64(w)
}

// WidthFor returns the number of bits needed to hold the unsigned value max,
// i.e. the smallest w such that max < 2^w. WidthFor(0) is 1: a log-array of
// all-zero entries still needs a one-bit field to be addressable.
func WidthFor(max uint64) uint {
	if max == 0 {
		return 1
	}

	return uint(bits.Len64(max))
}
