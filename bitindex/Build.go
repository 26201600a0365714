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

package bitindex

import (
	"context"
	"time"

	structure "github.com/spl/terminus-store"
	"github.com/spl/terminus-store/bitarray"
	"github.com/spl/terminus-store/internal"
	"github.com/spl/terminus-store/logarray"
)

// Store is a destination that can be both written to (while building the
// block and super-block tables) and read back from (to assemble the
// finished RankSelectIndex), matching how the outer store round-trips its
// three on-disk files.
type Store interface {
	structure.FileLoad
	structure.FileStore
}

// Build computes the block and super-block cumulative-popcount tables for
// bits, writes them to blockStore and sblockStore as log-arrays, and
// returns the assembled index. It is a programmer error to call Build on a
// bit array whose own builder has not been finalized; bits is assumed
// already finalized since it was constructed via bitarray.Load or
// bitarray.NewBitArray.
func Build(ctx context.Context, bits *bitarray.BitArray, blockStore, sblockStore Store, listener structure.BuildListener) (*RankSelectIndex, error) {
	structureNotify(listener, structure.EvtIndexBuildStart)

	numWords := internal.IntoUsize64(bits.NumWords())
	blockVals := make([]uint64, numWords)
	var cum uint64

	for k := 0; k < numWords; k++ {
		cum += uint64(internal.PopCountWord(bits.Word(internal.FromUsize64(k))))
		blockVals[k] = cum
	}

	sCount := (numWords + SBlockSize - 1) / SBlockSize
	sblockVals := make([]uint64, sCount)

	for s := 0; s < sCount; s++ {
		lastWord := (s+1)*SBlockSize - 1

		if lastWord >= numWords {
			lastWord = numWords - 1
		}

		sblockVals[s] = blockVals[lastWord]
	}

	width := internal.WidthFor(cum)

	if err := writeLogArray(ctx, blockStore, width, blockVals); err != nil {
		return nil, err
	}

	if err := writeLogArray(ctx, sblockStore, width, sblockVals); err != nil {
		return nil, err
	}

	blockMapped, err := blockStore.Map()

	if err != nil {
		return nil, err
	}

	sblockMapped, err := sblockStore.Map()

	if err != nil {
		return nil, err
	}

	blocks, err := logarray.Load(blockMapped)

	if err != nil {
		return nil, err
	}

	sblocks, err := logarray.Load(sblockMapped)

	if err != nil {
		return nil, err
	}

	structureNotify(listener, structure.EvtIndexBuildEnd)
	return FromParts(bits, blocks, sblocks), nil
}

func writeLogArray(ctx context.Context, store structure.FileStore, width uint, values []uint64) error {
	sink, err := store.OpenWrite()

	if err != nil {
		return err
	}

	// internal.WidthFor already returns at least 1; this guard keeps the
	// log-array entry width at 1 or more for any caller-supplied width.
	if width == 0 {
		width = 1
	}

	builder := logarray.NewBuilder(sink, width)

	for _, v := range values {
		if err := builder.Push(v); err != nil {
			return err
		}
	}

	return builder.Finalize(ctx)
}

func structureNotify(listener structure.BuildListener, evtType int) {
	structure.Notify(listener, structure.NewBuildEvent(evtType, -1, -1, time.Time{}))
}
