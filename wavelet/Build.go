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

import (
	"context"
	"fmt"
	"time"

	structure "github.com/spl/terminus-store"
	"github.com/spl/terminus-store/bitarray"
	"github.com/spl/terminus-store/bitindex"
	"github.com/spl/terminus-store/internal"
	"github.com/spl/terminus-store/logarray"
)

// Store is a destination that can be written to during construction and
// then read back from to assemble the finished structure, matching
// bitindex.Store.
type Store interface {
	structure.FileLoad
	structure.FileStore
}

// BuildWaveletTree streams the fixed-width entries of source (a log-array
// of the symbols to encode, each entry in [0, 2^numLayers)) and writes a
// wavelet tree's bit buffer to destBits, then its rank/select index
// tables to destBlocks/destSBlocks. It re-reads source once per layer
// (a "grouped-fragment" construction): within a layer, bits are
// buffered per alphabet fragment in memory and appended to the output in
// fragment order, so the single pass per layer still yields the
// fragment-major bit order the tree's layout requires. listener, if
// non-nil, is notified of layer and fragment progress; ctx is checked
// between layers so a long build can be cancelled.
func BuildWaveletTree(ctx context.Context, source structure.FileLoad, destBits, destBlocks, destSBlocks Store, listener structure.BuildListener) (*Tree, error) {
	n, w, err := logarray.LengthAndWidth(source)

	if err != nil {
		return nil, err
	}

	if w == 0 || w > 63 {
		return nil, fmt.Errorf("wavelet: %w: alphabet width %d out of range [1,63]", structure.ErrFormatViolation, w)
	}

	alphabetSize := uint64(1) << w
	sink, err := destBits.OpenWrite()

	if err != nil {
		return nil, err
	}

	builder := bitarray.NewBuilder(sink)
	structure.Notify(listener, structure.NewBuildEvent(structure.EvtBuildStart, -1, -1, time.Time{}))

	for layer := uint(0); layer < w; layer++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		structure.Notify(listener, structure.NewBuildEvent(structure.EvtLayerStart, int(layer), -1, time.Time{}))

		if err := emitLayer(ctx, source, n, w, layer, alphabetSize, builder, listener); err != nil {
			return nil, err
		}

		structure.Notify(listener, structure.NewBuildEvent(structure.EvtLayerEnd, int(layer), -1, time.Time{}))
	}

	if err := builder.Finalize(ctx); err != nil {
		return nil, err
	}

	bitsMapped, err := destBits.Map()

	if err != nil {
		return nil, err
	}

	bits, err := bitarray.Load(bitsMapped)

	if err != nil {
		return nil, err
	}

	idx, err := bitindex.Build(ctx, bits, destBlocks, destSBlocks, listener)

	if err != nil {
		return nil, err
	}

	structure.Notify(listener, structure.NewBuildEvent(structure.EvtBuildEnd, -1, -1, time.Time{}))
	return FromParts(idx, w)
}

// emitLayer performs one streaming pass over source, classifying every
// symbol into one of 1<<layer alphabet fragments, then appends each
// fragment's bits to builder in fragment order.
func emitLayer(ctx context.Context, source structure.FileLoad, n uint64, w, layer uint, alphabetSize uint64, builder *bitarray.Builder, listener structure.BuildListener) error {
	numFragments := internal.IntoUsize64(uint64(1) << layer)
	step := alphabetSize >> layer
	fragBits := make([][]bool, numFragments)

	for i := range fragBits {
		fragBits[i] = make([]bool, 0, n/uint64(numFragments)+1)
	}

	stream, err := logarray.StreamEntries(source, n, w, 0)

	if err != nil {
		return err
	}

	defer stream.Close()

	shift := w - layer

	for {
		v, ok, err := stream.Next()

		if err != nil {
			return err
		}

		if !ok {
			break
		}

		frag := internal.IntoUsize64(v >> shift)
		mid := uint64(frag)*step + step/2
		fragBits[frag] = append(fragBits[frag], v >= mid)
	}

	for f := 0; f < numFragments; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for _, bit := range fragBits[f] {
			if err := builder.Push(bit); err != nil {
				return err
			}
		}

		structure.Notify(listener, structure.NewBuildEvent(structure.EvtFragmentDone, int(layer), f, time.Time{}))
	}

	return nil
}
