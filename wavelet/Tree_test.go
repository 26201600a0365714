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
	"sort"
	"testing"

	structure "github.com/spl/terminus-store"
	"github.com/spl/terminus-store/internal"
	"github.com/spl/terminus-store/logarray"
)

type recordingListener struct {
	events []structure.BuildEvent
}

func (this *recordingListener) ProcessEvent(evt structure.BuildEvent) {
	this.events = append(this.events, evt)
}

func buildTree(t *testing.T, width uint, values []uint64) *Tree {
	t.Helper()
	source := internal.NewMemoryStore()
	sink, err := source.OpenWrite()

	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}

	b := logarray.NewBuilder(sink, width)

	for _, v := range values {
		if err := b.Push(v); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	if err := b.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	listener := &recordingListener{}
	tree, err := BuildWaveletTree(context.Background(), source,
		internal.NewMemoryStore(), internal.NewMemoryStore(), internal.NewMemoryStore(), listener)

	if err != nil {
		t.Fatalf("BuildWaveletTree: %v", err)
	}

	if len(listener.events) == 0 {
		t.Fatal("BuildWaveletTree reported no progress events")
	}

	return tree
}

func TestDecodeRoundTrip(t *testing.T) {
	values := []uint64{21, 1, 30, 13, 23, 21, 3, 0, 21, 21, 12, 11}
	tree := buildTree(t, 5, values)

	if tree.Len() != uint64(len(values)) {
		t.Fatalf("Len() = %d, want %d", tree.Len(), len(values))
	}

	if tree.NumLayers() != 5 {
		t.Fatalf("NumLayers() = %d, want 5", tree.NumLayers())
	}

	got := tree.Decode()

	for i, want := range values {
		if got[i] != want {
			t.Fatalf("Decode()[%d] = %d, want %d", i, got[i], want)
		}
	}
}

func TestAccessMatchesDecode(t *testing.T) {
	values := []uint64{21, 1, 30, 13, 23, 21, 3, 0, 21, 21, 12, 11}
	tree := buildTree(t, 5, values)

	for i, want := range values {
		if got := tree.Access(uint64(i)); got != want {
			t.Fatalf("Access(%d) = %d, want %d", i, got, want)
		}
	}
}

func TestAccessOutOfRangePanics(t *testing.T) {
	tree := buildTree(t, 3, []uint64{1, 2, 3})

	defer func() {
		if recover() == nil {
			t.Fatal("Access out of range did not panic")
		}
	}()

	tree.Access(3)
}

func TestLookupFindsEveryOccurrence(t *testing.T) {
	values := []uint64{8, 3, 8, 8, 1, 2, 3, 2, 8, 9, 3, 3, 6, 7, 0, 4, 8, 7, 3}
	tree := buildTree(t, 4, values)

	want := map[uint64][]uint64{}

	for i, v := range values {
		want[v] = append(want[v], uint64(i))
	}

	for v, expected := range want {
		slice, ok := tree.Lookup(v)

		if !ok {
			t.Fatalf("Lookup(%d): ok = false, want true", v)
		}

		if slice.Entry() != v {
			t.Fatalf("Lookup(%d).Entry() = %d", v, slice.Entry())
		}

		if slice.Len() != uint64(len(expected)) {
			t.Fatalf("Lookup(%d).Len() = %d, want %d", v, slice.Len(), len(expected))
		}

		got := slice.Iter().Collect()
		sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

		if len(got) != len(expected) {
			t.Fatalf("Lookup(%d) positions = %v, want %v", v, got, expected)
		}

		for i := range expected {
			if got[i] != expected[i] {
				t.Fatalf("Lookup(%d) positions = %v, want %v", v, got, expected)
			}
		}
	}
}

func TestLookupMissingSymbol(t *testing.T) {
	values := []uint64{8, 3, 8, 8, 1, 2, 3, 2, 8, 9, 3, 3, 6, 7, 0, 4, 8, 7, 3}
	tree := buildTree(t, 4, values)

	if _, ok := tree.Lookup(15); ok {
		t.Fatal("Lookup(15) should report absent: 15 never occurs")
	}
}

func TestLookupExactOccurrenceLists(t *testing.T) {
	values := []uint64{8, 3, 8, 8, 1, 2, 3, 2, 8, 9, 3, 3, 6, 7, 0, 4, 8, 7, 3}
	tree := buildTree(t, 4, values)

	cases := []struct {
		symbol uint64
		want   []uint64
	}{
		{8, []uint64{0, 2, 3, 8, 16}},
		{3, []uint64{1, 6, 10, 11, 18}},
		{0, []uint64{14}},
	}

	for _, c := range cases {
		slice, ok := tree.Lookup(c.symbol)

		if !ok {
			t.Fatalf("Lookup(%d): ok = false, want true", c.symbol)
		}

		got := slice.Iter().Collect()

		if len(got) != len(c.want) {
			t.Fatalf("Lookup(%d).Iter() = %v, want %v", c.symbol, got, c.want)
		}

		for i := range c.want {
			if got[i] != c.want[i] {
				t.Fatalf("Lookup(%d).Iter() = %v, want %v", c.symbol, got, c.want)
			}
		}
	}

	if _, ok := tree.Lookup(5); ok {
		t.Fatal("Lookup(5) should be absent: 5 never occurs")
	}
}

func TestSingleSymbolAlphabetScenario(t *testing.T) {
	values := []uint64{0, 0, 1, 0, 1}
	tree := buildTree(t, 1, values)

	if got := tree.Access(2); got != 1 {
		t.Fatalf("Access(2) = %d, want 1", got)
	}

	slice, ok := tree.Lookup(1)

	if !ok {
		t.Fatal("Lookup(1): ok = false, want true")
	}

	got := slice.Iter().Collect()
	want := []uint64{2, 4}

	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("Lookup(1).Iter() = %v, want %v", got, want)
	}
}

func TestConstructionByteIdentical(t *testing.T) {
	values := []uint64{5, 2, 7, 1, 0, 6, 3, 4, 2, 5}
	source := internal.NewMemoryStore()
	sink, err := source.OpenWrite()

	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}

	b := logarray.NewBuilder(sink, 3)

	for _, v := range values {
		if err := b.Push(v); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	if err := b.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	bits1, blocks1, sblocks1 := internal.NewMemoryStore(), internal.NewMemoryStore(), internal.NewMemoryStore()
	bits2, blocks2, sblocks2 := internal.NewMemoryStore(), internal.NewMemoryStore(), internal.NewMemoryStore()

	if _, err := BuildWaveletTree(context.Background(), source, bits1, blocks1, sblocks1, nil); err != nil {
		t.Fatalf("first BuildWaveletTree: %v", err)
	}

	if _, err := BuildWaveletTree(context.Background(), source, bits2, blocks2, sblocks2, nil); err != nil {
		t.Fatalf("second BuildWaveletTree: %v", err)
	}

	bm1, _ := bits1.Map()
	bm2, _ := bits2.Map()

	if string(bm1) != string(bm2) {
		t.Fatal("two builds from the same source produced different bit files")
	}

	km1, _ := blocks1.Map()
	km2, _ := blocks2.Map()

	if string(km1) != string(km2) {
		t.Fatal("two builds from the same source produced different block files")
	}

	sm1, _ := sblocks1.Map()
	sm2, _ := sblocks2.Map()

	if string(sm1) != string(sm2) {
		t.Fatal("two builds from the same source produced different super-block files")
	}
}

func TestSingleSymbolAlphabet(t *testing.T) {
	values := []uint64{0, 0, 0, 0, 0}
	tree := buildTree(t, 1, values)

	for i := range values {
		if got := tree.Access(uint64(i)); got != 0 {
			t.Fatalf("Access(%d) = %d, want 0", i, got)
		}
	}

	slice, ok := tree.Lookup(0)

	if !ok || slice.Len() != uint64(len(values)) {
		t.Fatalf("Lookup(0) = (%v,%v), want every position present", slice, ok)
	}
}

func TestFromPartsRejectsMismatchedLayerCount(t *testing.T) {
	tree := buildTree(t, 4, []uint64{1, 2, 3})

	if _, err := FromParts(tree.Index(), 5); err == nil {
		t.Fatal("FromParts with a layer count not dividing the bit length should fail")
	}
}
