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

import (
	"context"
	"io"
	"path/filepath"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.bin")
	store := NewDiskStore(path)

	sink, err := store.OpenWrite()
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}

	want := []byte("wavelet tree payload")

	if _, err := sink.Write(want); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := sink.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	mapped, err := store.Map()
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	if string(mapped) != string(want) {
		t.Fatalf("Map() = %q, want %q", mapped, want)
	}

	r, err := store.OpenRead()
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}

	if string(got) != string(want) {
		t.Fatalf("OpenRead content = %q, want %q", got, want)
	}
}

func TestMemoryStoreReopenForWriteTruncates(t *testing.T) {
	store := NewMemoryStore([]byte{1, 2, 3})

	sink, err := store.OpenWrite()
	if err != nil {
		t.Fatalf("OpenWrite: %v", err)
	}

	if _, err := sink.Write([]byte{9, 9}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	if err := sink.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	mapped, _ := store.Map()

	if len(mapped) != 2 || mapped[0] != 9 || mapped[1] != 9 {
		t.Fatalf("Map() = %v, want [9 9]: OpenWrite should truncate prior contents", mapped)
	}
}

func TestMemoryStoreClosedReaderErrors(t *testing.T) {
	store := NewMemoryStore([]byte{1, 2, 3})

	r, err := store.OpenRead()
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := r.Read(make([]byte, 1)); err == nil {
		t.Fatal("Read after Close should error")
	}
}
