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
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	structure "github.com/spl/terminus-store"
)

// MemoryStore is a structure.FileLoad/structure.FileStore backed by an
// in-memory byte buffer. It is used by every unit test in this module and
// by callers who already hold their source log-array resident in memory.
type MemoryStore struct {
	buf    []byte
	closed bool
}

// NewMemoryStore creates an empty MemoryStore, or one pre-populated with
// existing bytes when one argument is supplied.
func NewMemoryStore(initial ...[]byte) *MemoryStore {
	this := &MemoryStore{}

	if len(initial) == 1 {
		this.buf = append([]byte(nil), initial[0]...)
	}

	return this
}

// OpenRead returns a fresh read cursor over the stored bytes.
func (this *MemoryStore) OpenRead() (io.ReadCloser, error) {
	return &memoryReader{r: bytes.NewReader(this.buf)}, nil
}

// Map returns the stored bytes directly; callers must treat the result as
// read-only.
func (this *MemoryStore) Map() ([]byte, error) {
	return this.buf, nil
}

// OpenWrite returns a structure.ByteSink that appends to this store.
// Finalize simply marks the sink closed; all bytes are already visible to
// Map/OpenRead as they are written.
func (this *MemoryStore) OpenWrite() (structure.ByteSink, error) {
	this.buf = this.buf[:0]
	return &memoryWriter{store: this}, nil
}

type memoryReader struct {
	r      *bytes.Reader
	closed bool
}

func (this *memoryReader) Read(p []byte) (int, error) {
	if this.closed {
		return 0, errors.New("terminus-store: read from closed stream")
	}

	return this.r.Read(p)
}

func (this *memoryReader) Close() error {
	this.closed = true
	return nil
}

type memoryWriter struct {
	store  *MemoryStore
	closed bool
}

func (this *memoryWriter) Write(p []byte) (int, error) {
	if this.closed {
		return 0, errors.New("terminus-store: write to closed stream")
	}

	this.store.buf = append(this.store.buf, p...)
	return len(p), nil
}

func (this *memoryWriter) Finalize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	this.closed = true
	return nil
}

// DiskStore is a structure.FileLoad/structure.FileStore backed by a file on
// the local filesystem. Trees and log-arrays built directly from, or to,
// disk use this instead of MemoryStore.
type DiskStore struct {
	path string
}

// NewDiskStore returns a DiskStore rooted at path. The file need not exist
// yet for write use; it must exist for read use.
func NewDiskStore(path string) *DiskStore {
	return &DiskStore{path: path}
}

// OpenRead opens the underlying file for reading from the start.
func (this *DiskStore) OpenRead() (io.ReadCloser, error) {
	return os.Open(this.path)
}

// Map reads the entire underlying file into memory and returns it. Large
// deployments are expected to replace this with a real mmap-backed
// FileLoad; this implementation favors simplicity over zero-copy mapping.
func (this *DiskStore) Map() ([]byte, error) {
	return os.ReadFile(this.path)
}

// OpenWrite truncates (or creates) the underlying file and returns a sink
// over it.
func (this *DiskStore) OpenWrite() (structure.ByteSink, error) {
	f, err := os.Create(this.path)

	if err != nil {
		return nil, err
	}

	return &diskWriter{f: f}, nil
}

type diskWriter struct {
	f *os.File
}

func (this *diskWriter) Write(p []byte) (int, error) {
	return this.f.Write(p)
}

func (this *diskWriter) Finalize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		this.f.Close()
		return err
	}

	if err := this.f.Sync(); err != nil {
		this.f.Close()
		return err
	}

	return this.f.Close()
}
