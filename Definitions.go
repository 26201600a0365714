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

// Package structure defines the top level interfaces and errors shared by
// the succinct data structures that make up the wavelet-tree index: the
// packed bit array, the rank/select index, the log-array reader/builder
// and the wavelet tree itself.
//
// The implementations of these interfaces live in sub-packages (bitarray,
// bitindex, logarray, wavelet); this package only holds what they all
// depend on: the storage collaborator interfaces, the shared error
// values and the build progress events.
package structure

import (
	"context"
	"errors"
	"io"
)

// ErrFormatViolation is wrapped by errors returned when a buffer being
// decoded does not match the fixed on-disk layouts of this package's
// readers: a bit buffer length that is not a multiple of num_layers, a
// missing or truncated control block, or a log-array width of 0 or more
// than 64.
var ErrFormatViolation = errors.New("format violation")

// FileLoad is the read side of the storage collaborator interface consumed
// by the core. Implementations are expected to be cheap to open multiple
// times (OpenRead is called once per construction pass over a log-array
// source) and Map is expected to return a slice that remains valid and
// read-only for the lifetime of anything built from it.
type FileLoad interface {
	// OpenRead returns a fresh, independent read cursor over the
	// underlying bytes, positioned at the start.
	OpenRead() (io.ReadCloser, error)

	// Map returns the entirety of the underlying bytes as a read-only
	// slice, without copying where the implementation allows it.
	Map() ([]byte, error)
}

// ByteSink is the write side of the storage collaborator interface
// consumed by a builder during construction. It is a plain io.Writer with
// an explicit Finalize step, so implementations can distinguish "all
// payload bytes written" from "trailing metadata committed" (the 8-byte
// length field of a bit array, or the (n, w) control block of a
// log-array). Finalize accepts a context so a caller can cancel a build at
// that step; Write takes none. The core itself imposes no timeout.
type ByteSink interface {
	io.Writer

	// Finalize commits any trailing metadata and releases the sink for
	// reading. It must be called exactly once, after the last Write.
	Finalize(ctx context.Context) error
}

// FileStore is the write side of the storage collaborator interface.
// OpenWrite must be called at most once per destination; the returned
// ByteSink is owned exclusively by the caller until Finalize.
type FileStore interface {
	OpenWrite() (ByteSink, error)
}
