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

package logarray

import (
	"bufio"
	"errors"
	"io"

	structure "github.com/spl/terminus-store"
)

// DefaultStreamBufferSize is the read-ahead buffer size StreamEntries uses
// when the caller does not request a specific one.
const DefaultStreamBufferSize = 4096

const minStreamBufferSize = 1024

// EntryStream is a forward-only, bounded-look-ahead cursor over a
// log-array's entries. It never buffers more than bufferSize bytes of the
// underlying source at a time, so it is safe to use as construction input
// for a wavelet tree without materializing the whole source in memory.
type EntryStream struct {
	source structure.FileLoad
	r      io.ReadCloser
	br     *bufio.Reader
	w      uint
	n      uint64
	idx    uint64
	bitBuf uint64 // valid bits left-justified at the top (bit 63 down)
	nbits  uint   // number of valid bits currently held in bitBuf
}

// StreamEntries opens a fresh read cursor over source and returns an
// EntryStream over its first n entries of width w. n and w are supplied by
// the caller (typically from a prior LengthAndWidth call) rather than
// re-derived here, since the control block trails the payload and a
// streaming reader only ever reads forward from the start.
func StreamEntries(source structure.FileLoad, n uint64, w uint, bufferSize int) (*EntryStream, error) {
	if w == 0 || w > 64 {
		panic(errors.New("logarray: width out of range [1,64]"))
	}

	if bufferSize == 0 {
		bufferSize = DefaultStreamBufferSize
	}

	if bufferSize < minStreamBufferSize {
		return nil, errors.New("logarray: stream buffer size must be at least 1024 bytes")
	}

	r, err := source.OpenRead()

	if err != nil {
		return nil, err
	}

	return &EntryStream{
		source: source,
		r:      r,
		br:     bufio.NewReaderSize(r, bufferSize),
		w:      w,
		n:      n,
	}, nil
}

// Next returns the next entry, or ok == false once all n entries have been
// consumed. A non-nil error indicates an I/O failure from the underlying
// source (including an unexpectedly truncated one).
func (this *EntryStream) Next() (uint64, bool, error) {
	if this.idx >= this.n {
		return 0, false, nil
	}

	val, err := this.readBits(this.w)

	if err != nil {
		return 0, false, err
	}

	this.idx++
	return val, true, nil
}

func (this *EntryStream) readBits(count uint) (uint64, error) {
	var result uint64

	for count > 0 {
		if this.nbits == 0 {
			b, err := this.br.ReadByte()

			if err != nil {
				if err == io.EOF {
					return 0, io.ErrUnexpectedEOF
				}

				return 0, err
			}

			this.bitBuf = uint64(b) << 56
			this.nbits = 8
		}

		take := count

		if take > this.nbits {
			take = this.nbits
		}

		result = (result << take) | (this.bitBuf >> (64 - take))
		this.bitBuf <<= take
		this.nbits -= take
		count -= take
	}

	return result, nil
}

// Reopen rewinds the stream to its first entry by closing and reopening
// the underlying source. It is how construction re-streams the same
// source once per wavelet-tree layer.
func (this *EntryStream) Reopen() error {
	if err := this.r.Close(); err != nil {
		return err
	}

	r, err := this.source.OpenRead()

	if err != nil {
		return err
	}

	this.r = r
	this.br.Reset(r)
	this.idx = 0
	this.bitBuf = 0
	this.nbits = 0
	return nil
}

// Close releases the underlying read cursor.
func (this *EntryStream) Close() error {
	return this.r.Close()
}
