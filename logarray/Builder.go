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
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	structure "github.com/spl/terminus-store"
)

// Builder streams fixed-width entries to a structure.ByteSink and emits
// the trailing (count, width) control block on Finalize.
type Builder struct {
	sink    structure.ByteSink
	w       uint
	current byte
	avail   uint
	count   uint64
	done    bool
}

// NewBuilder creates a Builder writing entries of the given width to sink.
// Panics if width is outside [1,64]: a caller programming error.
func NewBuilder(sink structure.ByteSink, width uint) *Builder {
	if width == 0 || width > 64 {
		panic(fmt.Errorf("logarray: width %d out of range [1,64]", width))
	}

	return &Builder{sink: sink, w: width, avail: 8}
}

// Push appends one entry. Only the low 'width' bits of value are written;
// higher bits are silently discarded, mirroring how a bit-packed field
// truncates an oversized value.
func (this *Builder) Push(value uint64) error {
	if this.done {
		panic(errors.New("logarray: push after finalize"))
	}

	for i := uint(0); i < this.w; i++ {
		bit := (value>>(this.w-1-i))&1 == 1
		this.avail--

		if bit {
			this.current |= 1 << this.avail
		}

		if this.avail == 0 {
			if _, err := this.sink.Write([]byte{this.current}); err != nil {
				return err
			}

			this.current = 0
			this.avail = 8
		}
	}

	this.count++
	return nil
}

// Finalize flushes any partial trailing byte, appends the 8-byte
// big-endian (count, width) control block, and finalizes the underlying
// sink.
func (this *Builder) Finalize(ctx context.Context) error {
	if this.done {
		return errors.New("logarray: already finalized")
	}

	if this.avail != 8 {
		if _, err := this.sink.Write([]byte{this.current}); err != nil {
			return err
		}

		this.current = 0
		this.avail = 8
	}

	var ctrl [8]byte
	binary.BigEndian.PutUint32(ctrl[0:4], uint32(this.count))
	binary.BigEndian.PutUint32(ctrl[4:8], uint32(this.w))

	if _, err := this.sink.Write(ctrl[:]); err != nil {
		return err
	}

	this.done = true
	return this.sink.Finalize(ctx)
}
