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

package bitarray

import (
	"context"
	"encoding/binary"
	"errors"

	structure "github.com/spl/terminus-store"
)

// Builder appends bits one at a time to a structure.ByteSink, MSB-first,
// and emits the trailing 8-byte big-endian length field on Finalize. It is
// the single-producer write side of the format Load reads.
type Builder struct {
	sink    structure.ByteSink
	current byte // bits not yet flushed, left-justified as they accumulate
	avail   uint // bits still free in 'current', counting down from 8
	total   uint64
	done    bool
}

// NewBuilder creates a Builder writing to sink. sink is owned exclusively
// by the Builder until Finalize returns.
func NewBuilder(sink structure.ByteSink) *Builder {
	return &Builder{sink: sink, avail: 8}
}

// Push appends a single bit. Returns an error only if the underlying sink
// write fails; pushing after Finalize is a programmer error and panics.
func (this *Builder) Push(bit bool) error {
	if this.done {
		panic(errors.New("bitarray: push after finalize"))
	}

	this.avail--

	if bit {
		this.current |= 1 << this.avail
	}

	this.total++

	if this.avail == 0 {
		if err := this.flushByte(); err != nil {
			return err
		}
	}

	return nil
}

func (this *Builder) flushByte() error {
	if _, err := this.sink.Write([]byte{this.current}); err != nil {
		return err
	}

	this.current = 0
	this.avail = 8
	return nil
}

// Written returns the number of bits pushed so far.
func (this *Builder) Written() uint64 {
	return this.total
}

// Finalize flushes any partial trailing byte (zero-padded in its low
// bits), appends the 8-byte big-endian total bit count, and finalizes the
// underlying sink. The Builder must not be used again afterwards.
func (this *Builder) Finalize(ctx context.Context) error {
	if this.done {
		return errors.New("bitarray: already finalized")
	}

	if this.avail != 8 {
		if err := this.flushByte(); err != nil {
			return err
		}
	}

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], this.total)

	if _, err := this.sink.Write(lenBuf[:]); err != nil {
		return err
	}

	this.done = true
	return this.sink.Finalize(ctx)
}
