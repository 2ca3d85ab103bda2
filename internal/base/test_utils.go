// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"
	"strings"
)

// FakeKVs constructs InternalKVs from the given strings, in the format
// "<user-key>#<seq-num>,<kind>:<value>". The ":<value>" suffix is optional.
func FakeKVs(kvs ...string) []InternalKV {
	res := make([]InternalKV, len(kvs))
	for i, s := range kvs {
		if strings.Contains(s, ":") {
			res[i] = ParseInternalKV(s)
		} else {
			res[i] = InternalKV{K: ParseInternalKey(s)}
		}
	}
	return res
}

// NewFakeIter returns an iterator over the given KVs, which must already be
// sorted in internal key order. The iterator is positioned at the first entry.
func NewFakeIter(cmp *Comparer, kvs []InternalKV) *FakeIter {
	keys := make([][]byte, len(kvs))
	vals := make([][]byte, len(kvs))
	for i := range kvs {
		keys[i] = kvs[i].K.AppendEncoded(nil)
		vals[i] = kvs[i].V
	}
	return NewFakeIterRaw(cmp, keys, vals)
}

// NewFakeIterRaw returns an iterator over the given encoded keys and values.
// The keys need not be decodable, which allows tests to inject corruption.
func NewFakeIterRaw(cmp *Comparer, keys, vals [][]byte) *FakeIter {
	if len(keys) != len(vals) {
		panic(fmt.Sprintf("mismatched keys (%d) and values (%d)", len(keys), len(vals)))
	}
	return &FakeIter{
		cmp:   cmp.EnsureDefaults(),
		keys:  keys,
		vals:  vals,
		index: 0,
		valid: len(keys) > 0,
	}
}

// FakeIter is an iterator over a fixed set of encoded KVs.
type FakeIter struct {
	cmp      *Comparer
	keys     [][]byte
	vals     [][]byte
	index    int
	valid    bool
	err      error
	closeErr error
	closed   bool

	// Steps counts relative positioning calls (Next and Prev).
	Steps int
}

// FakeIter implements the InternalIterator interface.
var _ InternalIterator = (*FakeIter)(nil)

// SetError causes future calls to Error() to return this error.
func (f *FakeIter) SetError(err error) {
	f.err = err
}

// SetCloseErr causes future calls to Close() to return this error.
func (f *FakeIter) SetCloseErr(closeErr error) {
	f.closeErr = closeErr
}

// Closed returns true if Close has been called.
func (f *FakeIter) Closed() bool {
	return f.closed
}

func (f *FakeIter) String() string {
	return "fake"
}

// SeekGE is part of the InternalIterator interface.
func (f *FakeIter) SeekGE(key []byte) {
	for f.index = 0; f.index < len(f.keys); f.index++ {
		if f.cmp.CompareInternal(key, f.keys[f.index]) <= 0 {
			f.valid = true
			return
		}
	}
	f.valid = false
}

// First is part of the InternalIterator interface.
func (f *FakeIter) First() {
	f.index = 0
	f.valid = len(f.keys) > 0
}

// Last is part of the InternalIterator interface.
func (f *FakeIter) Last() {
	f.index = len(f.keys) - 1
	f.valid = f.index >= 0
}

// Next is part of the InternalIterator interface.
func (f *FakeIter) Next() {
	f.Steps++
	f.index++
	f.valid = f.index >= 0 && f.index < len(f.keys)
	if f.index > len(f.keys) {
		f.index = len(f.keys)
	}
}

// Prev is part of the InternalIterator interface.
func (f *FakeIter) Prev() {
	f.Steps++
	f.index--
	f.valid = f.index >= 0 && f.index < len(f.keys)
	if f.index < -1 {
		f.index = -1
	}
}

// Valid is part of the InternalIterator interface.
func (f *FakeIter) Valid() bool {
	return f.valid
}

// Key is part of the InternalIterator interface.
func (f *FakeIter) Key() []byte {
	if !f.valid {
		return nil
	}
	return f.keys[f.index]
}

// Value is part of the InternalIterator interface.
func (f *FakeIter) Value() []byte {
	if !f.valid {
		return nil
	}
	return f.vals[f.index]
}

// Error is part of the InternalIterator interface.
func (f *FakeIter) Error() error {
	return f.err
}

// Close is part of the InternalIterator interface.
func (f *FakeIter) Close() error {
	f.closed = true
	if f.closeErr != nil {
		return f.closeErr
	}
	return f.err
}
