// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// InternalIterator iterates over the encoded internal key/value pairs of a
// memtable, a sorted segment, or a merged view of several of them, in
// ascending internal key order: ascending by user key and, for identical user
// keys, descending by sequence number.
//
// InternalIterators provide 3 absolute positioning methods and 2 relative
// positioning methods. The absolute positioning methods are:
//
// - SeekGE
// - First
// - Last
//
// The relative positioning methods are:
//
// - Next
// - Prev
//
// Relative positioning methods may only be called while the iterator is
// valid. Key and Value return the encoded internal key and the raw value of
// the current entry; the returned slices are only stable until the next
// positioning call.
//
// An iterator must be closed after use, but it is not necessary to read an
// iterator until exhaustion. An iterator is not goroutine-safe.
//
// InternalIterators accumulate errors encountered during operation, exposing
// them through the Error method. Reaching either end of the iterator is not an
// error.
type InternalIterator interface {
	// SeekGE moves the iterator to the first entry whose encoded internal key
	// is greater than or equal to the given encoded internal key.
	SeekGE(key []byte)

	// First moves the iterator to the first entry.
	First()

	// Last moves the iterator to the last entry.
	Last()

	// Next moves the iterator to the next entry.
	Next()

	// Prev moves the iterator to the previous entry.
	Prev()

	// Valid returns true if the iterator is positioned at an entry.
	Valid() bool

	// Key returns the encoded internal key of the current entry.
	Key() []byte

	// Value returns the raw value of the current entry.
	Value() []byte

	// Error returns any accumulated error.
	Error() error

	// Close closes the iterator and returns any accumulated error. Exhausting
	// all the key/value pairs in a table is not considered to be an error.
	// It is valid to call Close multiple times. Other methods should not be
	// called after the iterator has been closed.
	Close() error
}
