// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package base defines fundamental types used across cinder, including
// internal keys, the user key comparer, internal iterators, errors and
// logging.
//
// # Internal keys
//
// Every mutation is recorded as a new internal key: the user key followed by
// an 8-byte trailer holding a 56-bit sequence number and a 1-byte kind. The
// encoded form orders ascending by user key and, within a user key,
// descending by sequence number, so the newest version of a key is
// encountered first when iterating forward. [Comparer.CompareInternal]
// implements this ordering on encoded keys, [InternalCompare] on decoded ones.
//
// # Iterators
//
// The [InternalIterator] interface is implemented by memtables, sorted
// segments and the merging iterator that combines them. It yields every
// version of every key; snapshot filtering and version collapsing happen in
// the cinder.Iterator layered on top.
package base
