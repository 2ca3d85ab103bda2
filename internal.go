// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import "github.com/cinderkv/cinder/internal/base"

// SeqNum exports the base.SeqNum type.
type SeqNum = base.SeqNum

// SeqNumMax exports the base.SeqNumMax constant.
const SeqNumMax = base.SeqNumMax

// InternalKeyKind exports the base.InternalKeyKind type.
type InternalKeyKind = base.InternalKeyKind

// These constants are part of the encoded key format, and should not be
// changed.
const (
	InternalKeyKindDelete  = base.InternalKeyKindDelete
	InternalKeyKindSet     = base.InternalKeyKindSet
	InternalKeyKindMax     = base.InternalKeyKindMax
	InternalKeyKindInvalid = base.InternalKeyKindInvalid
)

// InternalKeyTrailer exports the base.InternalKeyTrailer type.
type InternalKeyTrailer = base.InternalKeyTrailer

// InternalKey exports the base.InternalKey type.
type InternalKey = base.InternalKey

// InternalKV exports the base.InternalKV type.
type InternalKV = base.InternalKV

// InternalIterator exports the base.InternalIterator interface. It is the
// contract an Iterator consumes.
type InternalIterator = base.InternalIterator

// Comparer exports the base.Comparer type.
type Comparer = base.Comparer

// DefaultComparer exports the base.DefaultComparer variable.
var DefaultComparer = base.DefaultComparer

// Logger exports the base.Logger type.
type Logger = base.Logger

// DefaultLogger exports the base.DefaultLogger type.
type DefaultLogger = base.DefaultLogger

// MakeInternalKey constructs an internal key from a specified user key,
// sequence number and kind.
func MakeInternalKey(userKey []byte, seqNum SeqNum, kind InternalKeyKind) InternalKey {
	return base.MakeInternalKey(userKey, seqNum, kind)
}

// DecodeInternalKey decodes an encoded internal key, returning a corruption
// error if it is malformed.
func DecodeInternalKey(encodedKey []byte) (InternalKey, error) {
	return base.DecodeInternalKey(encodedKey)
}

// IsCorruptionError returns true if the given error indicates corruption.
func IsCorruptionError(err error) bool {
	return base.IsCorruptionError(err)
}

// ErrCorruption is a marker to indicate that an internal iterator produced an
// entry that isn't in the expected format.
var ErrCorruption = base.ErrCorruption
