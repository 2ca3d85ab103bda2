// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import (
	"github.com/cinderkv/cinder/internal/base"
	"github.com/cinderkv/cinder/internal/invariants"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
)

// maxRetainedValueSize bounds the capacity of a saved value buffer that is
// kept across positions. Larger buffers are released.
const maxRetainedValueSize = 1 << 20

type iterDirection int8

const (
	// iterForward: the internal iterator is positioned at the current entry.
	iterForward iterDirection = iota
	// iterReverse: the internal iterator is positioned just before all the
	// entries whose user key is the current key, and the current entry is
	// held in savedKey and savedValue.
	iterReverse
)

// Iterator iterates over the user keys visible at a snapshot sequence
// number. It wraps an InternalIterator, hiding entries newer than the
// snapshot, shadowed versions and deleted keys, and exposes at most one entry
// per user key in either direction.
//
// An iterator must be closed after use, but it is not necessary to read an
// iterator until exhaustion.
//
// An iterator is not goroutine-safe, but it is safe to use multiple iterators
// concurrently, with each in a dedicated goroutine.
type Iterator struct {
	cmp     base.Compare
	iter    base.InternalIterator
	seqNum  base.SeqNum
	logger  base.Logger
	metrics *IteratorMetrics
	// err is the first corruption encountered. It is never cleared.
	err   error
	dir   iterDirection
	valid bool
	// savedKey is the current user key when dir == iterReverse. When dir ==
	// iterForward it is scratch space holding the user key to skip.
	savedKey []byte
	// savedValue is the current value when dir == iterReverse.
	savedValue   []byte
	sampling     readSampling
	stats        IteratorStats
	closeChecker invariants.CloseChecker
}

// NewIterator returns an iterator over the user keys of iter that are visible
// at the snapshot seqNum: an entry is visible if its sequence number is less
// than or equal to seqNum. The returned iterator owns iter and closes it when
// it is itself closed. The iterator is unpositioned: it is invalid until one
// of First, Last or SeekGE is called.
func NewIterator(iter InternalIterator, seqNum SeqNum, opts *IterOptions) *Iterator {
	opts = opts.EnsureDefaults()
	i := &Iterator{
		cmp:     opts.Comparer.Compare,
		iter:    iter,
		seqNum:  seqNum,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}
	i.sampling.init(opts)
	return i
}

// parseKey decodes the internal iterator's current key, charging the entry
// against the read sampling budget. A key that fails to decode records a
// corruption error and reports false.
func (i *Iterator) parseKey() (base.InternalKey, bool) {
	k := i.iter.Key()
	i.sampling.maybeSample(k, len(k)+len(i.iter.Value()))
	ikey, err := base.DecodeInternalKey(k)
	if err != nil {
		i.stats.CorruptKeyCount++
		if i.err == nil {
			i.err = errors.Wrap(err, "cinder: corrupted internal key in iterator")
			i.logger.Errorf("%s", redact.Sprintf("iterator at seqnum %s: %v", i.seqNum, i.err))
		}
		return ikey, false
	}
	return ikey, true
}

// findNextEntry scans forward from the internal iterator's current position,
// which must be valid, for the first visible entry. If skipping is true,
// entries with a user key less than or equal to savedKey are hidden.
func (i *Iterator) findNextEntry(skipping bool) bool {
	for {
		if ikey, ok := i.parseKey(); ok && ikey.Visible(i.seqNum) {
			switch ikey.Kind() {
			case base.InternalKeyKindDelete:
				// Skip all upcoming entries for this key since they are
				// hidden by this deletion.
				i.savedKey = append(i.savedKey[:0], ikey.UserKey...)
				skipping = true
			case base.InternalKeyKindSet:
				if !skipping || i.cmp(ikey.UserKey, i.savedKey) > 0 {
					i.valid = true
					i.savedKey = i.savedKey[:0]
					return true
				}
				// Entry hidden.
			}
		}
		i.iterNext()
		if !i.iter.Valid() {
			break
		}
	}
	i.savedKey = i.savedKey[:0]
	i.valid = false
	return false
}

// findPrevEntry scans backward from the internal iterator's current position
// for the newest visible version of the previous user key, leaving the
// internal iterator positioned before all of that key's entries.
func (i *Iterator) findPrevEntry() bool {
	kind := base.InternalKeyKindDelete
	for i.iter.Valid() {
		if ikey, ok := i.parseKey(); ok && ikey.Visible(i.seqNum) {
			if kind != base.InternalKeyKindDelete && i.cmp(ikey.UserKey, i.savedKey) < 0 {
				// An entry for the previous user key. The saved entry is the
				// newest visible version of the current one.
				break
			}
			kind = ikey.Kind()
			if kind == base.InternalKeyKindDelete {
				i.savedKey = i.savedKey[:0]
				i.clearSavedValue()
			} else {
				v := i.iter.Value()
				if cap(i.savedValue) > len(v)+maxRetainedValueSize {
					i.savedValue = nil
				}
				i.savedKey = append(i.savedKey[:0], ikey.UserKey...)
				i.savedValue = append(i.savedValue[:0], v...)
			}
		}
		i.iterPrev()
	}

	if kind == base.InternalKeyKindDelete {
		// No previous entry. A later Next restarts from the first entry.
		i.valid = false
		i.savedKey = i.savedKey[:0]
		i.clearSavedValue()
		i.dir = iterForward
		return false
	}
	i.valid = true
	return true
}

func (i *Iterator) clearSavedValue() {
	if cap(i.savedValue) > maxRetainedValueSize {
		i.savedValue = nil
	} else {
		i.savedValue = i.savedValue[:0]
	}
}

// SeekGE moves the iterator to the first visible key which is greater than or
// equal to the given key. Returns true if the iterator is pointing at a valid
// entry and false otherwise.
func (i *Iterator) SeekGE(key []byte) bool {
	i.stats.ForwardSeekCount[InterfaceCall]++
	i.dir = iterForward
	i.clearSavedValue()
	i.savedKey = base.MakeSearchKey(key, i.seqNum).AppendEncoded(i.savedKey[:0])
	i.iterSeekGE(i.savedKey)
	if !i.iter.Valid() {
		i.valid = false
		i.savedKey = i.savedKey[:0]
		return false
	}
	return i.findNextEntry(false)
}

// First moves the iterator to the first visible key. Returns true if the
// iterator is pointing at a valid entry and false otherwise.
func (i *Iterator) First() bool {
	i.stats.ForwardSeekCount[InterfaceCall]++
	i.dir = iterForward
	i.clearSavedValue()
	i.iterFirst()
	if !i.iter.Valid() {
		i.valid = false
		return false
	}
	return i.findNextEntry(false)
}

// Last moves the iterator to the last visible key. Returns true if the
// iterator is pointing at a valid entry and false otherwise.
func (i *Iterator) Last() bool {
	i.stats.ReverseSeekCount[InterfaceCall]++
	i.dir = iterReverse
	i.clearSavedValue()
	i.iterLast()
	return i.findPrevEntry()
}

// Next moves the iterator to the next visible key. Returns true if the
// iterator is pointing at a valid entry and false otherwise. Next must only
// be called on a valid iterator.
func (i *Iterator) Next() bool {
	if !i.valid {
		if invariants.Enabled {
			panic(errors.AssertionFailedf("cinder: Next called on an invalid iterator"))
		}
		return false
	}
	i.stats.ForwardStepCount[InterfaceCall]++

	if i.dir == iterReverse {
		i.dir = iterForward
		i.clearSavedValue()
		// The internal iterator is pointing just before the entries for the
		// current key, so advance into them. savedKey already holds the key
		// to skip past.
		if !i.iter.Valid() {
			i.iterFirst()
		} else {
			i.iterNext()
		}
		if !i.iter.Valid() {
			i.valid = false
			i.savedKey = i.savedKey[:0]
			return false
		}
	} else {
		i.savedKey = append(i.savedKey[:0], base.ExtractUserKey(i.iter.Key())...)
	}
	return i.findNextEntry(true)
}

// Prev moves the iterator to the previous visible key. Returns true if the
// iterator is pointing at a valid entry and false otherwise. Prev must only
// be called on a valid iterator.
func (i *Iterator) Prev() bool {
	if !i.valid {
		if invariants.Enabled {
			panic(errors.AssertionFailedf("cinder: Prev called on an invalid iterator"))
		}
		return false
	}
	i.stats.ReverseStepCount[InterfaceCall]++

	if i.dir == iterForward {
		// The internal iterator is pointing at the current entry. Scan
		// backwards until the user key changes.
		i.savedKey = append(i.savedKey[:0], base.ExtractUserKey(i.iter.Key())...)
		for {
			i.iterPrev()
			if !i.iter.Valid() {
				i.valid = false
				i.savedKey = i.savedKey[:0]
				i.clearSavedValue()
				return false
			}
			if i.cmp(base.ExtractUserKey(i.iter.Key()), i.savedKey) < 0 {
				break
			}
		}
		i.dir = iterReverse
	}
	return i.findPrevEntry()
}

func (i *Iterator) iterSeekGE(key []byte) {
	i.stats.ForwardSeekCount[InternalIterCall]++
	i.iter.SeekGE(key)
}

func (i *Iterator) iterFirst() {
	i.stats.ForwardSeekCount[InternalIterCall]++
	i.iter.First()
}

func (i *Iterator) iterLast() {
	i.stats.ReverseSeekCount[InternalIterCall]++
	i.iter.Last()
}

func (i *Iterator) iterNext() {
	i.stats.ForwardStepCount[InternalIterCall]++
	i.iter.Next()
}

func (i *Iterator) iterPrev() {
	i.stats.ReverseStepCount[InternalIterCall]++
	i.iter.Prev()
}

// Valid returns true if the iterator is positioned at a valid key/value pair
// and false otherwise.
func (i *Iterator) Valid() bool {
	return i.valid
}

// Key returns the user key of the current key/value pair, or nil if done. The
// caller should not modify the contents of the returned slice, and its
// contents may change on the next call to a positioning method.
func (i *Iterator) Key() []byte {
	if !i.valid {
		return nil
	}
	if i.dir == iterReverse {
		return i.savedKey
	}
	return base.ExtractUserKey(i.iter.Key())
}

// Value returns the value of the current key/value pair, or nil if done. The
// caller should not modify the contents of the returned slice, and its
// contents may change on the next call to a positioning method.
func (i *Iterator) Value() []byte {
	if !i.valid {
		return nil
	}
	if i.dir == iterReverse {
		return i.savedValue
	}
	return i.iter.Value()
}

// Error returns any accumulated error. A corruption error, once encountered,
// is returned for the remaining lifetime of the iterator in preference to the
// internal iterator's error.
func (i *Iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	return i.iter.Error()
}

// Close closes the iterator and the internal iterator it wraps, and returns
// any accumulated error. It is not valid to call any method, including Close,
// after the iterator has been closed.
func (i *Iterator) Close() error {
	i.closeChecker.Close()
	err := errors.CombineErrors(i.err, i.iter.Close())
	i.metrics.add(i.statsRef())
	i.valid = false
	i.savedKey = nil
	i.savedValue = nil
	return err
}

// Stats returns the current stats.
func (i *Iterator) Stats() IteratorStats {
	return *i.statsRef()
}

func (i *Iterator) statsRef() *IteratorStats {
	i.stats.ReadSampleCount = i.sampling.samples
	return &i.stats
}

// IteratorStatsKind describes the two kind of iterator stats.
type IteratorStatsKind int8

const (
	// InterfaceCall represents calls to Iterator.
	InterfaceCall IteratorStatsKind = iota
	// InternalIterCall represents calls by Iterator to its internal iterator.
	InternalIterCall
	// NumStatsKind is the number of kinds, and is used for array sizing.
	NumStatsKind
)

// IteratorStats contains iteration stats.
type IteratorStats struct {
	// ForwardSeekCount includes SeekGE and First.
	ForwardSeekCount [NumStatsKind]int
	// ReverseSeekCount includes Last.
	ReverseSeekCount [NumStatsKind]int
	ForwardStepCount [NumStatsKind]int
	ReverseStepCount [NumStatsKind]int
	// ReadSampleCount is the number of read samples recorded.
	ReadSampleCount int
	// CorruptKeyCount is the number of internal keys that failed to decode.
	CorruptKeyCount int
}

var _ redact.SafeFormatter = &IteratorStats{}

// Merge adds all of the argument's statistics to the receiver.
func (stats *IteratorStats) Merge(o IteratorStats) {
	for i := InterfaceCall; i < NumStatsKind; i++ {
		stats.ForwardSeekCount[i] += o.ForwardSeekCount[i]
		stats.ReverseSeekCount[i] += o.ReverseSeekCount[i]
		stats.ForwardStepCount[i] += o.ForwardStepCount[i]
		stats.ReverseStepCount[i] += o.ReverseStepCount[i]
	}
	stats.ReadSampleCount += o.ReadSampleCount
	stats.CorruptKeyCount += o.CorruptKeyCount
}

func (stats *IteratorStats) String() string {
	return redact.StringWithoutMarkers(stats)
}

// SafeFormat implements the redact.SafeFormatter interface.
func (stats *IteratorStats) SafeFormat(s redact.SafePrinter, verb rune) {
	for i := range stats.ForwardStepCount {
		switch IteratorStatsKind(i) {
		case InterfaceCall:
			s.SafeString("(interface (dir, seek, step): ")
		case InternalIterCall:
			s.SafeString(", (internal (dir, seek, step): ")
		}
		s.Printf("(fwd, %d, %d), (rev, %d, %d))",
			redact.Safe(stats.ForwardSeekCount[i]), redact.Safe(stats.ForwardStepCount[i]),
			redact.Safe(stats.ReverseSeekCount[i]), redact.Safe(stats.ReverseStepCount[i]))
	}
	s.Printf(", (read samples: %d), (corrupt keys: %d)",
		redact.Safe(stats.ReadSampleCount), redact.Safe(stats.CorruptKeyCount))
}
