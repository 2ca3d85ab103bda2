// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import (
	"bytes"
	"container/heap"
	"fmt"

	"github.com/cinderkv/cinder/internal/base"
	"github.com/cockroachdb/errors"
)

type mergingIterItem struct {
	iter base.InternalIterator
	key  []byte
}

type mergingIterHeap struct {
	cmp     *base.Comparer
	reverse bool
	items   []mergingIterItem
}

func (h *mergingIterHeap) Len() int {
	return len(h.items)
}

func (h *mergingIterHeap) Less(i, j int) bool {
	if h.reverse {
		i, j = j, i
	}
	return h.cmp.CompareInternal(h.items[i].key, h.items[j].key) < 0
}

func (h *mergingIterHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *mergingIterHeap) Push(x interface{}) {
	h.items = append(h.items, x.(mergingIterItem))
}

func (h *mergingIterHeap) Pop() interface{} {
	n := len(h.items)
	item := h.items[n-1]
	h.items = h.items[:n-1]
	return item
}

// mergingIter merges the entries of several internal iterators (the memtable
// and each sorted segment) into a single stream in internal key order.
//
// The inputs' key ranges may overlap, but there are assumed to be no
// duplicate internal keys: if iters[i] contains a key k then iters[j] will not
// contain that key k. This holds because sequence numbers are unique.
type mergingIter struct {
	dir   int
	iters []base.InternalIterator
	heap  mergingIterHeap
	err   error
}

// mergingIter implements the base.InternalIterator interface.
var _ base.InternalIterator = (*mergingIter)(nil)

// NewMergingIterator returns an iterator that merges its input. Walking the
// resultant iterator will return all key/value pairs of all input iterators
// in strictly increasing internal key order, as defined by cmp. The returned
// iterator is positioned at its first entry and owns the inputs.
//
// None of the iters may be nil.
func NewMergingIterator(cmp *Comparer, iters ...InternalIterator) InternalIterator {
	return newMergingIter(cmp.EnsureDefaults(), iters...)
}

func newMergingIter(cmp *base.Comparer, iters ...base.InternalIterator) *mergingIter {
	m := &mergingIter{
		iters: iters,
	}
	m.heap.cmp = cmp
	m.heap.items = make([]mergingIterItem, 0, len(iters))
	m.First()
	return m
}

func (m *mergingIter) initHeap() {
	m.heap.items = m.heap.items[:0]
	for _, t := range m.iters {
		if t.Valid() {
			m.heap.items = append(m.heap.items, mergingIterItem{
				iter: t,
				key:  t.Key(),
			})
		} else if err := t.Error(); err != nil && m.err == nil {
			m.err = err
		}
	}
	heap.Init(&m.heap)
}

func (m *mergingIter) initMinHeap() {
	m.dir = 1
	m.heap.reverse = false
	m.initHeap()
}

func (m *mergingIter) initMaxHeap() {
	m.dir = -1
	m.heap.reverse = true
	m.initHeap()
}

func (m *mergingIter) switchToMinHeap() {
	if m.heap.Len() == 0 {
		m.First()
		return
	}

	// We're switching from using a max heap to a min heap. We need to advance
	// any iterator that is less than or equal to the current key. Consider the
	// scenario where we have 2 iterators being merged (user-key#seqnum):
	//
	// i1:     *a#2     b#2
	// i2: a#1      b#1
	//
	// The current key is a#2 and i2 is pointed at a#1. When we switch to
	// forward iteration, we want to return a key that is greater than a#2.
	key := m.heap.items[0].key
	cur := m.heap.items[0].iter

	for _, i := range m.iters {
		if i == cur {
			continue
		}
		if !i.Valid() {
			// Exhausted in the reverse direction.
			i.First()
		}
		for ; i.Valid(); i.Next() {
			if m.heap.cmp.CompareInternal(key, i.Key()) < 0 {
				// key < iter-key
				break
			}
			// key >= iter-key
		}
	}

	// Special handling for the current iterator because we were using its key
	// above.
	cur.Next()
	m.initMinHeap()
}

func (m *mergingIter) switchToMaxHeap() {
	if m.heap.Len() == 0 {
		m.Last()
		return
	}

	// We're switching from using a min heap to a max heap. We need to back up
	// any iterator that is greater than or equal to the current key. Consider
	// the scenario where we have 2 iterators being merged (user-key#seqnum):
	//
	// i1: a#2     *b#2
	// i2:     a#1      b#1
	//
	// The current key is b#2 and i2 is pointing at b#1. When we switch to
	// reverse iteration, we want to return a key that is less than b#2.
	key := m.heap.items[0].key
	cur := m.heap.items[0].iter

	for _, i := range m.iters {
		if i == cur {
			continue
		}
		if !i.Valid() {
			// Exhausted in the forward direction.
			i.Last()
		}
		for ; i.Valid(); i.Prev() {
			if m.heap.cmp.CompareInternal(key, i.Key()) > 0 {
				// key > iter-key
				break
			}
			// key <= iter-key
		}
	}

	// Special handling for the current iterator because we were using its key
	// above.
	cur.Prev()
	m.initMaxHeap()
}

// SeekGE implements base.InternalIterator.
func (m *mergingIter) SeekGE(key []byte) {
	m.err = nil
	for _, t := range m.iters {
		t.SeekGE(key)
	}
	m.initMinHeap()
}

// First implements base.InternalIterator.
func (m *mergingIter) First() {
	m.err = nil
	for _, t := range m.iters {
		t.First()
	}
	m.initMinHeap()
}

// Last implements base.InternalIterator.
func (m *mergingIter) Last() {
	m.err = nil
	for _, t := range m.iters {
		t.Last()
	}
	m.initMaxHeap()
}

// Next implements base.InternalIterator.
func (m *mergingIter) Next() {
	if m.err != nil {
		return
	}
	if m.dir != 1 {
		m.switchToMinHeap()
		return
	}
	if m.heap.Len() == 0 {
		return
	}
	m.step(func(it base.InternalIterator) { it.Next() })
}

// Prev implements base.InternalIterator.
func (m *mergingIter) Prev() {
	if m.err != nil {
		return
	}
	if m.dir != -1 {
		m.switchToMaxHeap()
		return
	}
	if m.heap.Len() == 0 {
		return
	}
	m.step(func(it base.InternalIterator) { it.Prev() })
}

// step moves the iterator at the top of the heap and restores the heap
// ordering.
func (m *mergingIter) step(move func(base.InternalIterator)) {
	item := &m.heap.items[0]
	move(item.iter)
	if item.iter.Valid() {
		item.key = item.iter.Key()
		heap.Fix(&m.heap, 0)
		return
	}
	if err := item.iter.Error(); err != nil {
		m.err = err
		return
	}
	heap.Pop(&m.heap)
}

// Valid implements base.InternalIterator.
func (m *mergingIter) Valid() bool {
	return m.heap.Len() > 0 && m.err == nil
}

// Key implements base.InternalIterator.
func (m *mergingIter) Key() []byte {
	if !m.Valid() {
		return nil
	}
	return m.heap.items[0].key
}

// Value implements base.InternalIterator.
func (m *mergingIter) Value() []byte {
	if !m.Valid() {
		return nil
	}
	return m.heap.items[0].iter.Value()
}

// Error implements base.InternalIterator.
func (m *mergingIter) Error() error {
	if m.heap.Len() == 0 || m.err != nil {
		return m.err
	}
	return m.heap.items[0].iter.Error()
}

// Close implements base.InternalIterator.
func (m *mergingIter) Close() error {
	err := m.err
	for i := range m.iters {
		err = errors.CombineErrors(err, m.iters[i].Close())
	}
	m.iters = nil
	m.heap.items = nil
	return err
}

func (m *mergingIter) String() string {
	return "merging"
}

// DebugString returns the keys at the heads of the inputs, in heap order.
func (m *mergingIter) DebugString() string {
	var buf bytes.Buffer
	sep := ""
	for m.heap.Len() > 0 {
		item := heap.Pop(&m.heap).(mergingIterItem)
		if k, err := base.DecodeInternalKey(item.key); err == nil {
			fmt.Fprintf(&buf, "%s%s", sep, k)
		} else {
			fmt.Fprintf(&buf, "%s<corrupt:%s>", sep, base.FormatBytes(item.key))
		}
		sep = " "
	}
	if m.dir == 1 {
		m.initMinHeap()
	} else {
		m.initMaxHeap()
	}
	return buf.String()
}
