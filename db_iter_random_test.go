// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"testing"

	"github.com/cinderkv/cinder/internal/base"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

type modelKV struct {
	key, value string
}

// visibleKVs returns the user keys visible at seqNum, computed directly from
// kvs, which must be sorted in internal key order.
func visibleKVs(kvs []base.InternalKV, seqNum base.SeqNum) []modelKV {
	var res []modelKV
	for i := 0; i < len(kvs); {
		var newest *base.InternalKV
		j := i
		for ; j < len(kvs) && bytes.Equal(kvs[j].K.UserKey, kvs[i].K.UserKey); j++ {
			if newest == nil && kvs[j].K.Visible(seqNum) {
				newest = &kvs[j]
			}
		}
		if newest != nil && newest.K.Kind() == base.InternalKeyKindSet {
			res = append(res, modelKV{string(newest.K.UserKey), string(newest.V)})
		}
		i = j
	}
	return res
}

func randomKVs(rng *rand.Rand, n int) []base.InternalKV {
	seqNums := rng.Perm(n)
	kvs := make([]base.InternalKV, n)
	for i := range kvs {
		userKey := []byte{byte('b' + rng.Intn(8))}
		seqNum := base.SeqNum(seqNums[i] + 1)
		if rng.Intn(3) == 0 {
			kvs[i] = base.MakeInternalKV(base.MakeInternalKey(userKey, seqNum, base.InternalKeyKindDelete), nil)
			continue
		}
		value := []byte(fmt.Sprintf("%s%d", userKey, seqNum))
		kvs[i] = base.MakeInternalKV(base.MakeInternalKey(userKey, seqNum, base.InternalKeyKindSet), value)
	}
	slices.SortFunc(kvs, func(a, b base.InternalKV) int {
		return base.InternalCompare(bytes.Compare, a.K, b.K)
	})
	return kvs
}

// splitKVs distributes kvs across n sorted fake iterators.
func splitKVs(rng *rand.Rand, kvs []base.InternalKV, n int) []InternalIterator {
	parts := make([][]base.InternalKV, n)
	for _, kv := range kvs {
		j := rng.Intn(n)
		parts[j] = append(parts[j], kv)
	}
	iters := make([]InternalIterator, n)
	for i := range parts {
		iters[i] = base.NewFakeIter(nil, parts[i])
	}
	return iters
}

// TestIteratorRandomized compares random walks over random version histories
// against a model computed from the full history.
func TestIteratorRandomized(t *testing.T) {
	for _, merged := range []bool{false, true} {
		t.Run(fmt.Sprintf("merged=%t", merged), func(t *testing.T) {
			for seed := uint64(1); seed <= 50; seed++ {
				rng := rand.New(rand.NewSource(seed))
				n := rng.Intn(40)
				kvs := randomKVs(rng, n)
				seqNum := base.SeqNum(rng.Intn(n + 2))
				model := visibleKVs(kvs, seqNum)

				var inner InternalIterator = base.NewFakeIter(nil, kvs)
				if merged {
					inner = NewMergingIterator(nil, splitKVs(rng, kvs, 1+rng.Intn(4))...)
				}
				iter := NewIterator(inner, seqNum, &IterOptions{
					ReadSampler:        ReadSamplerFunc(func([]byte) {}),
					ReadSamplingPeriod: 16,
					ReadSamplingSeed:   seed,
				})
				runRandomWalk(t, rng, iter, model, fmt.Sprintf("seed=%d seq=%d", seed, seqNum))
				require.NoError(t, iter.Close())
			}
		})
	}
}

func runRandomWalk(t *testing.T, rng *rand.Rand, iter *Iterator, model []modelKV, desc string) {
	var ops []string
	check := func(pos int) {
		if pos < 0 || pos >= len(model) {
			require.False(t, iter.Valid(), "%s: ops %v", desc, ops)
			return
		}
		require.True(t, iter.Valid(), "%s: ops %v", desc, ops)
		require.Equal(t, model[pos].key, string(iter.Key()), "%s: ops %v", desc, ops)
		require.Equal(t, model[pos].value, string(iter.Value()), "%s: ops %v", desc, ops)
		require.NoError(t, iter.Error())
	}

	// A full scan in each direction.
	var forward, reverse []modelKV
	for valid := iter.First(); valid; valid = iter.Next() {
		forward = append(forward, modelKV{string(iter.Key()), string(iter.Value())})
	}
	for valid := iter.Last(); valid; valid = iter.Prev() {
		reverse = append(reverse, modelKV{string(iter.Key()), string(iter.Value())})
	}
	require.Equal(t, len(model), len(forward), desc)
	require.Equal(t, len(model), len(reverse), desc)
	for i := range model {
		require.Equal(t, model[i], forward[i], desc)
		require.Equal(t, model[len(model)-1-i], reverse[i], desc)
	}

	pos := -1
	for i := 0; i < 200; i++ {
		switch choice := rng.Intn(10); {
		case choice == 0 || !iter.Valid():
			ops = append(ops, "first")
			iter.First()
			pos = 0
		case choice == 1:
			ops = append(ops, "last")
			iter.Last()
			pos = len(model) - 1
		case choice == 2:
			target := string([]byte{byte('a' + rng.Intn(10))})
			ops = append(ops, "seek-ge "+target)
			iter.SeekGE([]byte(target))
			pos = sort.Search(len(model), func(j int) bool { return model[j].key >= target })
		case choice < 6:
			ops = append(ops, "next")
			iter.Next()
			pos++
		default:
			ops = append(ops, "prev")
			iter.Prev()
			pos--
		}
		check(pos)
		if !iter.Valid() {
			pos = -1
		}
	}
}
