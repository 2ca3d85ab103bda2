// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/cinderkv/cinder"
	"github.com/cinderkv/cinder/internal/base"
	"github.com/cockroachdb/crlib/crstrings"
	"github.com/cockroachdb/errors"
)

// loadSegment reads a segment file. Each line holds one internal entry in the
// form <key>#<seq>,<kind>:<value>. Blank lines and lines starting with '#'
// are ignored. The entries are returned in internal key order.
func loadSegment(path string) ([]base.InternalKV, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading segment")
	}
	var kvs []base.InternalKV
	lineNum := 0
	for line := range crstrings.LinesSeq(string(data)) {
		lineNum++
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv, err := parseEntry(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, lineNum)
		}
		kvs = append(kvs, kv)
	}
	slices.SortFunc(kvs, func(a, b base.InternalKV) int {
		return base.InternalCompare(bytes.Compare, a.K, b.K)
	})
	for i := 1; i < len(kvs); i++ {
		if base.InternalCompare(bytes.Compare, kvs[i-1].K, kvs[i].K) == 0 {
			return nil, errors.Newf("%s: duplicate entry %s", path, kvs[i].K)
		}
	}
	return kvs, nil
}

func parseEntry(line string) (base.InternalKV, error) {
	keyStr, value, ok := strings.Cut(line, ":")
	if !ok {
		return base.InternalKV{}, errors.Newf("missing ':' in %q", line)
	}
	sep := strings.LastIndexByte(keyStr, '#')
	if sep < 0 {
		return base.InternalKV{}, errors.Newf("missing '#' in %q", keyStr)
	}
	seqStr, kindStr, ok := strings.Cut(keyStr[sep+1:], ",")
	if !ok {
		return base.InternalKV{}, errors.Newf("missing ',' in %q", keyStr)
	}
	seqNum, err := strconv.ParseUint(seqStr, 10, 64)
	if err != nil {
		return base.InternalKV{}, errors.Wrapf(err, "invalid sequence number %q", seqStr)
	}
	if base.SeqNum(seqNum) > base.SeqNumMax {
		return base.InternalKV{}, errors.Newf("sequence number %d out of range", seqNum)
	}
	var kind base.InternalKeyKind
	switch kindStr {
	case "SET":
		kind = base.InternalKeyKindSet
	case "DEL":
		kind = base.InternalKeyKindDelete
	default:
		return base.InternalKV{}, errors.Newf("unknown kind %q", kindStr)
	}
	k := base.MakeInternalKey([]byte(strings.TrimSpace(keyStr[:sep])), base.SeqNum(seqNum), kind)
	return base.MakeInternalKV(k, []byte(strings.TrimSpace(value))), nil
}

// openSegments loads the segment files and merges them into a single internal
// iterator.
func openSegments(paths []string) (cinder.InternalIterator, error) {
	iters := make([]cinder.InternalIterator, 0, len(paths))
	for _, path := range paths {
		kvs, err := loadSegment(path)
		if err != nil {
			for _, iter := range iters {
				_ = iter.Close()
			}
			return nil, err
		}
		iters = append(iters, base.NewFakeIter(nil, kvs))
	}
	return cinder.NewMergingIterator(nil, iters...), nil
}
