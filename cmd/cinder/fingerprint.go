// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// runFingerprint hashes the visible key/value pairs in key order. Two inputs
// have equal fingerprints at their snapshots if they present the same view,
// regardless of how many shadowed versions or deletions they hold.
func runFingerprint(cmd *cobra.Command, f *flags, args []string) error {
	iter, err := newIterator(cmd, f, args)
	if err != nil {
		return err
	}
	h := xxhash.New()
	var buf [binary.MaxVarintLen64]byte
	write := func(b []byte) {
		n := binary.PutUvarint(buf[:], uint64(len(b)))
		_, _ = h.Write(buf[:n])
		_, _ = h.Write(b)
	}
	keys := 0
	for valid := iter.First(); valid; valid = iter.Next() {
		write(iter.Key())
		write(iter.Value())
		keys++
	}
	if err := iter.Close(); err != nil {
		return errors.Wrap(err, "fingerprint")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%016x %d keys\n", h.Sum64(), keys)
	if f.verbose {
		stats := iter.Stats()
		fmt.Fprintf(out, "%s\n", stats.String())
	}
	return nil
}
