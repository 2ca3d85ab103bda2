// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"fmt"

	"github.com/cinderkv/cinder"
	"github.com/cinderkv/cinder/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// newIterator opens the segment files and returns an Iterator over them at
// the snapshot selected by the flags and config.
func newIterator(cmd *cobra.Command, f *flags, args []string) (*cinder.Iterator, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	seqNum, err := cfg.snapshot(cmd, f)
	if err != nil {
		return nil, err
	}
	inner, err := openSegments(args)
	if err != nil {
		return nil, err
	}
	opts := cfg.iterOptions(cinder.ReadSamplerFunc(func([]byte) {}))
	opts.Logger = base.NoopLogger{}
	if err := opts.Validate(); err != nil {
		_ = inner.Close()
		return nil, err
	}
	return cinder.NewIterator(inner, seqNum, opts), nil
}

func runScan(cmd *cobra.Command, f *flags, args []string) error {
	iter, err := newIterator(cmd, f, args)
	if err != nil {
		return err
	}

	var valid bool
	switch {
	case f.reverse && f.seek != "":
		// Position at the last key <= seek.
		valid = iter.SeekGE([]byte(f.seek))
		if !valid {
			valid = iter.Last()
		} else if string(iter.Key()) != f.seek {
			valid = iter.Prev()
		}
	case f.reverse:
		valid = iter.Last()
	case f.seek != "":
		valid = iter.SeekGE([]byte(f.seek))
	default:
		valid = iter.First()
	}
	step := iter.Next
	if f.reverse {
		step = iter.Prev
	}

	out := cmd.OutOrStdout()
	tbl := tablewriter.NewWriter(out)
	tbl.SetHeader([]string{"Key", "Value"})
	rows := 0
	for ; valid && (f.limit <= 0 || rows < f.limit); valid = step() {
		tbl.Append([]string{
			fmt.Sprint(base.FormatBytes(iter.Key())),
			fmt.Sprint(base.FormatBytes(iter.Value())),
		})
		rows++
	}
	tbl.Render()

	if f.verbose {
		stats := iter.Stats()
		fmt.Fprintf(out, "%d rows\n%s\n", rows, stats.String())
	}
	return errors.Wrap(iter.Close(), "scan")
}

func runDump(cmd *cobra.Command, f *flags, args []string) error {
	iter, err := openSegments(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if f.reverse {
		iter.Last()
	} else {
		iter.First()
	}
	for rows := 0; iter.Valid() && (f.limit <= 0 || rows < f.limit); rows++ {
		k, err := base.DecodeInternalKey(iter.Key())
		if err != nil {
			fmt.Fprintf(out, "<corrupt:%s>\n", base.FormatBytes(iter.Key()))
		} else {
			fmt.Fprintf(out, "%s\n", base.MakeInternalKV(k, iter.Value()))
		}
		if f.reverse {
			iter.Prev()
		} else {
			iter.Next()
		}
	}
	return errors.Wrap(iter.Close(), "dump")
}
