// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cinderkv/cinder/internal/base"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func runCmd(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// requireOrder checks that each of the strings appears in out, in order.
func requireOrder(t *testing.T, out string, strs ...string) {
	t.Helper()
	last := -1
	for _, s := range strs {
		i := strings.Index(out, s)
		require.Greater(t, i, last, "%q out of order in:\n%s", s, out)
		last = i
	}
}

func testSegments(t *testing.T) (dir, seg1, seg2 string) {
	dir = t.TempDir()
	seg1 = writeFile(t, dir, "seg1", `
# memtable
a#2,SET:A2
b#1,SET:B1
`)
	seg2 = writeFile(t, dir, "seg2", `
c#2,SET:C2
a#1,SET:A1
c#3,DEL:
`)
	return dir, seg1, seg2
}

func TestScan(t *testing.T) {
	dir, seg1, seg2 := testSegments(t)

	out, err := runCmd("scan", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "KEY", "A2", "B1")
	require.NotContains(t, out, "A1")
	require.NotContains(t, out, "C2")

	out, err = runCmd("scan", "--seq", "2", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "A2", "B1", "C2")

	out, err = runCmd("scan", "--seq", "1", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "A1", "B1")
	require.NotContains(t, out, "A2")

	out, err = runCmd("scan", "--seq", "2", "--reverse", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "C2", "B1", "A2")

	out, err = runCmd("scan", "--seq", "2", "--seek", "b", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "B1", "C2")
	require.NotContains(t, out, "A2")

	out, err = runCmd("scan", "--seq", "2", "--seek", "bb", "--reverse", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "B1", "A2")
	require.NotContains(t, out, "C2")

	out, err = runCmd("scan", "--seq", "2", "--limit", "1", seg1, seg2)
	require.NoError(t, err)
	require.Contains(t, out, "A2")
	require.NotContains(t, out, "B1")

	out, err = runCmd("scan", "-v", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "2 rows", "(interface (dir, seek, step): (fwd, 1, 2)")

	cfg := writeFile(t, dir, "cfg.yaml", "seq: 2\nread_sampling_period: 1\nseed: 3\n")
	out, err = runCmd("scan", "--config", cfg, "-v", seg1, seg2)
	require.NoError(t, err)
	requireOrder(t, out, "C2", "3 rows")
	require.NotContains(t, out, "(read samples: 0)")

	// The flag takes precedence over the config.
	out, err = runCmd("scan", "--config", cfg, "--seq", "10", seg1, seg2)
	require.NoError(t, err)
	require.NotContains(t, out, "C2")
}

func TestScanErrors(t *testing.T) {
	dir, seg1, _ := testSegments(t)

	_, err := runCmd("scan", "--seq", "x", seg1)
	require.ErrorContains(t, err, `invalid sequence number "x"`)

	_, err = runCmd("scan", filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "reading segment")

	bad := writeFile(t, dir, "bad", "a#1,SET:A\nb#1:B\n")
	_, err = runCmd("scan", bad)
	require.ErrorContains(t, err, "bad:2: missing ',' in \"b#1\"")

	dup := writeFile(t, dir, "dup", "a#1,SET:A\na#1,SET:B\n")
	_, err = runCmd("scan", dup)
	require.ErrorContains(t, err, "duplicate entry a#1,SET")

	cfg := writeFile(t, dir, "cfg.yaml", "snapshot: 2\n")
	_, err = runCmd("scan", "--config", cfg, seg1)
	require.ErrorContains(t, err, "parsing config")
}

func TestDump(t *testing.T) {
	_, seg1, seg2 := testSegments(t)

	out, err := runCmd("dump", seg1, seg2)
	require.NoError(t, err)
	require.Equal(t, "a#2,SET:A2\na#1,SET:A1\nb#1,SET:B1\nc#3,DEL:\nc#2,SET:C2\n", out)

	out, err = runCmd("dump", "--reverse", "--limit", "2", seg1, seg2)
	require.NoError(t, err)
	require.Equal(t, "c#2,SET:C2\nc#3,DEL:\n", out)
}

func TestFingerprint(t *testing.T) {
	dir, seg1, seg2 := testSegments(t)
	compacted := writeFile(t, dir, "compacted", "a#5,SET:A2\nb#4,SET:B1\n")

	out1, err := runCmd("fingerprint", seg1, seg2)
	require.NoError(t, err)
	require.Contains(t, out1, " 2 keys\n")
	out2, err := runCmd("fingerprint", compacted)
	require.NoError(t, err)
	require.Equal(t, out1, out2)

	out3, err := runCmd("fingerprint", "--seq", "2", seg1, seg2)
	require.NoError(t, err)
	require.Contains(t, out3, " 3 keys\n")
	require.NotEqual(t, out1, out3)
}

func TestParseEntry(t *testing.T) {
	kv, err := parseEntry("a#b#3,DEL:")
	require.NoError(t, err)
	require.Equal(t, "a#b", string(kv.K.UserKey))
	require.Equal(t, base.SeqNum(3), kv.K.SeqNum())
	require.Equal(t, base.InternalKeyKindDelete, kv.K.Kind())

	kv, err = parseEntry("k#7,SET: value:with:colons ")
	require.NoError(t, err)
	require.Equal(t, "value:with:colons", string(kv.V))

	for _, s := range []string{"a", "a:b", "a#1:b", "a#x,SET:b", "a#1,MERGE:b", "a#72057594037927936,SET:b"} {
		_, err := parseEntry(s)
		require.Error(t, err, s)
	}
}
