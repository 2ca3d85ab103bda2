// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"encoding/binary"
	"testing"

	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func TestInternalKeyRoundTrip(t *testing.T) {
	for _, s := range []string{"a#0,DEL", "a#1,SET", "foo#72057594037927935,SET", "#5,DEL"} {
		k := ParseInternalKey(s)
		buf := make([]byte, k.Size())
		k.Encode(buf)
		require.Equal(t, buf, k.AppendEncoded(nil))

		decoded, err := DecodeInternalKey(buf)
		require.NoError(t, err)
		require.Equal(t, string(k.UserKey), string(decoded.UserKey))
		require.Equal(t, k.Trailer, decoded.Trailer)
		require.Equal(t, string(k.UserKey), string(ExtractUserKey(buf)))
	}
}

func TestDecodeInternalKeyCorruption(t *testing.T) {
	_, err := DecodeInternalKey([]byte("short"))
	require.Error(t, err)
	require.True(t, IsCorruptionError(err))
	require.Nil(t, ExtractUserKey([]byte("short")))

	bad := binary.LittleEndian.AppendUint64([]byte("k"), uint64(MakeTrailer(3, 7)))
	_, err = DecodeInternalKey(bad)
	require.Error(t, err)
	require.True(t, IsCorruptionError(err))
	require.Contains(t, err.Error(), "invalid kind 7")

	// The user key portion remains extractable even when the kind is not.
	require.Equal(t, []byte("k"), ExtractUserKey(bad))
}

func TestInternalKeyString(t *testing.T) {
	k := MakeInternalKey([]byte("a\xffb"), 12, InternalKeyKindDelete)
	require.Equal(t, `a\xffb#12,DEL`, k.String())
	require.Equal(t, "inf", SeqNumMax.String())
	require.Equal(t, "UNKNOWN:9", InternalKeyKind(9).String())
	rs := redact.Sprint(MakeInternalKey([]byte("a"), 3, InternalKeyKindSet))
	require.Equal(t, "a#3,SET", rs.StripMarkers())
	require.Equal(t, "‹×›#3,SET", string(rs.Redact()))
}

func TestParseInternalKV(t *testing.T) {
	kv := ParseInternalKV("b#7,SET: hello ")
	require.Equal(t, "b", string(kv.K.UserKey))
	require.Equal(t, SeqNum(7), kv.K.SeqNum())
	require.Equal(t, InternalKeyKindSet, kv.K.Kind())
	require.Equal(t, "hello", string(kv.V))
	require.Equal(t, "b#7,SET:hello", kv.String())

	require.Panics(t, func() { ParseInternalKey("nohash") })
	require.Panics(t, func() { ParseInternalKey("a#1,MERGE") })
	require.Equal(t, SeqNumMax, ParseInternalKey("a#inf,SET").SeqNum())
}

func TestCorruptionErrorf(t *testing.T) {
	err := CorruptionErrorf("bad %s", "thing")
	require.True(t, IsCorruptionError(err))
	require.Equal(t, "bad thing", err.Error())

	marked := MarkCorruptionError(err)
	require.Equal(t, err, marked)
}
