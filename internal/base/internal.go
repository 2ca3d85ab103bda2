// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base // import "github.com/cinderkv/cinder/internal/base"

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/redact"
)

// SeqNum is a sequence number defining precedence among identical keys. A key
// with a higher sequence number takes precedence over a key with an equal user
// key of a lower sequence number. Sequence numbers are stored within the
// internal key "trailer" as a 7-byte (uint56) uint, and the maximum sequence
// number is 2^56-1. As keys are written they're assigned increasing sequence
// numbers. Readers use sequence numbers to read a consistent state, ignoring
// keys with sequence numbers larger than the readers' snapshot.
//
// No two internal keys with equal user keys may have equal sequence numbers.
type SeqNum uint64

const (
	// SeqNumZero is the zero sequence number.
	SeqNumZero SeqNum = 0
	// SeqNumMax is the largest valid sequence number.
	SeqNumMax SeqNum = 1<<56 - 1
)

func (s SeqNum) String() string {
	if s == SeqNumMax {
		return "inf"
	}
	return strconv.FormatUint(uint64(s), 10)
}

// SafeFormat implements redact.SafeFormatter.
func (s SeqNum) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(s.String()))
}

// InternalKeyKind enumerates the kind of key: a deletion tombstone or a set
// value.
type InternalKeyKind uint8

// These constants are part of the encoded key format, and should not be
// changed.
const (
	InternalKeyKindDelete InternalKeyKind = 0
	InternalKeyKindSet    InternalKeyKind = 1

	// InternalKeyKindMax is the largest valid kind.
	//
	// Internal keys with equal user keys and sequence numbers sort decreasing
	// by kind, so a search key built with InternalKeyKindMax sorts 'less than
	// or equal to' any other internal key with the same user key and sequence
	// number.
	InternalKeyKindMax InternalKeyKind = InternalKeyKindSet

	// InternalKeyKindInvalid is a marker for an invalid key. It is never
	// produced by DecodeInternalKey.
	InternalKeyKindInvalid InternalKeyKind = 191
)

var internalKeyKindNames = []string{
	InternalKeyKindDelete: "DEL",
	InternalKeyKindSet:    "SET",
}

func (k InternalKeyKind) String() string {
	if int(k) < len(internalKeyKindNames) {
		return internalKeyKindNames[k]
	}
	if k == InternalKeyKindInvalid {
		return "INVALID"
	}
	return fmt.Sprintf("UNKNOWN:%d", k)
}

// SafeFormat implements redact.SafeFormatter.
func (k InternalKeyKind) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Print(redact.SafeString(k.String()))
}

// InternalKeyTrailer encodes a SeqNum and an InternalKeyKind.
type InternalKeyTrailer uint64

// MakeTrailer constructs an internal key trailer from the specified sequence
// number and kind.
func MakeTrailer(seqNum SeqNum, kind InternalKeyKind) InternalKeyTrailer {
	return (InternalKeyTrailer(seqNum) << 8) | InternalKeyTrailer(kind)
}

// String implements the fmt.Stringer interface.
func (t InternalKeyTrailer) String() string {
	return fmt.Sprintf("%s,%s", SeqNum(t>>8), InternalKeyKind(t&0xff))
}

// SeqNum returns the sequence number component of the trailer.
func (t InternalKeyTrailer) SeqNum() SeqNum {
	return SeqNum(t >> 8)
}

// Kind returns the key kind component of the trailer.
func (t InternalKeyTrailer) Kind() InternalKeyKind {
	return InternalKeyKind(t & 0xff)
}

// InternalKey is the decoded form of the keys stored in memtables and sorted
// segments.
//
// Its encoded form consists of the user key followed by 8 bytes of metadata:
//   - 1 byte for the kind of internal key: delete or set,
//   - 7 bytes for a uint56 sequence number, in little-endian format.
type InternalKey struct {
	UserKey []byte
	Trailer InternalKeyTrailer
}

// InternalTrailerLen is the number of bytes used to encode InternalKey.Trailer.
const InternalTrailerLen = 8

// MakeInternalKey constructs an internal key from a specified user key,
// sequence number and kind.
func MakeInternalKey(userKey []byte, seqNum SeqNum, kind InternalKeyKind) InternalKey {
	return InternalKey{
		UserKey: userKey,
		Trailer: MakeTrailer(seqNum, kind),
	}
}

// MakeSearchKey constructs an internal key that is appropriate for seeking to
// the newest version of userKey visible at seqNum. Seeking an internal
// iterator to the encoded search key positions it at the first entry whose
// user key is >= userKey and, for an equal user key, whose sequence number is
// <= seqNum.
func MakeSearchKey(userKey []byte, seqNum SeqNum) InternalKey {
	return MakeInternalKey(userKey, seqNum, InternalKeyKindMax)
}

// DecodeInternalKey decodes an encoded internal key. It returns an error
// marked with ErrCorruption if the key is shorter than the trailer or carries
// an unknown kind. See InternalKey.Encode().
func DecodeInternalKey(encodedKey []byte) (InternalKey, error) {
	n := len(encodedKey) - InternalTrailerLen
	if n < 0 {
		return InternalKey{Trailer: InternalKeyTrailer(InternalKeyKindInvalid)},
			CorruptionErrorf("cinder: internal key too short (%d bytes)", redact.Safe(len(encodedKey)))
	}
	trailer := InternalKeyTrailer(binary.LittleEndian.Uint64(encodedKey[n:]))
	if trailer.Kind() > InternalKeyKindMax {
		return InternalKey{Trailer: InternalKeyTrailer(InternalKeyKindInvalid)},
			CorruptionErrorf("cinder: internal key has invalid kind %d", redact.Safe(uint8(trailer.Kind())))
	}
	return InternalKey{
		UserKey: encodedKey[:n:n],
		Trailer: trailer,
	}, nil
}

// ExtractUserKey returns the user key portion of an encoded internal key. It
// returns nil if the key is too short to hold a trailer.
func ExtractUserKey(encodedKey []byte) []byte {
	n := len(encodedKey) - InternalTrailerLen
	if n < 0 {
		return nil
	}
	return encodedKey[:n:n]
}

// InternalCompare compares two internal keys using the specified comparison
// function. For equal user keys, internal keys compare in descending sequence
// number order. For equal user keys and sequence numbers, internal keys
// compare in descending kind order.
func InternalCompare(userCmp Compare, a, b InternalKey) int {
	if x := userCmp(a.UserKey, b.UserKey); x != 0 {
		return x
	}
	// Reverse order for trailer comparison.
	return cmp.Compare(b.Trailer, a.Trailer)
}

// Encode encodes the receiver into the buffer. The buffer must be large enough
// to hold the encoded data. See InternalKey.Size().
func (k InternalKey) Encode(buf []byte) {
	i := copy(buf, k.UserKey)
	binary.LittleEndian.PutUint64(buf[i:], uint64(k.Trailer))
}

// AppendEncoded appends the encoded form of the key to dst and returns the
// extended buffer.
func (k InternalKey) AppendEncoded(dst []byte) []byte {
	dst = append(dst, k.UserKey...)
	return binary.LittleEndian.AppendUint64(dst, uint64(k.Trailer))
}

// Size returns the encoded size of the key.
func (k InternalKey) Size() int {
	return len(k.UserKey) + InternalTrailerLen
}

// SeqNum returns the sequence number component of the key.
func (k InternalKey) SeqNum() SeqNum {
	return SeqNum(k.Trailer >> 8)
}

// Kind returns the kind component of the key.
func (k InternalKey) Kind() InternalKeyKind {
	return k.Trailer.Kind()
}

// Visible returns true if the key is visible at the specified snapshot
// sequence number. A snapshot is an inclusive ceiling.
func (k InternalKey) Visible(snapshot SeqNum) bool {
	return k.SeqNum() <= snapshot
}

// Clone clones the storage for the UserKey component of the key.
func (k InternalKey) Clone() InternalKey {
	if len(k.UserKey) == 0 {
		return k
	}
	return InternalKey{
		UserKey: append([]byte(nil), k.UserKey...),
		Trailer: k.Trailer,
	}
}

// String returns a string representation of the key.
func (k InternalKey) String() string {
	return fmt.Sprintf("%s#%s,%s", FormatBytes(k.UserKey), k.SeqNum(), k.Kind())
}

// SafeFormat implements redact.SafeFormatter. The user key is redactable.
func (k InternalKey) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%s#%s,%s", k.UserKey, k.SeqNum(), k.Kind())
}

// Pretty returns a formatter for the key.
func (k InternalKey) Pretty(f FormatKey) fmt.Formatter {
	return prettyInternalKey{k, f}
}

type prettyInternalKey struct {
	InternalKey
	formatKey FormatKey
}

func (k prettyInternalKey) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "%s#%s,%s", k.formatKey(k.UserKey), k.SeqNum(), k.Kind())
}

var kindsMap = map[string]InternalKeyKind{
	"DEL": InternalKeyKindDelete,
	"SET": InternalKeyKindSet,
}

// ParseSeqNum parses the string representation of a sequence number. "inf" is
// supported as the maximum sequence number.
func ParseSeqNum(s string) SeqNum {
	if s == "inf" {
		return SeqNumMax
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("error parsing %q as seqnum: %s", s, err))
	}
	return SeqNum(n)
}

// ParseKind parses the string representation of an internal key kind.
func ParseKind(s string) InternalKeyKind {
	kind, ok := kindsMap[s]
	if !ok {
		panic(fmt.Sprintf("unknown kind: %q", s))
	}
	return kind
}

// ParseInternalKey parses the string representation of an internal key. The
// format is `<user-key>#<seq-num>,<kind>`.
func ParseInternalKey(s string) InternalKey {
	sep1 := strings.Index(s, "#")
	sep2 := strings.Index(s, ",")
	if sep1 == -1 || sep2 == -1 || sep2 < sep1 {
		panic(fmt.Sprintf("invalid internal key %q", s))
	}
	userKey := []byte(s[:sep1])
	seqNum := ParseSeqNum(s[sep1+1 : sep2])
	return MakeInternalKey(userKey, seqNum, ParseKind(s[sep2+1:]))
}

// InternalKV represents a single internal key-value pair.
type InternalKV struct {
	K InternalKey
	V []byte
}

// MakeInternalKV constructs an InternalKV with the provided internal key and
// value.
func MakeInternalKV(k InternalKey, v []byte) InternalKV {
	return InternalKV{K: k, V: v}
}

// ParseInternalKV parses the string representation of an internal KV. The
// format is "<user-key>#<seq-num>,<kind>:value".
func ParseInternalKV(s string) InternalKV {
	sepIdx := strings.Index(s, ":")
	if sepIdx == -1 {
		panic(fmt.Sprintf("invalid KV %q", s))
	}
	keyStr := strings.TrimSpace(s[:sepIdx])
	valStr := strings.TrimSpace(s[sepIdx+1:])
	return MakeInternalKV(ParseInternalKey(keyStr), []byte(valStr))
}

func (kv InternalKV) String() string {
	return fmt.Sprintf("%s:%s", kv.K, FormatBytes(kv.V))
}
