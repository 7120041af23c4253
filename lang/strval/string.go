// Package strval implements Smile's immutable UTF-8 string type and the
// string/Unicode operation set of spec.md §4.4: length, indexing, compare,
// concat, substring, search, padding, trimming, reversal, repetition,
// hashing, splitting, replacement, case mapping, Unicode normalization,
// wildcard matching, printf-subset formatting, escaping and encoding.
//
// Most case-mapping and normalization work is delegated to golang.org/x/text,
// which is the ecosystem-standard home for the multi-codepoint special
// casing (e.g. German ß -> SS) and canonical composition/decomposition that
// a single hand-rolled table can't express (see DESIGN.md).
package strval

import (
	"strings"
	"unicode/utf8"
)

// String is an immutable sequence of bytes that is conventionally, but not
// necessarily, valid UTF-8. Length -- never a NUL byte -- bounds every
// operation (spec.md §3, Invariant 6 and the String data model). A trailing
// NUL byte is appended to the backing array for FFI convenience but is not
// part of the logical length.
type String struct {
	b []byte
}

// Empty is the canonical shared empty string instance.
var Empty = String{b: []byte{0}}

// New returns a String wrapping a defensive copy of s.
func New(s string) String {
	if len(s) == 0 {
		return Empty
	}
	buf := make([]byte, len(s)+1) // +1 for the trailing NUL
	copy(buf, s)
	return String{b: buf}
}

// FromBytes is like New but takes ownership of b without copying; b must not
// be modified by the caller afterwards. A trailing NUL is appended if not
// already present.
func FromBytes(b []byte) String {
	if len(b) == 0 {
		return Empty
	}
	if b[len(b)-1] != 0 {
		nb := make([]byte, len(b)+1)
		copy(nb, b)
		b = nb
	}
	return String{b: b}
}

// Len returns the number of bytes in the string (excluding the trailing
// NUL).
func (s String) Len() int { return len(s.b) - 1 }

// Bytes returns the string's bytes, not including the trailing NUL. The
// caller must not modify the returned slice.
func (s String) Bytes() []byte { return s.b[:len(s.b)-1] }

// Go returns the string's bytes as a native Go string (a copy).
func (s String) Go() string { return string(s.Bytes()) }

func (s String) String() string { return s.Go() }

// ByteAt returns the byte at position i. It panics if i is out of range;
// callers must range-check using Len first, mirroring spec.md §8's
// "byte_at(s,i) equals bytes(s)[i]" invariant.
func (s String) ByteAt(i int) byte { return s.b[i] }

// GobEncode/GobDecode let String cross lang/loader's on-disk compiled-unit
// boundary (spec.md §6): b is unexported, so gob would otherwise silently
// encode it as an empty struct instead of erroring.
func (s String) GobEncode() ([]byte, error) { return append([]byte(nil), s.Bytes()...), nil }

func (s *String) GobDecode(data []byte) error {
	*s = FromBytes(append([]byte(nil), data...))
	return nil
}

// Concat returns the concatenation of s and t.
func Concat(s, t String) String {
	if s.Len() == 0 {
		return t
	}
	if t.Len() == 0 {
		return s
	}
	buf := make([]byte, s.Len()+t.Len()+1)
	copy(buf, s.Bytes())
	copy(buf[s.Len():], t.Bytes())
	return String{b: buf}
}

// Compare performs a byte-wise, case-sensitive three-way comparison.
func Compare(s, t String) int { return strings.Compare(s.Go(), t.Go()) }

// CompareFold performs a case-insensitive three-way comparison using simple
// (non-locale-aware) case folding.
func CompareFold(s, t String) int {
	return strings.Compare(strings.ToLower(s.Go()), strings.ToLower(t.Go()))
}

// Substring returns the [start, start+length) byte range of s. Both bounds
// are clamped to the string's extent.
func Substring(s String, start, length int) String {
	n := s.Len()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + length
	if end > n {
		end = n
	}
	if end < start {
		end = start
	}
	return New(string(s.Bytes()[start:end]))
}

// Slice returns the Python-style [start,end,step) byte range of s, with
// negative step supported for reversal-while-slicing.
func Slice(s String, start, end, step int) String {
	if step == 0 {
		step = 1
	}
	b := s.Bytes()
	var out []byte
	if step > 0 {
		for i := start; i < end && i < len(b); i += step {
			if i >= 0 {
				out = append(out, b[i])
			}
		}
	} else {
		for i := start; i > end && i >= 0; i += step {
			if i < len(b) {
				out = append(out, b[i])
			}
		}
	}
	return New(string(out))
}

// IndexOf returns the byte offset of the first occurrence of sub in s at or
// after from, or -1 if not found.
func IndexOf(s, sub String, from int) int {
	if from < 0 {
		from = 0
	}
	if from > s.Len() {
		return -1
	}
	i := strings.Index(string(s.Bytes()[from:]), sub.Go())
	if i < 0 {
		return -1
	}
	return i + from
}

// LastIndexOf returns the byte offset of the last occurrence of sub in s at
// or before the end, or -1 if not found.
func LastIndexOf(s, sub String) int {
	return strings.LastIndex(s.Go(), sub.Go())
}

// Contains reports whether s contains sub.
func Contains(s, sub String) bool { return strings.Contains(s.Go(), sub.Go()) }

// ContainsAny reports whether s contains any byte present in set.
func ContainsAny(s, set String) bool { return strings.ContainsAny(s.Go(), set.Go()) }

// StartsWith reports whether s begins with prefix, optionally ignoring case.
func StartsWith(s, prefix String, foldCase bool) bool {
	if foldCase {
		return len(s.Go()) >= len(prefix.Go()) && strings.EqualFold(s.Go()[:len(prefix.Go())], prefix.Go())
	}
	return strings.HasPrefix(s.Go(), prefix.Go())
}

// EndsWith reports whether s ends with suffix, optionally ignoring case.
func EndsWith(s, suffix String, foldCase bool) bool {
	if foldCase {
		ss, sf := s.Go(), suffix.Go()
		return len(ss) >= len(sf) && strings.EqualFold(ss[len(ss)-len(sf):], sf)
	}
	return strings.HasSuffix(s.Go(), suffix.Go())
}

// PadStart pads s on the left with copies of pad until it is at least width
// bytes long.
func PadStart(s String, width int, pad byte) String {
	if n := s.Len(); n >= width {
		return s
	} else {
		buf := make([]byte, width-n)
		for i := range buf {
			buf[i] = pad
		}
		return Concat(New(string(buf)), s)
	}
}

// PadEnd pads s on the right with copies of pad until it is at least width
// bytes long.
func PadEnd(s String, width int, pad byte) String {
	if n := s.Len(); n >= width {
		return s
	} else {
		buf := make([]byte, width-n)
		for i := range buf {
			buf[i] = pad
		}
		return Concat(s, New(string(buf)))
	}
}

// Trim removes leading and trailing Unicode whitespace.
func Trim(s String) String { return New(strings.TrimSpace(s.Go())) }

// Reverse reverses the raw bytes of s.
func Reverse(s String) String {
	b := append([]byte(nil), s.Bytes()...)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return New(string(b))
}

// ReverseUTF8 reverses s by Unicode code point rather than by raw byte, so
// multi-byte sequences stay intact.
func ReverseUTF8(s String) String {
	src := s.Go()
	runes := make([]rune, 0, len(src))
	for _, r := range src {
		runes = append(runes, r)
	}
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return New(string(runes))
}

// Repeat returns s repeated n times (n<=0 yields the empty string).
func Repeat(s String, n int) String {
	if n <= 0 {
		return Empty
	}
	return New(strings.Repeat(s.Go(), n))
}

// Hash32 computes the FNV-1a 32-bit hash of s's bytes.
func Hash32(s String) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, c := range s.Bytes() {
		h ^= uint32(c)
		h *= prime32
	}
	return h
}

// Hash64 computes the FNV-1a 64-bit hash of s's bytes.
func Hash64(s String) uint64 {
	const (
		offset64 = 14695981039346656037
		prime64  = 1099511628211
	)
	h := uint64(offset64)
	for _, c := range s.Bytes() {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Split splits s on every occurrence of sep. If removeEmpty is true, empty
// fields are dropped from the result.
func Split(s, sep String, removeEmpty bool) []String {
	parts := strings.Split(s.Go(), sep.Go())
	out := make([]String, 0, len(parts))
	for _, p := range parts {
		if removeEmpty && p == "" {
			continue
		}
		out = append(out, New(p))
	}
	return out
}

// Replace replaces up to n occurrences of old with new in s (n<0 means all).
func Replace(s, old, new String, n int) String {
	if n < 0 {
		n = -1
	}
	return New(strings.Replace(s.Go(), old.Go(), new.Go(), n))
}

// Join implements an English list join: "a", "a and b", "a, b, and c".
func Join(items []String, conjunction string) String {
	switch len(items) {
	case 0:
		return Empty
	case 1:
		return items[0]
	case 2:
		return New(items[0].Go() + " " + conjunction + " " + items[1].Go())
	}
	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString(", ")
		}
		if i == len(items)-1 {
			sb.WriteString(conjunction)
			sb.WriteString(" ")
		}
		sb.WriteString(it.Go())
	}
	return New(sb.String())
}

// ValidRune reports whether r is the product of a valid (non-overlong,
// non-surrogate, non-truncated) UTF-8 decode, per spec.md Invariant 6.
func ValidRune(r rune, size int) bool {
	return !(r == utf8.RuneError && size <= 1)
}
