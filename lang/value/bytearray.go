package value

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash/crc32"

	"golang.org/x/crypto/sha3"
)

// ByteArray is a mutable, indexable array of bytes with security bits
// (spec.md §4.5): scalar get/set, range-fill/copy/cyclic-repeat slice
// assignment, each/map/where/count iteration and cryptographic digests.
type ByteArray struct {
	Data     []byte
	Security SecurityBits
}

func NewByteArray(data []byte) *ByteArray {
	return &ByteArray{Data: append([]byte(nil), data...), Security: AllSecurity}
}

func (b *ByteArray) Kind() Kind       { return KindByteArray }
func (b *ByteArray) ToBool() bool     { return len(b.Data) > 0 }
func (b *ByteArray) ToString() string { return string(b.Data) }
func (b *ByteArray) GetSourceLocation() SourceLocation { return SourceLocation{} }

func (b *ByteArray) Hash() uint64 {
	var h uint64 = 14695981039346656037
	for _, c := range b.Data {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

func (b *ByteArray) CompareEqual(other Object) bool {
	ob, ok := other.(*ByteArray)
	if !ok || len(ob.Data) != len(b.Data) {
		return false
	}
	for i, c := range b.Data {
		if ob.Data[i] != c {
			return false
		}
	}
	return true
}

func (b *ByteArray) Len() int { return len(b.Data) }

// Get returns the byte at i, honoring Readable.
func (b *ByteArray) Get(i int) (byte, error) {
	if b.Security&Readable == 0 {
		return 0, ErrNotReadable
	}
	if i < 0 || i >= len(b.Data) {
		return 0, ErrIndexOutOfRange
	}
	return b.Data[i], nil
}

// Set assigns the byte at i, honoring Writable.
func (b *ByteArray) Set(i int, v byte) error {
	if b.Security&Writable == 0 {
		return ErrNotWritable
	}
	if i < 0 || i >= len(b.Data) {
		return ErrIndexOutOfRange
	}
	b.Data[i] = v
	return nil
}

// Fill assigns v to every byte in [start,end).
func (b *ByteArray) Fill(start, end int, v byte) error {
	if b.Security&Writable == 0 {
		return ErrNotWritable
	}
	if start < 0 || end > len(b.Data) || start > end {
		return ErrIndexOutOfRange
	}
	for i := start; i < end; i++ {
		b.Data[i] = v
	}
	return nil
}

// CopyFrom copies src into the receiver starting at dstStart, honoring
// Writable; src and the receiver's backing array may overlap.
func (b *ByteArray) CopyFrom(dstStart int, src []byte) error {
	if b.Security&Writable == 0 {
		return ErrNotWritable
	}
	if dstStart < 0 || dstStart+len(src) > len(b.Data) {
		return ErrIndexOutOfRange
	}
	copy(b.Data[dstStart:dstStart+len(src)], src)
	return nil
}

// FillCyclic repeats pattern across [start,end), wrapping pattern as needed
// (spec.md §4.5's "cyclic-repeat" slice assignment).
func (b *ByteArray) FillCyclic(start, end int, pattern []byte) error {
	if b.Security&Writable == 0 {
		return ErrNotWritable
	}
	if len(pattern) == 0 || start < 0 || end > len(b.Data) || start > end {
		return ErrIndexOutOfRange
	}
	for i := start; i < end; i++ {
		b.Data[i] = pattern[(i-start)%len(pattern)]
	}
	return nil
}

// Each calls fn with every byte in order, stopping early if fn returns
// false -- the fixed-step specialization of the state-machine each/map/
// where/count native protocol (spec.md §4.5) for a type with no user
// closures to invoke between elements.
func (b *ByteArray) Each(fn func(i int, v byte) bool) {
	for i, v := range b.Data {
		if !fn(i, v) {
			return
		}
	}
}

// Map returns a new ByteArray with fn applied to every byte.
func (b *ByteArray) Map(fn func(v byte) byte) *ByteArray {
	out := make([]byte, len(b.Data))
	for i, v := range b.Data {
		out[i] = fn(v)
	}
	return NewByteArray(out)
}

// Where returns a new ByteArray containing the bytes for which pred holds.
func (b *ByteArray) Where(pred func(v byte) bool) *ByteArray {
	var out []byte
	for _, v := range b.Data {
		if pred(v) {
			out = append(out, v)
		}
	}
	return NewByteArray(out)
}

// Count returns the number of bytes for which pred holds.
func (b *ByteArray) Count(pred func(v byte) bool) int {
	n := 0
	for _, v := range b.Data {
		if pred(v) {
			n++
		}
	}
	return n
}

func (b *ByteArray) Hex() string { return hex.EncodeToString(b.Data) }

func (b *ByteArray) CRC32() uint32 { return crc32.ChecksumIEEE(b.Data) }
func (b *ByteArray) MD5() []byte   { h := md5.Sum(b.Data); return h[:] }
func (b *ByteArray) SHA1() []byte  { h := sha1.Sum(b.Data); return h[:] }

func (b *ByteArray) SHA256() []byte { h := sha256.Sum256(b.Data); return h[:] }
func (b *ByteArray) SHA384() []byte { h := sha512.Sum384(b.Data); return h[:] }
func (b *ByteArray) SHA512() []byte { h := sha512.Sum512(b.Data); return h[:] }

func (b *ByteArray) SHA3_256() []byte { h := sha3.Sum256(b.Data); return h[:] }
func (b *ByteArray) SHA3_512() []byte { h := sha3.Sum512(b.Data); return h[:] }

var _ Equaler = (*ByteArray)(nil)
