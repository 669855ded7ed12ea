// Package hash provides a fixed-size content hash. The symbol package
// records one for every interned name.
package hash

import (
	"encoding/binary"

	"github.com/spaolacci/murmur3"
)

// Hash is a 256-bit content hash.
type Hash [32]byte

// String computes the hash of a string.
func String(s string) Hash { return Bytes([]byte(s)) }

// Bytes computes the hash of a byte slice.
func Bytes(b []byte) Hash {
	var h Hash
	h1, h2 := murmur3.Sum128WithSeed(b, 0)
	h3, h4 := murmur3.Sum128WithSeed(b, 1)
	binary.BigEndian.PutUint64(h[0:8], h1)
	binary.BigEndian.PutUint64(h[8:16], h2)
	binary.BigEndian.PutUint64(h[16:24], h3)
	binary.BigEndian.PutUint64(h[24:32], h4)
	return h
}

// Int hashes a 64-bit integer.
func Int(v int64) Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	return Bytes(buf[:])
}

// Add combines two hashes order-independently (a.Add(b) == b.Add(a)). It is
// used to combine hashes of elements whose relative order is not significant,
// e.g. the set of attributes comprising an Unknown value.
func (h Hash) Add(other Hash) Hash {
	var sum Hash
	carry := uint16(0)
	for i := 31; i >= 0; i-- {
		s := uint16(h[i]) + uint16(other[i]) + carry
		sum[i] = byte(s)
		carry = s >> 8
	}
	return sum
}

// Merge combines two hashes order-sensitively (in general h.Merge(o) !=
// o.Merge(h)). It is used to fold a sequence of sub-hashes, such as the
// operands of a Call node, into one hash for the whole expression.
func (h Hash) Merge(other Hash) Hash {
	buf := make([]byte, 0, 64)
	buf = append(buf, h[:]...)
	buf = append(buf, other[:]...)
	return Bytes(buf)
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == Hash{} }
