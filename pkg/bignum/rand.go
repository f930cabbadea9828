package bignum

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomBelow returns a uniform value in [0, bound) read from r. A nil reader
// means crypto/rand.Reader.
func RandomBelow(r io.Reader, bound Int) (Int, error) {
	if bound.IsZero() {
		return Int{}, ErrZeroModulus
	}
	if r == nil {
		r = rand.Reader
	}
	v, err := rand.Int(r, bound.get())
	if err != nil {
		return Int{}, fmt.Errorf("bignum: read random: %w", err)
	}
	return Int{v: v}, nil
}

// RandomRange returns a uniform value in [lo, hi). It requires lo < hi.
func RandomRange(r io.Reader, lo, hi Int) (Int, error) {
	span, err := hi.Sub(lo)
	if err != nil || span.IsZero() {
		return Int{}, fmt.Errorf("bignum: empty range [%s, %s)", lo.String(), hi.String())
	}
	v, err := RandomBelow(r, span)
	if err != nil {
		return Int{}, err
	}
	return v.Add(lo), nil
}

// RandomBits returns a value with at most bits bits read from r (nil means
// crypto/rand.Reader). The top bit is not forced.
func RandomBits(r io.Reader, bits int) (Int, error) {
	if bits <= 0 {
		return Int{}, fmt.Errorf("bignum: invalid bit length %d", bits)
	}
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, (bits+7)/8)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Int{}, fmt.Errorf("bignum: read random: %w", err)
	}
	// Clear the excess high bits of the first byte.
	if excess := len(buf)*8 - bits; excess > 0 {
		buf[0] &= byte(0xff) >> excess
	}
	return FromBytes(buf), nil
}

// SetBit returns x with bit i set to b (0 or 1).
func (x Int) SetBit(i int, b uint) Int {
	return Int{v: x.Big().SetBit(x.get(), i, b)}
}
