package bignum

import (
	"math/big"

	"github.com/cronokirby/saferith"
)

// Exponentiator computes base^exp mod m.
type Exponentiator interface {
	PowMod(base, exp, m Int) (Int, error)
}

// PowMod returns base^exp mod m using the Standard backend.
func PowMod(base, exp, m Int) (Int, error) {
	return Standard{}.PowMod(base, exp, m)
}

// Standard is left-to-right binary (square-and-multiply) exponentiation on
// math/big values. Its running time depends on the exponent bits.
type Standard struct{}

// PowMod implements Exponentiator.
func (Standard) PowMod(base, exp, m Int) (Int, error) {
	if m.IsZero() {
		return Int{}, ErrZeroModulus
	}
	if m.IsOne() {
		return Int{}, nil
	}
	mod := m.get()
	b := new(big.Int).Rem(base.get(), mod)
	e := exp.get()

	r := big.NewInt(1)
	t := new(big.Int)
	for i := e.BitLen() - 1; i >= 0; i-- {
		t.Mul(r, r)
		r.Rem(t, mod)
		if e.Bit(i) == 1 {
			t.Mul(r, b)
			r.Rem(t, mod)
		}
	}
	return Int{v: r}, nil
}

// ConstantTime exponentiates with saferith's constant-time Montgomery
// arithmetic. saferith needs an odd modulus; even moduli fall back to
// Standard.
type ConstantTime struct{}

// PowMod implements Exponentiator.
func (ConstantTime) PowMod(base, exp, m Int) (Int, error) {
	if m.IsZero() {
		return Int{}, ErrZeroModulus
	}
	if m.IsOne() {
		return Int{}, nil
	}
	if !m.IsOdd() {
		return Standard{}.PowMod(base, exp, m)
	}
	if exp.IsZero() {
		return New(1), nil
	}
	reduced := base.Mod(m)
	if reduced.IsZero() {
		return Int{}, nil
	}

	mod := saferith.ModulusFromBytes(m.Bytes())
	x := new(saferith.Nat).SetBytes(reduced.Bytes())
	y := new(saferith.Nat).SetBytes(exp.Bytes())
	z := new(saferith.Nat).Exp(x, y, mod)
	return FromBytes(z.Bytes()), nil
}
