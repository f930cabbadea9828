// Package bignum provides the arbitrary-precision integer type used by the
// RSA core.
//
// Values are immutable, non-negative integers backed by math/big. Every
// operation returns a fresh value, so an Int can be shared between
// goroutines without synchronization.
//
// # Arithmetic
//
// Besides the usual ring operations the package exposes the number theory
// primitives the key generator and cipher engine are built on:
//
//	g := bignum.GCD(a, b)            // iterative Euclid, GCD(a, 0) == a
//	l := bignum.LCM(a, b)
//	d, err := bignum.InvMod(e, lambda) // ErrNoInverse when gcd(e, lambda) != 1
//	c, err := bignum.PowMod(m, e, n)   // square-and-multiply
//
// # Exponentiation backends
//
// PowMod uses the Standard backend. Callers that prefer a constant-time
// exponentiation for odd moduli can use ConstantTime, which is backed by
// github.com/cronokirby/saferith:
//
//	var exp bignum.Exponentiator = bignum.ConstantTime{}
//	c, err := exp.PowMod(m, e, n)
//
// # Serialization
//
// Int values format and parse in any base from 2 to 62 (Text, Parse) and
// convert to and from big-endian byte strings (Bytes, FillBytes, FromBytes).
// FillBytes produces the fixed-width encoding used by the ciphertext format.
package bignum
