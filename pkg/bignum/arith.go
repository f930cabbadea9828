package bignum

import (
	"fmt"
	"math/big"
)

// GCD returns the greatest common divisor of a and b using the iterative
// Euclidean algorithm. GCD(a, 0) == a and GCD(0, 0) == 0.
func GCD(a, b Int) Int {
	x := a.Big()
	y := b.Big()
	for y.Sign() != 0 {
		r := new(big.Int).Rem(x, y)
		x, y = y, r
	}
	return Int{v: x}
}

// LCM returns the least common multiple |a*b| / gcd(a, b). LCM with a zero
// operand is 0.
func LCM(a, b Int) Int {
	if a.IsZero() || b.IsZero() {
		return Int{}
	}
	return a.Div(GCD(a, b)).Mul(b)
}

// Coprime reports whether gcd(a, b) == 1.
func Coprime(a, b Int) bool {
	return GCD(a, b).IsOne()
}

// InvMod returns x in [0, m) such that a*x ≡ 1 (mod m), computed with the
// extended Euclidean algorithm. It returns ErrNoInverse when gcd(a, m) != 1
// and ErrZeroModulus when m is zero.
func InvMod(a, m Int) (Int, error) {
	if m.IsZero() {
		return Int{}, ErrZeroModulus
	}
	mod := m.get()

	// Invariant: r_i ≡ t_i * a (mod m).
	r0 := new(big.Int).Set(mod)
	r1 := new(big.Int).Rem(a.get(), mod)
	t0 := new(big.Int)
	t1 := big.NewInt(1)

	q := new(big.Int)
	tmp := new(big.Int)
	for r1.Sign() != 0 {
		q.Quo(r0, r1)

		tmp.Mul(q, r1)
		tmp.Sub(r0, tmp)
		r0, r1 = r1, new(big.Int).Set(tmp)

		tmp.Mul(q, t1)
		tmp.Sub(t0, tmp)
		t0, t1 = t1, new(big.Int).Set(tmp)
	}

	if r0.Cmp(big.NewInt(1)) != 0 {
		return Int{}, fmt.Errorf("%w: gcd(%s, modulus) = %s", ErrNoInverse, a.String(), r0.String())
	}
	// big.Int.Mod is Euclidean, so the result is already in [0, m).
	return Int{v: t0.Mod(t0, mod)}, nil
}

// Jacobi returns the Jacobi symbol (a/n). n must be odd.
func Jacobi(a, n Int) (int, error) {
	if !n.IsOdd() {
		return 0, fmt.Errorf("bignum: jacobi symbol needs an odd modulus, got %s", n.String())
	}
	return big.Jacobi(a.get(), n.get()), nil
}
