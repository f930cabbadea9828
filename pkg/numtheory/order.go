package numtheory

import (
	"fmt"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// Carmichael returns λ(p*q) = lcm(p-1, q-1) = |(p-1)(q-1)| / gcd(p-1, q-1)
// for primes p and q.
func Carmichael(p, q bignum.Int) (bignum.Int, error) {
	p1, q1, err := decrement(p, q)
	if err != nil {
		return bignum.Int{}, err
	}
	return bignum.LCM(p1, q1), nil
}

// Totient returns Euler's φ(p*q) = (p-1)(q-1) for distinct primes p and q.
func Totient(p, q bignum.Int) (bignum.Int, error) {
	p1, q1, err := decrement(p, q)
	if err != nil {
		return bignum.Int{}, err
	}
	return p1.Mul(q1), nil
}

func decrement(p, q bignum.Int) (bignum.Int, bignum.Int, error) {
	two := bignum.New(2)
	if p.Cmp(two) < 0 || q.Cmp(two) < 0 {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: factors must be at least 2 (got %s, %s)", ErrInvalidPrime, p, q)
	}
	one := bignum.New(1)
	p1, _ := p.Sub(one)
	q1, _ := q.Sub(one)
	return p1, q1, nil
}

// ValidatePair checks that p and q are distinct probable primes.
func ValidatePair(p, q bignum.Int, rounds int) error {
	if p.Equal(q) {
		return ErrDegenerateModulus
	}
	if !IsProbablyPrime(p, rounds) {
		return fmt.Errorf("%w: p (%d bits)", ErrInvalidPrime, p.BitLen())
	}
	if !IsProbablyPrime(q, rounds) {
		return fmt.Errorf("%w: q (%d bits)", ErrInvalidPrime, q.BitLen())
	}
	return nil
}
