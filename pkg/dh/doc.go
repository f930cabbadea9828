// Package dh implements a finite-field Diffie–Hellman exchange over a prime
// modulus p with generator g.
//
// NewParams checks that p is prime and that g is a primitive root modulo p:
// for every distinct prime factor f of p-1, g^((p-1)/f) mod p must differ
// from 1. The factors of p-1 are found by trial division up to
// TrialDivisionBound; the remaining cofactor must be 1 or prime, otherwise
// the check fails with ErrFactorization. Safe primes (p = 2q+1 with q prime)
// always pass the factorization step.
//
//	params, err := dh.NewParams(bignum.New(23), bignum.New(5))
//	res, err := dh.Exchange(params, bignum.New(6), bignum.New(15))
//	// res.A == 8, res.B == 19, res.Key == 2, text "<8>,<19>,<2>"
//
// Like pkg/rsa this is a teaching implementation without key validation
// beyond range checks.
package dh
