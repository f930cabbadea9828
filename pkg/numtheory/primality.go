package numtheory

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// DefaultRounds is the Miller–Rabin round count used when none is given.
const DefaultRounds = 40

const (
	// oddPrimorial47 is the product of the odd primes up to 47; it fits in a
	// uint64 and lets trial division work on a single machine word.
	oddPrimorial47 uint64 = 307444891294245705
	trialLimit     uint64 = 47
	// Every composite below 53*53 has a prime factor <= 47.
	trialExactBelow uint64 = 53 * 53
)

// Tester runs probabilistic primality tests.
type Tester struct {
	// Rand supplies random witnesses. Nil means crypto/rand.Reader.
	Rand io.Reader

	// Rounds is the number of random Miller–Rabin witnesses for values of
	// 64 bits or more. Zero or negative means DefaultRounds.
	Rounds int
}

// IsProbablyPrime reports whether n is prime with error probability at most
// 4^-rounds. Values below 2^64 get an exact answer. A failure to read
// randomness is reported as "not prime".
func IsProbablyPrime(n bignum.Int, rounds int) bool {
	ok, err := Tester{Rounds: rounds}.Test(n)
	return ok && err == nil
}

// Test runs trial division followed by Miller–Rabin.
func (t Tester) Test(n bignum.Int) (bool, error) {
	if small, ok := n.Uint64(); ok {
		if small < 2 {
			return false, nil
		}
		if small == 2 {
			return true, nil
		}
	}
	if !n.IsOdd() {
		return false, nil
	}

	if composite, decided := trialDivide(n); decided {
		return !composite, nil
	}

	if small, ok := n.Uint64(); ok {
		bases := []uint64{2, 3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37}
		for _, a := range bases {
			if a%small == 0 {
				continue
			}
			w, err := isWitness(bignum.New(a), n)
			if err != nil {
				return false, err
			}
			if w {
				return false, nil
			}
		}
		return true, nil
	}

	r := t.Rand
	if r == nil {
		r = rand.Reader
	}
	rounds := t.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	nMinus2, err := n.Sub(bignum.New(2))
	if err != nil {
		return false, err
	}
	for i := 0; i < rounds; i++ {
		a, err := bignum.RandomRange(r, bignum.New(2), nMinus2.Add(bignum.New(1)))
		if err != nil {
			return false, fmt.Errorf("numtheory: pick witness: %w", err)
		}
		w, err := isWitness(a, n)
		if err != nil {
			return false, err
		}
		if w {
			return false, nil
		}
	}
	return true, nil
}

// trialDivide checks n against the odd primes up to 47. decided is false when
// the test is inconclusive.
func trialDivide(n bignum.Int) (composite, decided bool) {
	r, _ := n.Mod(bignum.New(oddPrimorial47)).Uint64()
	for p := uint64(3); p <= trialLimit; p += 2 {
		if r%p == 0 {
			// Odd composites in the loop never trigger first: their
			// smallest prime factor is checked earlier.
			small, ok := n.Uint64()
			return !(ok && small == p), true
		}
	}
	if small, ok := n.Uint64(); ok && small < trialExactBelow {
		return false, true
	}
	return false, false
}

// isWitness reports whether a proves the odd number n > 3 composite.
func isWitness(a, n bignum.Int) (bool, error) {
	nMinus1, err := n.Sub(bignum.New(1))
	if err != nil {
		return false, err
	}
	// n-1 = d * 2^s with d odd.
	d := nMinus1
	s := 0
	for !d.IsOdd() {
		d = d.Div(bignum.New(2))
		s++
	}

	x, err := bignum.PowMod(a, d, n)
	if err != nil {
		return false, err
	}
	if x.IsOne() || x.Equal(nMinus1) {
		return false, nil
	}
	for i := 1; i < s; i++ {
		x, err = bignum.PowMod(x, bignum.New(2), n)
		if err != nil {
			return false, err
		}
		if x.Equal(nMinus1) {
			return false, nil
		}
		if x.IsOne() {
			return true, nil
		}
	}
	return true, nil
}

// IsSolovayStrassenPrime runs the Euler–Jacobi test: for random a coprime to
// n, a^((n-1)/2) ≡ (a/n) (mod n). Each round halves the error probability
// at worst. It is a cross-check, not a replacement for Miller–Rabin.
func IsSolovayStrassenPrime(r io.Reader, n bignum.Int, rounds int) (bool, error) {
	if small, ok := n.Uint64(); ok && small < 4 {
		return small == 2 || small == 3, nil
	}
	if !n.IsOdd() {
		return false, nil
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}
	nMinus1, _ := n.Sub(bignum.New(1))
	half := nMinus1.Div(bignum.New(2))
	for i := 0; i < rounds; i++ {
		a, err := bignum.RandomRange(r, bignum.New(2), nMinus1)
		if err != nil {
			return false, fmt.Errorf("numtheory: pick witness: %w", err)
		}
		if !bignum.Coprime(a, n) {
			return false, nil
		}
		j, err := bignum.Jacobi(a, n)
		if err != nil {
			return false, err
		}
		x, err := bignum.PowMod(a, half, n)
		if err != nil {
			return false, err
		}
		switch {
		case j == 1 && x.IsOne():
		case j == -1 && x.Equal(nMinus1):
		default:
			return false, nil
		}
	}
	return true, nil
}

// IsPrimeTrialDivision decides primality of a machine-size integer exactly
// with 6k±1 trial division.
func IsPrimeTrialDivision(n uint64) bool {
	if n <= 3 {
		return n > 1
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uint64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}
