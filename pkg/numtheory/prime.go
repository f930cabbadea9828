package numtheory

import (
	"context"
	"fmt"
	"io"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// Generator searches for random primes.
type Generator struct {
	// Rand is the candidate source. Nil means crypto/rand.Reader.
	Rand io.Reader

	// Rounds is passed to the Miller–Rabin tester.
	Rounds int

	// MaxAttempts bounds the number of candidates drawn per search. Zero
	// means 100*bits + 1000 (or 100*digits*4 + 1000 for decimal searches).
	MaxAttempts int

	// OnCandidate, when set, is called after each candidate is tested.
	OnCandidate func(prime bool)
}

// GeneratePrime returns a random prime of exactly bits bits using
// crypto/rand.Reader.
func GeneratePrime(ctx context.Context, bits int) (bignum.Int, error) {
	return Generator{}.Prime(ctx, bits)
}

// Prime returns a random prime p with p.BitLen() == bits. Candidates are odd
// with the top bit set, so 2 is never returned; for bits == 2 the only
// candidate is 3.
func (g Generator) Prime(ctx context.Context, bits int) (bignum.Int, error) {
	if bits < 2 {
		return bignum.Int{}, fmt.Errorf("%w: %d bits", ErrInvalidSize, bits)
	}
	limit := g.attempts(bits)
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return bignum.Int{}, err
		}
		c, err := bignum.RandomBits(g.Rand, bits)
		if err != nil {
			return bignum.Int{}, err
		}
		c = c.SetBit(bits-1, 1).SetBit(0, 1)

		ok, err := g.test(c)
		if err != nil {
			return bignum.Int{}, err
		}
		if ok {
			return c, nil
		}
	}
	return bignum.Int{}, fmt.Errorf("%w: no %d-bit prime after %d candidates", ErrPrimeSearchExhausted, bits, limit)
}

// PrimeDigits returns a random odd prime with exactly digits decimal digits.
func (g Generator) PrimeDigits(ctx context.Context, digits int) (bignum.Int, error) {
	if digits < 1 {
		return bignum.Int{}, fmt.Errorf("%w: %d digits", ErrInvalidSize, digits)
	}
	lo := pow10(digits - 1)
	hi := pow10(digits)
	limit := g.attempts(digits * 4)
	for i := 0; i < limit; i++ {
		if err := ctx.Err(); err != nil {
			return bignum.Int{}, err
		}
		c, err := bignum.RandomRange(g.Rand, lo, hi)
		if err != nil {
			return bignum.Int{}, err
		}
		// hi is even, so c+1 stays below it.
		if !c.IsOdd() {
			c = c.Add(bignum.New(1))
		}
		ok, err := g.test(c)
		if err != nil {
			return bignum.Int{}, err
		}
		if ok {
			return c, nil
		}
	}
	return bignum.Int{}, fmt.Errorf("%w: no %d-digit prime after %d candidates", ErrPrimeSearchExhausted, digits, limit)
}

func (g Generator) test(c bignum.Int) (bool, error) {
	ok, err := Tester{Rand: g.Rand, Rounds: g.Rounds}.Test(c)
	if err != nil {
		return false, err
	}
	if g.OnCandidate != nil {
		g.OnCandidate(ok)
	}
	return ok, nil
}

func (g Generator) attempts(bits int) int {
	if g.MaxAttempts > 0 {
		return g.MaxAttempts
	}
	return 100*bits + 1000
}

func pow10(k int) bignum.Int {
	v := bignum.New(1)
	ten := bignum.New(10)
	for i := 0; i < k; i++ {
		v = v.Mul(ten)
	}
	return v
}
