package dh

import (
	"errors"
	"fmt"
	"io"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
)

// TrialDivisionBound is the largest trial divisor used when factoring p-1.
const TrialDivisionBound = 1 << 16

var (
	ErrNotPrime         = errors.New("dh: modulus is not prime")
	ErrNotPrimitiveRoot = errors.New("dh: generator is not a primitive root")
	ErrFactorization    = errors.New("dh: cannot factor p-1")
	ErrSecretRange      = errors.New("dh: secret outside [1, p-1)")
	ErrPublicValueRange = errors.New("dh: public value outside [1, p)")
	ErrSecretsDisagree  = errors.New("dh: shared secrets disagree")
)

// Params are a validated group description.
type Params struct {
	p, g bignum.Int
	exp  bignum.Exponentiator
}

// NewParams validates p and g with numtheory.DefaultRounds Miller–Rabin
// rounds.
func NewParams(p, g bignum.Int) (*Params, error) {
	return NewParamsRounds(p, g, numtheory.DefaultRounds)
}

// NewParamsRounds is NewParams with an explicit round count.
func NewParamsRounds(p, g bignum.Int, rounds int) (*Params, error) {
	if p.Cmp(bignum.New(3)) < 0 || !numtheory.IsProbablyPrime(p, rounds) {
		return nil, fmt.Errorf("%w: %s", ErrNotPrime, p)
	}
	pm1, _ := p.Sub(bignum.New(1))
	if g.Cmp(bignum.New(2)) < 0 || g.Cmp(pm1) >= 0 {
		return nil, fmt.Errorf("%w: %s outside [2, p-1)", ErrNotPrimitiveRoot, g)
	}
	params := &Params{p: p, g: g, exp: bignum.ConstantTime{}}
	ok, err := params.isPrimitiveRoot(rounds)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s modulo %s", ErrNotPrimitiveRoot, g, p)
	}
	return params, nil
}

// P returns the modulus.
func (pr *Params) P() bignum.Int { return pr.p }

// G returns the generator.
func (pr *Params) G() bignum.Int { return pr.g }

func (pr *Params) isPrimitiveRoot(rounds int) (bool, error) {
	pm1, _ := pr.p.Sub(bignum.New(1))
	factors, err := DistinctPrimeFactors(pm1, rounds)
	if err != nil {
		return false, err
	}
	for _, f := range factors {
		y, err := pr.exp.PowMod(pr.g, pm1.Div(f), pr.p)
		if err != nil {
			return false, err
		}
		if y.IsOne() {
			return false, nil
		}
	}
	return true, nil
}

// DistinctPrimeFactors returns the distinct prime factors of n in ascending
// order. Divisors up to TrialDivisionBound are found by trial division; the
// cofactor left over must be prime.
func DistinctPrimeFactors(n bignum.Int, rounds int) ([]bignum.Int, error) {
	if n.Cmp(bignum.New(2)) < 0 {
		return nil, fmt.Errorf("%w: %s has no prime factors", ErrFactorization, n)
	}
	var factors []bignum.Int
	rest := n
	for d := uint64(2); d <= TrialDivisionBound; d++ {
		if d > 2 && d%2 == 0 {
			continue
		}
		div := bignum.New(d)
		if div.Mul(div).Cmp(rest) > 0 {
			break
		}
		if !rest.Mod(div).IsZero() {
			continue
		}
		factors = append(factors, div)
		for rest.Mod(div).IsZero() {
			rest = rest.Div(div)
		}
	}
	if rest.IsOne() {
		return factors, nil
	}
	if !numtheory.IsProbablyPrime(rest, rounds) {
		return nil, fmt.Errorf("%w: composite cofactor of %d bits", ErrFactorization, rest.BitLen())
	}
	return append(factors, rest), nil
}

// RandomSecret draws a secret uniformly from [1, p-1). A nil r means
// crypto/rand.Reader.
func (pr *Params) RandomSecret(r io.Reader) (bignum.Int, error) {
	pm1, _ := pr.p.Sub(bignum.New(1))
	return bignum.RandomRange(r, bignum.New(1), pm1)
}

// PublicValue returns g^secret mod p.
func (pr *Params) PublicValue(secret bignum.Int) (bignum.Int, error) {
	if err := pr.checkSecret(secret); err != nil {
		return bignum.Int{}, err
	}
	return pr.exp.PowMod(pr.g, secret, pr.p)
}

// SharedSecret returns peer^secret mod p.
func (pr *Params) SharedSecret(peer, secret bignum.Int) (bignum.Int, error) {
	if err := pr.checkSecret(secret); err != nil {
		return bignum.Int{}, err
	}
	if peer.IsZero() || peer.Cmp(pr.p) >= 0 {
		return bignum.Int{}, ErrPublicValueRange
	}
	return pr.exp.PowMod(peer, secret, pr.p)
}

func (pr *Params) checkSecret(secret bignum.Int) error {
	pm1, _ := pr.p.Sub(bignum.New(1))
	if secret.IsZero() || secret.Cmp(pm1) >= 0 {
		return ErrSecretRange
	}
	return nil
}
