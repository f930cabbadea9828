package numtheory

import (
	"errors"
	"fmt"
	"io"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// ConventionalExponent is the customary public exponent, 2^16 + 1.
const ConventionalExponent = 65537

// ExponentStrategy chooses an exponent pair (e, d) for a group order.
type ExponentStrategy interface {
	Derive(order bignum.Int) (e, d bignum.Int, err error)
}

// FixedPublic tries each candidate public exponent in order and inverts the
// first one that lies in (1, order) and is coprime to it.
type FixedPublic struct {
	Candidates []bignum.Int
}

// ConventionalPublic prefers 65537 and falls back to the small Fermat-style
// exponents for group orders too small or unlucky for it.
func ConventionalPublic() FixedPublic {
	return FixedPublic{Candidates: []bignum.Int{
		bignum.New(ConventionalExponent),
		bignum.New(3),
		bignum.New(5),
		bignum.New(17),
		bignum.New(257),
	}}
}

// PublicExponent returns a strategy that uses exactly e.
func PublicExponent(e bignum.Int) FixedPublic {
	return FixedPublic{Candidates: []bignum.Int{e}}
}

// Derive implements ExponentStrategy.
func (f FixedPublic) Derive(order bignum.Int) (bignum.Int, bignum.Int, error) {
	if len(f.Candidates) == 0 {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: no candidate exponents", ErrInvalidExponent)
	}
	one := bignum.New(1)
	lastErr := ErrInvalidExponent
	for _, e := range f.Candidates {
		if e.Cmp(one) <= 0 || e.Cmp(order) >= 0 {
			continue
		}
		d, err := bignum.InvMod(e, order)
		if errors.Is(err, bignum.ErrNoInverse) {
			lastErr = ErrNoModularInverse
			continue
		}
		if err != nil {
			return bignum.Int{}, bignum.Int{}, err
		}
		return e, d, nil
	}
	return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: no candidate exponent usable for order of %d bits", lastErr, order.BitLen())
}

// RandomPrivate draws a random private exponent d coprime to the order and
// derives e as its inverse.
type RandomPrivate struct {
	// Rand is the exponent source. Nil means crypto/rand.Reader.
	Rand io.Reader

	// MaxAttempts bounds the number of draws. Zero means 1000.
	MaxAttempts int
}

// Derive implements ExponentStrategy.
func (r RandomPrivate) Derive(order bignum.Int) (bignum.Int, bignum.Int, error) {
	if order.Cmp(bignum.New(3)) <= 0 {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: order %s leaves no exponent in (1, order)", ErrInvalidExponent, order)
	}
	limit := r.MaxAttempts
	if limit <= 0 {
		limit = 1000
	}
	for i := 0; i < limit; i++ {
		d, err := bignum.RandomRange(r.Rand, bignum.New(2), order)
		if err != nil {
			return bignum.Int{}, bignum.Int{}, err
		}
		if !bignum.Coprime(d, order) {
			continue
		}
		e, err := bignum.InvMod(d, order)
		if err != nil {
			return bignum.Int{}, bignum.Int{}, err
		}
		if e.IsOne() {
			continue
		}
		return e, d, nil
	}
	return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: no coprime private exponent after %d draws", ErrNoModularInverse, limit)
}

// DeriveExponents picks (e, d) for the group order with the given strategy
// (ConventionalPublic when nil) and verifies the result.
func DeriveExponents(order bignum.Int, strategy ExponentStrategy) (e, d bignum.Int, err error) {
	if strategy == nil {
		strategy = ConventionalPublic()
	}
	e, d, err = strategy.Derive(order)
	if err != nil {
		return bignum.Int{}, bignum.Int{}, err
	}
	if err := VerifyExponents(e, d, order); err != nil {
		return bignum.Int{}, bignum.Int{}, err
	}
	return e, d, nil
}

// VerifyExponents checks 1 < e, d < order, gcd(e, order) = 1 and
// e*d ≡ 1 (mod order).
func VerifyExponents(e, d, order bignum.Int) error {
	one := bignum.New(1)
	for _, x := range []bignum.Int{e, d} {
		if x.Cmp(one) <= 0 || x.Cmp(order) >= 0 {
			return fmt.Errorf("%w: exponent outside (1, order)", ErrInvalidExponent)
		}
	}
	if !bignum.Coprime(e, order) {
		return ErrNoModularInverse
	}
	if !e.Mul(d).Mod(order).IsOne() {
		return fmt.Errorf("%w: e*d is not 1 modulo the order", ErrInvalidExponent)
	}
	return nil
}
