package numtheory

import "errors"

var (
	// ErrInvalidPrime indicates a supplied or generated value failed primality.
	ErrInvalidPrime = errors.New("numtheory: value is not prime")

	// ErrDegenerateModulus indicates p == q.
	ErrDegenerateModulus = errors.New("numtheory: degenerate modulus (p == q)")

	// ErrNoModularInverse indicates gcd(exponent, order) != 1.
	ErrNoModularInverse = errors.New("numtheory: exponent has no inverse modulo the group order")

	// ErrInvalidExponent indicates no exponent in (1, order) could be chosen,
	// or a derived pair does not satisfy e*d ≡ 1 (mod order).
	ErrInvalidExponent = errors.New("numtheory: invalid exponent")

	// ErrPrimeSearchExhausted indicates the generator hit its attempt bound.
	ErrPrimeSearchExhausted = errors.New("numtheory: prime search exhausted")

	// ErrInvalidSize indicates an unusable bit or digit length.
	ErrInvalidSize = errors.New("numtheory: invalid size")
)
