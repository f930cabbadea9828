package bignum

import "errors"

var (
	// ErrNoInverse indicates that the operand shares a factor with the modulus.
	ErrNoInverse = errors.New("bignum: no modular inverse")

	// ErrZeroModulus indicates a modular operation was asked to reduce by zero.
	ErrZeroModulus = errors.New("bignum: zero modulus")

	// ErrUnderflow indicates a result (or input) would be negative.
	ErrUnderflow = errors.New("bignum: negative value")

	// ErrOverflow indicates a value does not fit the requested width.
	ErrOverflow = errors.New("bignum: value exceeds width")

	// ErrSyntax indicates text that is not a number in the requested base.
	ErrSyntax = errors.New("bignum: invalid number syntax")
)
