package rsa

import (
	"errors"
	"fmt"

	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
)

// Number theory failures, re-exported so callers only need this package.
var (
	ErrInvalidPrime         = numtheory.ErrInvalidPrime
	ErrDegenerateModulus    = numtheory.ErrDegenerateModulus
	ErrNoModularInverse     = numtheory.ErrNoModularInverse
	ErrInvalidExponent      = numtheory.ErrInvalidExponent
	ErrPrimeSearchExhausted = numtheory.ErrPrimeSearchExhausted
	ErrInvalidSize          = numtheory.ErrInvalidSize
)

var (
	// ErrKeyFormat indicates unreadable or malformed key material, or key
	// values that violate n > 1 and 1 < exponent < n.
	ErrKeyFormat = errors.New("rsa: malformed key")

	// ErrBlockOverflow indicates a plaintext unit or ciphertext block that is
	// not strictly below the modulus.
	ErrBlockOverflow = errors.New("rsa: block not below modulus")

	// ErrCiphertextFormat indicates ciphertext whose framing is broken or
	// whose blocks do not decrypt to bytes.
	ErrCiphertextFormat = errors.New("rsa: malformed ciphertext")
)

// Error wraps a failure with the operation and, for key generation, the state
// machine stage the failure occurred in.
type Error struct {
	Op    string // Operation that failed
	Stage Stage  // Zero outside key generation
	Err   error  // Underlying error
}

func (e *Error) Error() string {
	if e.Stage != 0 {
		return fmt.Sprintf("rsa.%s [%s]: %v", e.Op, e.Stage, e.Err)
	}
	return fmt.Sprintf("rsa.%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// errorf creates a new Error outside key generation.
func errorf(op string, format string, args ...interface{}) error {
	return &Error{
		Op:  op,
		Err: fmt.Errorf(format, args...),
	}
}
