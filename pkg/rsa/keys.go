package rsa

import (
	"fmt"
	"io"
	"strings"

	"github.com/asaskevich/govalidator"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// PublicKey is the pair (n, e).
type PublicKey struct {
	n, e bignum.Int
}

// PrivateKey is the pair (n, d).
type PrivateKey struct {
	n, d bignum.Int
}

// KeyPair holds a public key and its private counterpart.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// NewPublicKey validates n > 1 and 1 < e < n.
func NewPublicKey(n, e bignum.Int) (*PublicKey, error) {
	if err := validateKey(n, e); err != nil {
		return nil, err
	}
	return &PublicKey{n: n, e: e}, nil
}

// NewPrivateKey validates n > 1 and 1 < d < n.
func NewPrivateKey(n, d bignum.Int) (*PrivateKey, error) {
	if err := validateKey(n, d); err != nil {
		return nil, err
	}
	return &PrivateKey{n: n, d: d}, nil
}

func validateKey(n, exp bignum.Int) error {
	one := bignum.New(1)
	if n.Cmp(one) <= 0 {
		return fmt.Errorf("%w: modulus must be greater than 1", ErrKeyFormat)
	}
	if exp.Cmp(one) <= 0 || exp.Cmp(n) >= 0 {
		return fmt.Errorf("%w: exponent must lie in (1, n)", ErrKeyFormat)
	}
	return nil
}

// N returns the modulus.
func (k *PublicKey) N() bignum.Int { return k.n }

// E returns the public exponent.
func (k *PublicKey) E() bignum.Int { return k.e }

// BlockWidth returns the ciphertext block width for this key.
func (k *PublicKey) BlockWidth() int { return BlockWidth(k.n) }

// Equal reports whether k and other hold the same values.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return other != nil && k.n.Equal(other.n) && k.e.Equal(other.e)
}

// MarshalText encodes the key as "(n,e)".
func (k *PublicKey) MarshalText() ([]byte, error) {
	return formatKey(k.n, k.e), nil
}

// String returns the key text.
func (k *PublicKey) String() string {
	return string(formatKey(k.n, k.e))
}

// N returns the modulus.
func (k *PrivateKey) N() bignum.Int { return k.n }

// D returns the private exponent.
func (k *PrivateKey) D() bignum.Int { return k.d }

// BlockWidth returns the ciphertext block width for this key.
func (k *PrivateKey) BlockWidth() int { return BlockWidth(k.n) }

// Equal reports whether k and other hold the same values.
func (k *PrivateKey) Equal(other *PrivateKey) bool {
	return other != nil && k.n.Equal(other.n) && k.d.Equal(other.d)
}

// MarshalText encodes the key as "(n,d)".
func (k *PrivateKey) MarshalText() ([]byte, error) {
	return formatKey(k.n, k.d), nil
}

// String describes the key without revealing d.
func (k *PrivateKey) String() string {
	return fmt.Sprintf("rsa.PrivateKey{n: %d bits, d: redacted}", k.n.BitLen())
}

func formatKey(n, exp bignum.Int) []byte {
	return []byte("(" + n.String() + "," + exp.String() + ")")
}

// ParsePublicKey decodes "(n,e)".
func ParsePublicKey(text []byte) (*PublicKey, error) {
	n, e, err := parseKey(string(text))
	if err != nil {
		return nil, err
	}
	return NewPublicKey(n, e)
}

// ParsePrivateKey decodes "(n,d)".
func ParsePrivateKey(text []byte) (*PrivateKey, error) {
	n, d, err := parseKey(string(text))
	if err != nil {
		return nil, err
	}
	return NewPrivateKey(n, d)
}

// ReadPublicKey reads and decodes a public key. The input has no size limit.
func ReadPublicKey(r io.Reader) (*PublicKey, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rsa: read public key: %w", err)
	}
	return ParsePublicKey(text)
}

// ReadPrivateKey reads and decodes a private key. The input has no size limit.
func ReadPrivateKey(r io.Reader) (*PrivateKey, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("rsa: read private key: %w", err)
	}
	return ParsePrivateKey(text)
}

// parseKey accepts "(<n>,<exp>)" with optional whitespace around the whole
// text and around each number.
func parseKey(text string) (bignum.Int, bignum.Int, error) {
	s := strings.TrimSpace(text)
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: expected \"(<n>,<exponent>)\"", ErrKeyFormat)
	}
	fields := strings.Split(s[1:len(s)-1], ",")
	if len(fields) != 2 {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: expected two comma separated values, got %d", ErrKeyFormat, len(fields))
	}

	var values [2]bignum.Int
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || !govalidator.IsNumeric(f) {
			return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: field %d is not a decimal number", ErrKeyFormat, i+1)
		}
		v, err := bignum.Parse(f, 10)
		if err != nil {
			return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: field %d: %v", ErrKeyFormat, i+1, err)
		}
		values[i] = v
	}
	return values[0], values[1], nil
}
