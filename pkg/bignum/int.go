package bignum

import (
	"fmt"
	"math/big"
	"strings"
)

// Int is an immutable arbitrary-precision non-negative integer.
// The zero value represents 0.
type Int struct {
	v *big.Int
}

// New returns an Int holding v.
func New(v uint64) Int {
	return Int{v: new(big.Int).SetUint64(v)}
}

// FromBig returns an Int holding a copy of b. Negative and nil inputs are
// rejected.
func FromBig(b *big.Int) (Int, error) {
	if b == nil {
		return Int{}, fmt.Errorf("%w: nil big.Int", ErrSyntax)
	}
	if b.Sign() < 0 {
		return Int{}, ErrUnderflow
	}
	return Int{v: new(big.Int).Set(b)}, nil
}

// FromBytes interprets buf as a big-endian unsigned integer.
func FromBytes(buf []byte) Int {
	return Int{v: new(big.Int).SetBytes(buf)}
}

// Parse reads s as an unsigned integer in the given base (2..62). Leading and
// trailing whitespace is not accepted; callers trim before parsing.
func Parse(s string, base int) (Int, error) {
	if s == "" {
		return Int{}, fmt.Errorf("%w: empty string", ErrSyntax)
	}
	if strings.HasPrefix(s, "-") {
		return Int{}, fmt.Errorf("%w: %q", ErrUnderflow, s)
	}
	if strings.HasPrefix(s, "+") {
		return Int{}, fmt.Errorf("%w: sign not allowed in %q", ErrSyntax, s)
	}
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return Int{}, fmt.Errorf("%w: %q in base %d", ErrSyntax, s, base)
	}
	return Int{v: v}, nil
}

// MustParse is like Parse with base 10 but panics on error. Intended for
// constants in tests and examples.
func MustParse(s string) Int {
	x, err := Parse(s, 10)
	if err != nil {
		panic(err)
	}
	return x
}

func (x Int) get() *big.Int {
	if x.v == nil {
		return new(big.Int)
	}
	return x.v
}

// Big returns a copy of x as a *big.Int.
func (x Int) Big() *big.Int {
	return new(big.Int).Set(x.get())
}

// Add returns x + y.
func (x Int) Add(y Int) Int {
	return Int{v: new(big.Int).Add(x.get(), y.get())}
}

// Sub returns x - y, or ErrUnderflow when y > x.
func (x Int) Sub(y Int) (Int, error) {
	if x.Cmp(y) < 0 {
		return Int{}, ErrUnderflow
	}
	return Int{v: new(big.Int).Sub(x.get(), y.get())}, nil
}

// Mul returns x * y.
func (x Int) Mul(y Int) Int {
	return Int{v: new(big.Int).Mul(x.get(), y.get())}
}

// Div returns the truncated quotient x / y. It panics if y is zero.
func (x Int) Div(y Int) Int {
	return Int{v: new(big.Int).Quo(x.get(), y.get())}
}

// Mod returns x mod m. It panics if m is zero.
func (x Int) Mod(m Int) Int {
	return Int{v: new(big.Int).Rem(x.get(), m.get())}
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int) Cmp(y Int) int {
	return x.get().Cmp(y.get())
}

// Equal reports whether x == y.
func (x Int) Equal(y Int) bool {
	return x.Cmp(y) == 0
}

// Sign returns 0 if x is zero and 1 otherwise.
func (x Int) Sign() int {
	return x.get().Sign()
}

// IsZero reports whether x == 0.
func (x Int) IsZero() bool {
	return x.Sign() == 0
}

// IsOne reports whether x == 1.
func (x Int) IsOne() bool {
	v := x.get()
	return v.IsUint64() && v.Uint64() == 1
}

// IsOdd reports whether x is odd.
func (x Int) IsOdd() bool {
	return x.get().Bit(0) == 1
}

// BitLen returns the length of x in bits. The bit length of 0 is 0.
func (x Int) BitLen() int {
	return x.get().BitLen()
}

// ByteLen returns the minimal number of bytes needed to hold x.
func (x Int) ByteLen() int {
	return (x.BitLen() + 7) / 8
}

// Bit returns the value of the i'th bit of x.
func (x Int) Bit(i int) uint {
	return x.get().Bit(i)
}

// Uint64 returns x as a uint64 and reports whether it fits.
func (x Int) Uint64() (uint64, bool) {
	v := x.get()
	if !v.IsUint64() {
		return 0, false
	}
	return v.Uint64(), true
}

// Text returns the representation of x in the given base (2..62).
func (x Int) Text(base int) string {
	return x.get().Text(base)
}

// String returns the decimal representation of x.
func (x Int) String() string {
	return x.Text(10)
}

// Bytes returns the minimal big-endian encoding of x. Zero encodes as an empty
// slice.
func (x Int) Bytes() []byte {
	return x.get().Bytes()
}

// FillBytes returns x as a big-endian byte slice of exactly width bytes,
// zero-padded on the left. It returns ErrOverflow when x needs more than
// width bytes.
func (x Int) FillBytes(width int) ([]byte, error) {
	if width < 0 || x.ByteLen() > width {
		return nil, fmt.Errorf("%w: %d bytes needed, width %d", ErrOverflow, x.ByteLen(), width)
	}
	return x.get().FillBytes(make([]byte, width)), nil
}

// MarshalText implements encoding.TextMarshaler using base 10.
func (x Int) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using base 10.
func (x *Int) UnmarshalText(text []byte) error {
	v, err := Parse(string(text), 10)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
