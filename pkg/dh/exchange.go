package dh

import (
	"fmt"
	"strings"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// Result is the transcript of one exchange.
type Result struct {
	A   bignum.Int // g^a mod p
	B   bignum.Int // g^b mod p
	Key bignum.Int // shared secret
}

// Exchange runs both sides of the protocol with secrets a and b and checks
// that they agree on the key.
func Exchange(params *Params, a, b bignum.Int) (Result, error) {
	if params == nil {
		return Result{}, fmt.Errorf("dh: nil params")
	}
	pubA, err := params.PublicValue(a)
	if err != nil {
		return Result{}, fmt.Errorf("dh: side a: %w", err)
	}
	pubB, err := params.PublicValue(b)
	if err != nil {
		return Result{}, fmt.Errorf("dh: side b: %w", err)
	}
	keyA, err := params.SharedSecret(pubB, a)
	if err != nil {
		return Result{}, err
	}
	keyB, err := params.SharedSecret(pubA, b)
	if err != nil {
		return Result{}, err
	}
	if !keyA.Equal(keyB) {
		return Result{}, ErrSecretsDisagree
	}
	return Result{A: pubA, B: pubB, Key: keyA}, nil
}

// MarshalText encodes the result as "<A>,<B>,<KEY>", each value in decimal
// inside angle brackets.
func (r Result) MarshalText() ([]byte, error) {
	fields := []string{r.A.String(), r.B.String(), r.Key.String()}
	for i, f := range fields {
		fields[i] = "<" + f + ">"
	}
	return []byte(strings.Join(fields, ",")), nil
}
