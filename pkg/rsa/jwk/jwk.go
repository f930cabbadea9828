// Package jwk exports public keys as RFC 7517 JSON Web Keys.
package jwk

import (
	stdrsa "crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/rsa"
)

const (
	KeyUseEncryption string = "enc"
)

// ErrExponentRange indicates a public exponent that does not fit the JWK
// representation used by crypto/rsa (a positive int).
var ErrExponentRange = errors.New("jwk: public exponent out of range")

// PublicJWK wraps pub in a JSONWebKey. An empty kid is replaced by a random
// UUID.
func PublicJWK(pub *rsa.PublicKey, kid string) (jose.JSONWebKey, error) {
	if pub == nil {
		return jose.JSONWebKey{}, fmt.Errorf("jwk: nil public key")
	}
	e, ok := pub.E().Uint64()
	if !ok || e > math.MaxInt32 {
		return jose.JSONWebKey{}, fmt.Errorf("%w: %d bits", ErrExponentRange, pub.E().BitLen())
	}
	if kid == "" {
		kid = uuid.New().String()
	}
	return jose.JSONWebKey{
		Key:   &stdrsa.PublicKey{N: pub.N().Big(), E: int(e)},
		KeyID: kid,
		Use:   KeyUseEncryption,
	}, nil
}

// Marshal encodes pub as JWK JSON.
func Marshal(pub *rsa.PublicKey, kid string) ([]byte, error) {
	key, err := PublicJWK(pub, kid)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(key, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("jwk: marshal: %w", err)
	}
	return out, nil
}

// Parse decodes a public RSA JWK back into a key.
func Parse(data []byte) (*rsa.PublicKey, string, error) {
	var key jose.JSONWebKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, "", fmt.Errorf("jwk: unmarshal: %w", err)
	}
	pub, ok := key.Key.(*stdrsa.PublicKey)
	if !ok {
		return nil, "", fmt.Errorf("%w: JWK is not a public RSA key", rsa.ErrKeyFormat)
	}
	n, err := bignum.FromBig(pub.N)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", rsa.ErrKeyFormat, err)
	}
	if pub.E < 0 {
		return nil, "", fmt.Errorf("%w: negative exponent", rsa.ErrKeyFormat)
	}
	out, err := rsa.NewPublicKey(n, bignum.New(uint64(pub.E)))
	if err != nil {
		return nil, "", err
	}
	return out, key.KeyID, nil
}
