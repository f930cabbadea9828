package jwk_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
	"github.com/coinbase/cb-rsa-go/pkg/rsa"
	"github.com/coinbase/cb-rsa-go/pkg/rsa/jwk"
)

func TestMarshalRoundTrip(t *testing.T) {
	pair, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 512},
		rsa.WithExponents(numtheory.PublicExponent(bignum.New(numtheory.ConventionalExponent))))
	require.NoError(t, err)

	data, err := jwk.Marshal(pair.Public, "")
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "RSA", fields["kty"])
	assert.Equal(t, jwk.KeyUseEncryption, fields["use"])
	assert.Equal(t, "AQAB", fields["e"])
	assert.NotContains(t, fields, "d")

	kid, ok := fields["kid"].(string)
	require.True(t, ok)
	_, err = uuid.Parse(kid)
	assert.NoError(t, err)

	pub, gotKid, err := jwk.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, kid, gotKid)
	assert.True(t, pub.Equal(pair.Public))
}

func TestPublicJWKKeepsKeyID(t *testing.T) {
	pub, err := rsa.NewPublicKey(bignum.New(3233), bignum.New(17))
	require.NoError(t, err)

	key, err := jwk.PublicJWK(pub, "textbook")
	require.NoError(t, err)
	assert.Equal(t, "textbook", key.KeyID)
	assert.True(t, key.IsPublic())
}

func TestPublicJWKRejectsHugeExponent(t *testing.T) {
	n := bignum.MustParse("340282366920938463463374607431768211457")
	pub, err := rsa.NewPublicKey(n, bignum.MustParse("18446744073709551617"))
	require.NoError(t, err)

	_, err = jwk.PublicJWK(pub, "")
	assert.ErrorIs(t, err, jwk.ErrExponentRange)
}

func TestParseRejectsOtherKeys(t *testing.T) {
	_, _, err := jwk.Parse([]byte(`{"kty":"oct","k":"c2VjcmV0"}`))
	assert.ErrorIs(t, err, rsa.ErrKeyFormat)

	_, _, err = jwk.Parse([]byte(`not json`))
	assert.Error(t, err)
}
