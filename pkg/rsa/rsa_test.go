package rsa_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/logging"
	"github.com/coinbase/cb-rsa-go/pkg/metrics"
	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
	"github.com/coinbase/cb-rsa-go/pkg/rsa"
	"github.com/coinbase/cb-rsa-go/pkg/seed"
)

func fixedPair(t *testing.T, p, q uint64, opts ...rsa.Option) *rsa.KeyPair {
	t.Helper()
	pair, err := rsa.GenerateKeys(context.Background(), rsa.FixedPrimes{P: bignum.New(p), Q: bignum.New(q)}, opts...)
	require.NoError(t, err)
	return pair
}

func TestGenerateKeysTextbookPair(t *testing.T) {
	pair := fixedPair(t, 61, 53)
	assert.Equal(t, "3233", pair.Public.N().String())
	assert.Equal(t, "17", pair.Public.E().String())
	assert.Equal(t, "413", pair.Private.D().String())
	assert.True(t, pair.Public.N().Equal(pair.Private.N()))

	c, err := rsa.EncryptBlock(bignum.New(65), pair.Public)
	require.NoError(t, err)
	assert.Equal(t, "2790", c.String())

	m, err := rsa.DecryptBlock(c, pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "65", m.String())
}

func TestGenerateKeysEulerOrder(t *testing.T) {
	pair := fixedPair(t, 61, 53, rsa.WithOrder(rsa.Euler))
	assert.Equal(t, "17", pair.Public.E().String())
	assert.Equal(t, "2753", pair.Private.D().String())

	m, err := rsa.DecryptBlock(bignum.New(2790), pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "65", m.String())
}

func TestBlockRoundTripWholeRange(t *testing.T) {
	for _, order := range []rsa.GroupOrder{rsa.Carmichael, rsa.Euler} {
		pair := fixedPair(t, 61, 53, rsa.WithOrder(order))
		for v := uint64(0); v < 3233; v++ {
			m := bignum.New(v)
			c, err := rsa.EncryptBlock(m, pair.Public)
			require.NoError(t, err)
			back, err := rsa.DecryptBlock(c, pair.Private)
			require.NoError(t, err)
			require.True(t, back.Equal(m), "order %s: %d -> %s -> %s", order, v, c, back)
		}
	}
}

func TestEngineBackendsAgree(t *testing.T) {
	pair := fixedPair(t, 61, 53)
	ct := rsa.Engine{Exp: bignum.ConstantTime{}}
	for v := uint64(0); v < 3233; v += 7 {
		a, err := rsa.EncryptBlock(bignum.New(v), pair.Public)
		require.NoError(t, err)
		b, err := ct.EncryptBlock(bignum.New(v), pair.Public)
		require.NoError(t, err)
		require.True(t, a.Equal(b), "m=%d", v)
	}
}

func TestEncryptDecryptBytes(t *testing.T) {
	pair, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 64})
	require.NoError(t, err)

	blocks, err := rsa.Encrypt([]byte("HELLO"), pair.Public)
	require.NoError(t, err)
	require.Len(t, blocks, 5)
	// Textbook RSA is deterministic: equal bytes give equal blocks.
	assert.True(t, blocks[2].Equal(blocks[3]))

	plain, err := rsa.Decrypt(blocks, pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(plain))

	var en rsa.Engine
	ct, err := en.EncryptBytes([]byte("HELLO"), pair.Public)
	require.NoError(t, err)
	assert.Len(t, ct, 5*rsa.MinBlockWidth)

	plain, err = en.DecryptBytes(ct, pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(plain))
}

func TestEncryptEmpty(t *testing.T) {
	pair := fixedPair(t, 61, 53)
	blocks, err := rsa.Encrypt(nil, pair.Public)
	require.NoError(t, err)
	assert.Empty(t, blocks)

	plain, err := rsa.Decrypt(nil, pair.Private)
	require.NoError(t, err)
	assert.Empty(t, plain)
}

func TestEncryptBlockOverflow(t *testing.T) {
	// n = 143, so bytes 143..255 do not fit.
	pair := fixedPair(t, 11, 13)
	assert.Equal(t, "17", pair.Public.E().String())
	assert.Equal(t, "53", pair.Private.D().String())

	blocks, err := rsa.Encrypt([]byte{1, 2, 142}, pair.Public)
	require.NoError(t, err)
	plain, err := rsa.Decrypt(blocks, pair.Private)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 142}, plain)

	blocks, err = rsa.Encrypt([]byte{1, 2, 143, 4}, pair.Public)
	assert.ErrorIs(t, err, rsa.ErrBlockOverflow)
	assert.Nil(t, blocks)

	_, err = rsa.EncryptBlock(bignum.New(143), pair.Public)
	assert.ErrorIs(t, err, rsa.ErrBlockOverflow)
}

func TestDecryptRejectsBadBlocks(t *testing.T) {
	pair := fixedPair(t, 61, 53)

	_, err := rsa.Decrypt([]rsa.Block{bignum.New(2790), bignum.New(3233)}, pair.Private)
	assert.ErrorIs(t, err, rsa.ErrBlockOverflow)

	c, err := rsa.EncryptBlock(bignum.New(300), pair.Public)
	require.NoError(t, err)
	plain, err := rsa.Decrypt([]rsa.Block{bignum.New(2790), c}, pair.Private)
	assert.ErrorIs(t, err, rsa.ErrCiphertextFormat)
	assert.Nil(t, plain)
}

func TestGenerateKeysFixedFailures(t *testing.T) {
	tests := []struct {
		name  string
		p, q  uint64
		opts  []rsa.Option
		want  error
		stage rsa.Stage
	}{
		{name: "equal primes", p: 61, q: 61, want: rsa.ErrDegenerateModulus, stage: rsa.StagePrimesValidated},
		{name: "composite p", p: 60, q: 53, want: rsa.ErrInvalidPrime, stage: rsa.StagePrimesValidated},
		{name: "composite q", p: 61, q: 51, want: rsa.ErrInvalidPrime, stage: rsa.StagePrimesValidated},
		{
			name: "exponent shares a factor", p: 61, q: 53,
			opts:  []rsa.Option{rsa.WithExponents(numtheory.PublicExponent(bignum.New(6)))},
			want:  rsa.ErrNoModularInverse,
			stage: rsa.StageExponentsDerived,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &countingObserver{}
			opts := append([]rsa.Option{rsa.WithObserver(obs)}, tt.opts...)
			pair, err := rsa.GenerateKeys(context.Background(), rsa.FixedPrimes{P: bignum.New(tt.p), Q: bignum.New(tt.q)}, opts...)
			require.Error(t, err)
			assert.Nil(t, pair)
			assert.ErrorIs(t, err, tt.want)

			var rerr *rsa.Error
			require.True(t, errors.As(err, &rerr))
			assert.Equal(t, "GenerateKeys", rerr.Op)
			assert.Equal(t, tt.stage, rerr.Stage)
			assert.Contains(t, err.Error(), tt.stage.String())

			// Operator supplied primes are never re-sampled.
			assert.Zero(t, obs.resampled.Load())
			assert.Zero(t, obs.generated.Load())
		})
	}
}

func TestGenerateKeysResampleExhausted(t *testing.T) {
	// Two-bit primes are always 3, so every pair is degenerate.
	obs := &countingObserver{}
	_, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: rsa.MinModulusBits},
		rsa.WithObserver(obs), rsa.WithMaxResamples(3))
	assert.ErrorIs(t, err, rsa.ErrDegenerateModulus)
	assert.EqualValues(t, 3, obs.resampled.Load())
	assert.Zero(t, obs.generated.Load())
}

func TestGenerateKeysInvalidSize(t *testing.T) {
	_, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 3})
	assert.ErrorIs(t, err, rsa.ErrInvalidSize)

	_, err = rsa.GenerateKeys(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateKeysCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := rsa.GenerateKeys(ctx, rsa.RandomPrimes{Bits: 512})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateKeysRandomSizes(t *testing.T) {
	for _, bits := range []int{16, 64, 128, 256} {
		pair, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: bits})
		require.NoError(t, err, "bits=%d", bits)
		n := pair.Public.N().BitLen()
		assert.True(t, n == bits || n == bits-1, "bits=%d got modulus of %d bits", bits, n)

		m := bignum.New(uint64(bits))
		c, err := rsa.EncryptBlock(m, pair.Public)
		require.NoError(t, err)
		back, err := rsa.DecryptBlock(c, pair.Private)
		require.NoError(t, err)
		assert.True(t, back.Equal(m))
	}
}

func TestGenerateKeysDigitPrimes(t *testing.T) {
	pair, err := rsa.GenerateKeys(context.Background(), rsa.DigitPrimes{Digits: 5})
	require.NoError(t, err)
	digits := len(pair.Public.N().String())
	assert.True(t, digits == 9 || digits == 10, "modulus %s", pair.Public.N())

	plain, err := rsa.Decrypt(mustEncrypt(t, "digits", pair.Public), pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "digits", string(plain))
}

func TestGenerateKeysSeededIsReproducible(t *testing.T) {
	params := seed.Params{Time: 1, Memory: 1024, Threads: 1}
	generate := func(passphrase string) *rsa.KeyPair {
		r, err := seed.NewReader([]byte(passphrase), []byte("fixed-salt"), "rsa", params)
		require.NoError(t, err)
		pair, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 128, Rand: r})
		require.NoError(t, err)
		return pair
	}

	a := generate("correct horse")
	b := generate("correct horse")
	c := generate("battery staple")
	assert.True(t, a.Public.Equal(b.Public))
	assert.True(t, a.Private.Equal(b.Private))
	assert.False(t, a.Public.Equal(c.Public))
}

func TestGenerateKeysRandomPrivateExponent(t *testing.T) {
	pair, err := rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 128},
		rsa.WithExponents(numtheory.RandomPrivate{}))
	require.NoError(t, err)

	plain, err := rsa.Decrypt(mustEncrypt(t, "HELLO", pair.Public), pair.Private)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", string(plain))
}

func TestGenerateKeysReportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	pair := fixedPair(t, 61, 53, rsa.WithObserver(c))
	for _, s := range []rsa.Stage{rsa.StageAwaitPrimes, rsa.StagePrimesValidated, rsa.StageModulusComputed, rsa.StageOrderComputed, rsa.StageExponentsDerived, rsa.StageKeysEmitted} {
		assert.Equal(t, 1.0, testutil.ToFloat64(c.Stages.WithLabelValues(s.String())), s.String())
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(c.KeysGenerated))

	en := rsa.Engine{Observer: c}
	blocks, err := en.Encrypt([]byte("HELLO"), pair.Public)
	require.NoError(t, err)
	_, err = en.Decrypt(blocks, pair.Private)
	require.NoError(t, err)
	assert.Equal(t, 5.0, testutil.ToFloat64(c.Blocks.WithLabelValues("encrypt")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.Blocks.WithLabelValues("decrypt")))

	_, err = rsa.GenerateKeys(context.Background(), rsa.RandomPrimes{Bits: 64}, rsa.WithObserver(c))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, testutil.ToFloat64(c.Candidates.WithLabelValues("prime")), 2.0)
}

func TestGenerateKeysLogsWithoutSecrets(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	fixedPair(t, 61, 53, rsa.WithLogger(logger))
	out := buf.String()
	assert.Contains(t, out, "stage=keys_emitted")
	assert.Contains(t, out, "d="+logging.Placeholder())
	assert.NotContains(t, out, "d=413")
	assert.NotContains(t, out, "p=61")
}

func TestParseGroupOrder(t *testing.T) {
	for in, want := range map[string]rsa.GroupOrder{
		"":           rsa.Carmichael,
		"carmichael": rsa.Carmichael,
		"Lambda":     rsa.Carmichael,
		"euler":      rsa.Euler,
		" phi ":      rsa.Euler,
	} {
		got, err := rsa.ParseGroupOrder(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := rsa.ParseGroupOrder("fermat")
	assert.Error(t, err)
}

func mustEncrypt(t *testing.T, s string, pub *rsa.PublicKey) []rsa.Block {
	t.Helper()
	blocks, err := rsa.Encrypt([]byte(s), pub)
	require.NoError(t, err)
	return blocks
}

type countingObserver struct {
	candidates atomic.Int64
	stages     atomic.Int64
	resampled  atomic.Int64
	generated  atomic.Int64
	blocks     atomic.Int64
}

func (o *countingObserver) CandidateTested(bool)            { o.candidates.Add(1) }
func (o *countingObserver) StageReached(string)             { o.stages.Add(1) }
func (o *countingObserver) Resampled(string)                { o.resampled.Add(1) }
func (o *countingObserver) KeyGenerated(time.Duration)      { o.generated.Add(1) }
func (o *countingObserver) BlocksProcessed(_ string, n int) { o.blocks.Add(int64(n)) }
