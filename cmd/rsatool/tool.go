package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/coinbase/cb-rsa-go/internal/cli"
	"github.com/coinbase/cb-rsa-go/internal/config"
	"github.com/coinbase/cb-rsa-go/internal/keystore"
	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/metrics"
	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
	"github.com/coinbase/cb-rsa-go/pkg/rsa"
	"github.com/coinbase/cb-rsa-go/pkg/rsa/jwk"
	"github.com/coinbase/cb-rsa-go/pkg/seed"
)

// seedLabel separates rsatool key streams from other users of a passphrase.
const seedLabel = "rsatool/keygen"

type tool struct {
	cfg      *config.RSATool
	store    keystore.Store
	log      *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Collector
	engine   rsa.Engine
}

func newTool(cfg *config.RSATool, store keystore.Store, logger *log.Logger) (*tool, error) {
	reg := prometheus.NewRegistry()
	collector, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	t := &tool{
		cfg:      cfg,
		store:    store,
		log:      logger,
		registry: reg,
		metrics:  collector,
		engine:   rsa.Engine{Observer: collector},
	}
	if cfg.ConstantTime {
		t.engine.Exp = bignum.ConstantTime{}
	}
	return t, nil
}

func (t *tool) run(ctx context.Context) error {
	switch {
	case t.cfg.Generate:
		return t.generate(ctx)
	case t.cfg.Encrypt:
		return t.encrypt()
	default:
		return t.decrypt()
	}
}

func (t *tool) generate(ctx context.Context) error {
	var rnd io.Reader
	if t.cfg.Passphrase != "" {
		r, err := seed.NewReader([]byte(t.cfg.Passphrase), []byte(t.cfg.Salt), seedLabel, seed.DefaultParams())
		if err != nil {
			return err
		}
		rnd = r
		t.log.Warn("deriving the key pair from a passphrase; anyone who knows it can recreate the private key")
	}

	source, err := t.primeSource(rnd)
	if err != nil {
		return err
	}
	order, err := rsa.ParseGroupOrder(t.cfg.Order)
	if err != nil {
		return err
	}
	strategy, err := t.exponentStrategy(rnd)
	if err != nil {
		return err
	}

	pair, err := rsa.GenerateKeys(ctx, source,
		rsa.WithLogger(cli.Library(t.log)),
		rsa.WithObserver(t.metrics),
		rsa.WithOrder(order),
		rsa.WithExponents(strategy),
		rsa.WithRounds(t.cfg.Rounds),
	)
	if err != nil {
		return err
	}

	if err := t.store.WriteKeyPair(pair, t.cfg.PublicKey, t.cfg.PrivateKey); err != nil {
		return err
	}
	t.log.WithFields(log.Fields{
		"public_key":   t.cfg.PublicKey,
		"private_key":  t.cfg.PrivateKey,
		"modulus_bits": pair.Public.N().BitLen(),
		"order":        order.String(),
	}).Info("key pair written")

	if t.cfg.JWK != "" {
		data, err := jwk.Marshal(pair.Public, "")
		if err != nil {
			return err
		}
		if err := t.store.WriteFile(t.cfg.JWK, data, keystore.PublicKeyPerm); err != nil {
			return err
		}
		t.log.WithField("path", t.cfg.JWK).Info("public JWK written")
	}
	return nil
}

func (t *tool) primeSource(rnd io.Reader) (rsa.PrimeSource, error) {
	switch {
	case t.cfg.P != "":
		p, err := bignum.Parse(t.cfg.P, 10)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", config.PrimeP, err)
		}
		q, err := bignum.Parse(t.cfg.Q, 10)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", config.PrimeQ, err)
		}
		return rsa.FixedPrimes{P: p, Q: q}, nil
	case t.cfg.Digits > 0:
		return rsa.DigitPrimes{Digits: t.cfg.Digits, Rand: rnd}, nil
	default:
		return rsa.RandomPrimes{Bits: t.cfg.Bits, Rand: rnd}, nil
	}
}

func (t *tool) exponentStrategy(rnd io.Reader) (numtheory.ExponentStrategy, error) {
	switch {
	case t.cfg.RandomPrivate:
		return numtheory.RandomPrivate{Rand: rnd}, nil
	case t.cfg.PublicExponent != "":
		e, err := bignum.Parse(t.cfg.PublicExponent, 10)
		if err != nil {
			return nil, fmt.Errorf("--%s: %w", config.PublicExponent, err)
		}
		return numtheory.PublicExponent(e), nil
	default:
		return numtheory.ConventionalPublic(), nil
	}
}

func (t *tool) encrypt() error {
	pub, err := t.store.ReadPublicKey(t.cfg.Key)
	if err != nil {
		return err
	}
	plaintext, err := t.store.ReadFile(t.cfg.Input)
	if err != nil {
		return err
	}
	ciphertext, err := t.engine.EncryptBytes(plaintext, pub)
	if err != nil {
		return err
	}
	if err := t.store.WriteFile(t.cfg.Output, ciphertext, keystore.DataPerm); err != nil {
		return err
	}
	t.log.WithFields(log.Fields{
		"blocks":      len(plaintext),
		"block_width": pub.BlockWidth(),
		"output":      t.cfg.Output,
	}).Info("encrypted")
	return nil
}

func (t *tool) decrypt() error {
	priv, err := t.store.ReadPrivateKey(t.cfg.Key)
	if err != nil {
		return err
	}
	ciphertext, err := t.store.ReadFile(t.cfg.Input)
	if err != nil {
		return err
	}
	plaintext, err := t.engine.DecryptBytes(ciphertext, priv)
	if err != nil {
		return err
	}
	defer keystore.ZeroizeBytes(plaintext)
	if err := t.store.WriteFile(t.cfg.Output, plaintext, keystore.DataPerm); err != nil {
		return err
	}
	t.log.WithFields(log.Fields{
		"bytes":  len(plaintext),
		"output": t.cfg.Output,
	}).Info("decrypted")
	return nil
}

func (t *tool) writeMetrics() error {
	if t.cfg.MetricsFile == "" {
		return nil
	}
	path, err := t.store.Resolve(t.cfg.MetricsFile)
	if err != nil {
		return err
	}
	return metrics.WriteTextfile(path, t.registry)
}
