// Command dhexchange runs both sides of a Diffie–Hellman exchange and writes
// the transcript "<A>,<B>,<KEY>" to a file.
//
//	dhexchange -o out.txt -p 23 -g 5 -a 6 -b 15
//
// Secrets that are not given are drawn at random.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/coinbase/cb-rsa-go/internal/cli"
	"github.com/coinbase/cb-rsa-go/internal/config"
	"github.com/coinbase/cb-rsa-go/internal/keystore"
	"github.com/coinbase/cb-rsa-go/internal/version"
	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/dh"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, keystore.Store{}))
}

func run(args []string, stdout, stderr io.Writer, store keystore.Store) int {
	cfg, loader, err := config.LoadDHExchange(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	logger := cli.NewLogger(stderr, cfg != nil && cfg.Debug)
	if err != nil {
		logger.WithError(err).Error("invalid arguments")
		return 1
	}
	if cfg.Version {
		fmt.Fprintf(stdout, "dhexchange %s\n", version.String())
		return 0
	}
	if cfg.Debug {
		loader.Print(logger, config.DHExchangeRedacted())
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("invalid configuration")
		return 1
	}

	if err := exchange(cfg, store, logger); err != nil {
		logger.WithError(err).Error("dhexchange failed")
		return 1
	}
	return 0
}

func exchange(cfg *config.DHExchange, store keystore.Store, logger *log.Logger) error {
	p, err := bignum.Parse(cfg.Prime, 10)
	if err != nil {
		return fmt.Errorf("--%s: %w", config.Prime, err)
	}
	g, err := bignum.Parse(cfg.Generator, 10)
	if err != nil {
		return fmt.Errorf("--%s: %w", config.Generator, err)
	}
	params, err := dh.NewParams(p, g)
	if err != nil {
		return err
	}

	a, err := secret(params, cfg.SecretA, config.SecretA)
	if err != nil {
		return err
	}
	b, err := secret(params, cfg.SecretB, config.SecretB)
	if err != nil {
		return err
	}

	res, err := dh.Exchange(params, a, b)
	if err != nil {
		return err
	}
	text, err := res.MarshalText()
	if err != nil {
		return err
	}
	if err := store.WriteFile(cfg.Output, text, keystore.DataPerm); err != nil {
		return err
	}
	logger.WithFields(log.Fields{
		"output":     cfg.Output,
		"prime_bits": p.BitLen(),
	}).Info("exchange written")
	return nil
}

func secret(params *dh.Params, text, flagName string) (bignum.Int, error) {
	if text == "" {
		return params.RandomSecret(nil)
	}
	v, err := bignum.Parse(text, 10)
	if err != nil {
		return bignum.Int{}, fmt.Errorf("--%s: %w", flagName, err)
	}
	return v, nil
}
