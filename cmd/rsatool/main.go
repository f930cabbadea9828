// Command rsatool generates textbook RSA key pairs and encrypts or decrypts
// files with them.
//
//	rsatool -g [--bits 2048 | --digits N | --p P --q Q] [--public-key public.key] [--private-key private.key]
//	rsatool -e -i plain.txt -o cipher.bin -k public.key
//	rsatool -d -i cipher.bin -o plain.txt -k private.key
//
// Every flag can also be set through an RSATOOL_* environment variable or an
// rsatool.yaml config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	flag "github.com/spf13/pflag"

	"github.com/coinbase/cb-rsa-go/internal/cli"
	"github.com/coinbase/cb-rsa-go/internal/config"
	"github.com/coinbase/cb-rsa-go/internal/keystore"
	"github.com/coinbase/cb-rsa-go/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, keystore.Store{})
	stop()
	os.Exit(code)
}

// run executes one invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, store keystore.Store) int {
	cfg, loader, err := config.LoadRSATool(args)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	logger := cli.NewLogger(stderr, cfg != nil && cfg.Debug)
	if err != nil {
		logger.WithError(err).Error("invalid arguments")
		return 1
	}
	if cfg.Version {
		fmt.Fprintf(stdout, "rsatool %s\n", version.String())
		return 0
	}
	if cfg.Debug {
		loader.Print(logger, config.RSAToolRedacted())
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Error("invalid configuration")
		return 1
	}

	t, err := newTool(cfg, store, logger)
	if err != nil {
		logger.WithError(err).Error("setup failed")
		return 1
	}
	err = t.run(ctx)
	if merr := t.writeMetrics(); merr != nil {
		logger.WithError(merr).Warn("metrics not written")
	}
	if err != nil {
		logger.WithError(err).Error("rsatool failed")
		return 1
	}
	return 0
}
