package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	flag "github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/internal/config"
)

func TestLoadRSAToolDefaults(t *testing.T) {
	cfg, _, err := config.LoadRSATool([]string{"-g"})
	require.NoError(t, err)
	assert.True(t, cfg.Generate)
	assert.Equal(t, 2048, cfg.Bits)
	assert.Equal(t, "public.key", cfg.PublicKey)
	assert.Equal(t, "private.key", cfg.PrivateKey)
	assert.Equal(t, "carmichael", cfg.Order)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRSAToolShorthands(t *testing.T) {
	cfg, _, err := config.LoadRSATool([]string{"-e", "-i", "in.txt", "-o", "out.bin", "-k", "public.key"})
	require.NoError(t, err)
	assert.True(t, cfg.Encrypt)
	assert.Equal(t, "in.txt", cfg.Input)
	assert.Equal(t, "out.bin", cfg.Output)
	assert.Equal(t, "public.key", cfg.Key)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRSAToolEnvironment(t *testing.T) {
	t.Setenv("RSATOOL_BITS", "512")
	t.Setenv("RSATOOL_PUBLIC_EXPONENT", "17")

	cfg, _, err := config.LoadRSATool([]string{"-g"})
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Bits)
	assert.Equal(t, "17", cfg.PublicExponent)

	// Flags win over the environment.
	cfg, _, err = config.LoadRSATool([]string{"-g", "--bits", "1024"})
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Bits)
}

func TestLoadRSAToolConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rsatool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bits: 256\norder: euler\n"), 0o600))

	cfg, _, err := config.LoadRSATool([]string{"-g", "--config", path})
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Bits)
	assert.Equal(t, "euler", cfg.Order)

	require.NoError(t, os.WriteFile(path, []byte("bits: 256\nbogus: true\n"), 0o600))
	_, _, err = config.LoadRSATool([]string{"-g", "--config", path})
	assert.Error(t, err)

	_, _, err = config.LoadRSATool([]string{"-g", "--config", filepath.Join(dir, "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadHelp(t *testing.T) {
	_, _, err := config.LoadRSATool([]string{"--help"})
	assert.ErrorIs(t, err, flag.ErrHelp)

	_, _, err = config.LoadDHExchange([]string{"-h"})
	assert.ErrorIs(t, err, flag.ErrHelp)
}

func TestRSAToolValidate(t *testing.T) {
	base := func() config.RSATool {
		return config.RSATool{
			Generate:   true,
			PublicKey:  "public.key",
			PrivateKey: "private.key",
			Bits:       2048,
			Rounds:     40,
			Order:      "carmichael",
		}
	}

	tests := []struct {
		name   string
		mutate func(*config.RSATool)
		want   string
	}{
		{"valid", func(*config.RSATool) {}, ""},
		{"no mode", func(c *config.RSATool) { c.Generate = false }, "exactly one"},
		{"two modes", func(c *config.RSATool) { c.Encrypt = true }, "exactly one"},
		{"bad order", func(c *config.RSATool) { c.Order = "fermat" }, "group order"},
		{"zero rounds", func(c *config.RSATool) { c.Rounds = 0 }, "rounds"},
		{"tiny modulus", func(c *config.RSATool) { c.Bits = 3 }, "bits"},
		{"digits ignore bits", func(c *config.RSATool) { c.Bits = 0; c.Digits = 10 }, ""},
		{"p without q", func(c *config.RSATool) { c.P = "61" }, "together"},
		{"fixed primes", func(c *config.RSATool) { c.P, c.Q = "61", "53" }, ""},
		{"fixed with passphrase", func(c *config.RSATool) { c.P, c.Q, c.Passphrase = "61", "53", "x" }, "cannot be combined"},
		{"passphrase without salt", func(c *config.RSATool) { c.Passphrase = "x" }, "salt"},
		{"same key paths", func(c *config.RSATool) { c.PrivateKey = c.PublicKey }, "must differ"},
		{"random private with e", func(c *config.RSATool) { c.RandomPrivate, c.PublicExponent = true, "17" }, "random-private"},
		{"encrypt without input", func(c *config.RSATool) { c.Generate, c.Encrypt = false, true }, "--input"},
		{"decrypt without key", func(c *config.RSATool) {
			c.Generate, c.Decrypt, c.Input, c.Output = false, true, "in", "out"
		}, "--key"},
		{"version skips checks", func(c *config.RSATool) { c.Generate, c.Version = false, true }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDHExchange(t *testing.T) {
	cfg, _, err := config.LoadDHExchange([]string{"-o", "out.txt", "-p", "23", "-g", "5", "-a", "6", "-b", "15"})
	require.NoError(t, err)
	assert.Equal(t, "out.txt", cfg.Output)
	assert.Equal(t, "23", cfg.Prime)
	assert.Equal(t, "5", cfg.Generator)
	assert.Equal(t, "6", cfg.SecretA)
	assert.Equal(t, "15", cfg.SecretB)
	assert.NoError(t, cfg.Validate())

	cfg.Generator = ""
	assert.ErrorContains(t, cfg.Validate(), "--generator")
}

func TestPrintRedacts(t *testing.T) {
	_, l, err := config.LoadRSATool([]string{"-g", "--passphrase", "hunter2", "--salt", "saltsalt"})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.InfoLevel)
	l.Print(logger, config.RSAToolRedacted())

	var lines []string
	for _, e := range hook.AllEntries() {
		lines = append(lines, e.Message)
	}
	out := strings.Join(lines, "\n")
	assert.Contains(t, out, "bits: 2048")
	assert.Contains(t, out, "passphrase: ***REDACTED***")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "saltsalt")
}
