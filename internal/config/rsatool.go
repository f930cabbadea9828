package config

import (
	"errors"
	"fmt"

	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
	"github.com/coinbase/cb-rsa-go/pkg/rsa"
)

// RSATool is the rsatool configuration.
type RSATool struct {
	ConfigFile     string `json:"config"`
	Generate       bool   `json:"generate"`
	Encrypt        bool   `json:"encrypt"`
	Decrypt        bool   `json:"decrypt"`
	Input          string `json:"input"`
	Output         string `json:"output"`
	Key            string `json:"key"`
	PublicKey      string `json:"public-key"`
	PrivateKey     string `json:"private-key"`
	Bits           int    `json:"bits"`
	Digits         int    `json:"digits"`
	Rounds         int    `json:"rounds"`
	Order          string `json:"order"`
	PublicExponent string `json:"public-exponent"`
	RandomPrivate  bool   `json:"random-private"`
	P              string `json:"p"`
	Q              string `json:"q"`
	Passphrase     string `json:"passphrase"`
	Salt           string `json:"salt"`
	ConstantTime   bool   `json:"constant-time"`
	JWK            string `json:"jwk"`
	MetricsFile    string `json:"metrics-file"`
	Debug          bool   `json:"debug"`
	Version        bool   `json:"version"`
}

// rsatool configuration options
const (
	Generate       = "generate"
	Encrypt        = "encrypt"
	Decrypt        = "decrypt"
	Input          = "input"
	Output         = "output"
	Key            = "key"
	PublicKey      = "public-key"
	PrivateKey     = "private-key"
	Bits           = "bits"
	Digits         = "digits"
	Rounds         = "rounds"
	Order          = "order"
	PublicExponent = "public-exponent"
	RandomPrivate  = "random-private"
	PrimeP         = "p"
	PrimeQ         = "q"
	Passphrase     = "passphrase"
	Salt           = "salt"
	ConstantTime   = "constant-time"
	JWK            = "jwk"
	MetricsFile    = "metrics-file"
	DebugEnabled   = "debug"
	Version        = "version"
)

// RSAToolRedacted lists the settings Print must not reveal.
func RSAToolRedacted() []string {
	return []string{Passphrase, Salt, PrimeP, PrimeQ}
}

var errMode = errors.New("exactly one of --generate, --encrypt or --decrypt is required")

// NewRSAToolLoader registers the rsatool flags.
func NewRSAToolLoader() *Loader {
	l := NewLoader("rsatool")
	flags := l.Flags()

	flags.BoolP(Generate, "g", false, "Perform RSA key pair generation")
	flags.BoolP(Encrypt, "e", false, "Encrypt input and store the result in output")
	flags.BoolP(Decrypt, "d", false, "Decrypt input and store the result in output")
	flags.StringP(Input, "i", "", "Path to the input file")
	flags.StringP(Output, "o", "", "Path to the output file")
	flags.StringP(Key, "k", "", "Path to the key file (public key for -e, private key for -d)")

	flags.String(PublicKey, "public.key", "Where -g writes the public key")
	flags.String(PrivateKey, "private.key", "Where -g writes the private key")
	flags.Int(Bits, 2048, "Modulus size in bits for -g")
	flags.Int(Digits, 0, "Draw primes with this many decimal digits instead of --bits")
	flags.Int(Rounds, numtheory.DefaultRounds, "Miller-Rabin rounds per candidate")
	flags.String(Order, rsa.Carmichael.String(), "Group order for the exponents: carmichael or euler")
	flags.String(PublicExponent, "", "Public exponent to use (default 65537 with small fallbacks)")
	flags.Bool(RandomPrivate, false, "Draw a random private exponent and derive e from it")
	flags.String(PrimeP, "", "Use this prime as p instead of drawing one (requires --q)")
	flags.String(PrimeQ, "", "Use this prime as q instead of drawing one (requires --p)")
	flags.String(Passphrase, "", "Derive the key pair deterministically from this passphrase")
	flags.String(Salt, "", "Salt for --passphrase, at least 8 bytes")
	flags.Bool(ConstantTime, false, "Use the constant-time exponentiation backend")
	flags.String(JWK, "", "With -g, also write the public key as a JWK to this path")
	flags.String(MetricsFile, "", "Write prometheus metrics to this textfile on exit")
	flags.Bool(DebugEnabled, false, "Debug mode toggle")
	flags.Bool(Version, false, "Print the version and exit")
	return l
}

// LoadRSATool parses args into an RSATool configuration.
func LoadRSATool(args []string) (*RSATool, *Loader, error) {
	l := NewRSAToolLoader()
	var cfg RSATool
	if err := l.Load(args, &cfg); err != nil {
		return nil, l, err
	}
	return &cfg, l, nil
}

// Validate checks that the settings describe one runnable operation.
func (c RSATool) Validate() error {
	if c.Version {
		return nil
	}
	modes := 0
	for _, set := range []bool{c.Generate, c.Encrypt, c.Decrypt} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		return errMode
	}
	if c.Rounds < 1 {
		return fmt.Errorf("--%s must be positive", Rounds)
	}
	if _, err := rsa.ParseGroupOrder(c.Order); err != nil {
		return err
	}

	if c.Generate {
		return c.validateGenerate()
	}
	for _, req := range []struct{ flag, value string }{
		{Input, c.Input},
		{Output, c.Output},
		{Key, c.Key},
	} {
		if req.value == "" {
			return fmt.Errorf("--%s is required to %s", req.flag, c.mode())
		}
	}
	return nil
}

func (c RSATool) validateGenerate() error {
	if c.PublicKey == "" || c.PrivateKey == "" {
		return fmt.Errorf("--%s and --%s are required", PublicKey, PrivateKey)
	}
	if c.PublicKey == c.PrivateKey {
		return fmt.Errorf("--%s and --%s must differ", PublicKey, PrivateKey)
	}
	if (c.P == "") != (c.Q == "") {
		return fmt.Errorf("--%s and --%s must be given together", PrimeP, PrimeQ)
	}
	fixed := c.P != ""
	if fixed && (c.Passphrase != "" || c.Digits > 0) {
		return fmt.Errorf("--%s/--%s cannot be combined with --%s or --%s", PrimeP, PrimeQ, Passphrase, Digits)
	}
	if !fixed && c.Digits <= 0 && c.Bits < rsa.MinModulusBits {
		return fmt.Errorf("--%s must be at least %d", Bits, rsa.MinModulusBits)
	}
	if c.Digits < 0 {
		return fmt.Errorf("--%s must not be negative", Digits)
	}
	if c.Passphrase != "" && c.Salt == "" {
		return fmt.Errorf("--%s requires --%s", Passphrase, Salt)
	}
	if c.RandomPrivate && c.PublicExponent != "" {
		return fmt.Errorf("--%s cannot be combined with --%s", RandomPrivate, PublicExponent)
	}
	return nil
}

func (c RSATool) mode() string {
	switch {
	case c.Generate:
		return Generate
	case c.Encrypt:
		return Encrypt
	default:
		return Decrypt
	}
}
