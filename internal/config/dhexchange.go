package config

import (
	"fmt"
)

// DHExchange is the dhexchange configuration.
type DHExchange struct {
	ConfigFile string `json:"config"`
	Output     string `json:"output"`
	Prime      string `json:"prime"`
	Generator  string `json:"generator"`
	SecretA    string `json:"secret-a"`
	SecretB    string `json:"secret-b"`
	Debug      bool   `json:"debug"`
	Version    bool   `json:"version"`
}

// dhexchange configuration options
const (
	Prime     = "prime"
	Generator = "generator"
	SecretA   = "secret-a"
	SecretB   = "secret-b"
)

// DHExchangeRedacted lists the settings Print must not reveal.
func DHExchangeRedacted() []string {
	return []string{SecretA, SecretB}
}

// NewDHExchangeLoader registers the dhexchange flags.
func NewDHExchangeLoader() *Loader {
	l := NewLoader("dhexchange")
	flags := l.Flags()

	flags.StringP(Output, "o", "", "Path to the output file")
	flags.StringP(Prime, "p", "", "Prime modulus of the group")
	flags.StringP(Generator, "g", "", "Generator, a primitive root modulo the prime")
	flags.StringP(SecretA, "a", "", "Secret of side A (random when omitted)")
	flags.StringP(SecretB, "b", "", "Secret of side B (random when omitted)")
	flags.Bool(DebugEnabled, false, "Debug mode toggle")
	flags.Bool(Version, false, "Print the version and exit")
	return l
}

// LoadDHExchange parses args into a DHExchange configuration.
func LoadDHExchange(args []string) (*DHExchange, *Loader, error) {
	l := NewDHExchangeLoader()
	var cfg DHExchange
	if err := l.Load(args, &cfg); err != nil {
		return nil, l, err
	}
	return &cfg, l, nil
}

// Validate checks that the required settings are present.
func (c DHExchange) Validate() error {
	if c.Version {
		return nil
	}
	for _, req := range []struct{ flag, value string }{
		{Output, c.Output},
		{Prime, c.Prime},
		{Generator, c.Generator},
	} {
		if req.value == "" {
			return fmt.Errorf("--%s is required", req.flag)
		}
	}
	return nil
}
