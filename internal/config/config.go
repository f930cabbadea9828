// Package config loads command line tool settings from flags, environment
// variables and an optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFile is the flag naming an explicit config file.
const ConfigFile = "config"

// Loader binds one tool's flag set to its own viper instance.
type Loader struct {
	name  string
	v     *viper.Viper
	flags *flag.FlagSet
}

// NewLoader prepares a loader for the named tool. Settings are read from
// environment variables prefixed with the upper-cased name (e.g.
// --public-key is RSATOOL_PUBLIC_KEY) and from <name>.yaml (or any other
// format viper supports) in the working directory or /etc/<name>.
func NewLoader(name string) *Loader {
	v := viper.New()
	v.SetEnvPrefix(strings.ToUpper(name))
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.SetConfigName(name)
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/" + name)

	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.String(ConfigFile, "", "Path to a config file (default "+name+".yaml in . or /etc/"+name+")")
	return &Loader{name: name, v: v, flags: flags}
}

// Flags returns the flag set to register tool flags on.
func (l *Loader) Flags() *flag.FlagSet {
	return l.flags
}

func decoderHook(dc *mapstructure.DecoderConfig) {
	dc.TagName = "json"
	dc.ErrorUnused = true
}

// Load parses args and decodes the merged settings into out. It returns
// flag.ErrHelp when -h or --help was given.
func (l *Loader) Load(args []string, out any) error {
	if err := l.flags.Parse(args); err != nil {
		return err
	}
	if path, _ := l.flags.GetString(ConfigFile); path != "" {
		l.v.SetConfigFile(path)
	}

	err := l.v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("config: read: %w", err)
		}
	}

	if err := l.v.BindPFlags(l.flags); err != nil {
		return fmt.Errorf("config: bind flags: %w", err)
	}
	if err := l.v.Unmarshal(out, decoderHook); err != nil {
		return fmt.Errorf("config: decode: %w", err)
	}
	return nil
}

// Print logs every setting except the redacted ones.
func (l *Loader) Print(logger log.FieldLogger, redacted []string) {
	ok := func(key string) bool {
		for _, forbiddenKey := range redacted {
			if forbiddenKey == key {
				return false
			}
		}
		return true
	}

	var keys sort.StringSlice = l.v.AllKeys()

	keys.Sort()
	for _, key := range keys {
		if ok(key) {
			logger.Infof("%s: %s", key, l.v.GetString(key))
		} else {
			logger.Infof("%s: ***REDACTED***", key)
		}
	}
}
