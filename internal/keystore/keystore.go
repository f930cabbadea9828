// Package keystore reads and writes key and data files for the command line
// tools. Paths are confined to a root directory and every write goes through
// a temporary file and a rename.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coinbase/cb-rsa-go/pkg/rsa"
)

const (
	PublicKeyPerm  os.FileMode = 0o644
	PrivateKeyPerm os.FileMode = 0o600
	DataPerm       os.FileMode = 0o644
)

// ErrPathEscapes indicates a path outside the store root.
var ErrPathEscapes = errors.New("keystore: path escapes root directory")

// Store resolves paths against Root. An empty Root is the working directory.
type Store struct {
	Root string
}

// Resolve validates that path doesn't escape the root and returns it as an
// absolute path. Relative paths are taken relative to the root.
func (s Store) Resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("keystore: empty path")
	}
	base := s.Root
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("keystore: get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("keystore: absolute root: %w", err)
	}

	p := path
	if !filepath.IsAbs(p) {
		p = filepath.Join(base, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return "", fmt.Errorf("keystore: relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, path)
	}
	return p, nil
}

// ReadFile reads a whole file.
func (s Store) ReadFile(path string) ([]byte, error) {
	abs, err := s.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs) // #nosec G304 -- abs validated by Resolve
	if err != nil {
		return nil, fmt.Errorf("keystore: read: %w", err)
	}
	return data, nil
}

// WriteFile atomically replaces path with data.
func (s Store) WriteFile(path string, data []byte, perm os.FileMode) error {
	abs, err := s.Resolve(path)
	if err != nil {
		return err
	}
	tmp, err := writeTemp(abs, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, abs); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("keystore: rename: %w", err)
	}
	return nil
}

// ReadPublicKey reads a "(n,e)" key file.
func (s Store) ReadPublicKey(path string) (*rsa.PublicKey, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return rsa.ParsePublicKey(data)
}

// ReadPrivateKey reads a "(n,d)" key file. The raw file contents are wiped
// once parsed.
func (s Store) ReadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := s.ReadFile(path)
	if err != nil {
		return nil, err
	}
	defer ZeroizeBytes(data)
	return rsa.ParsePrivateKey(data)
}

// WriteKeyPair writes both key files or neither. Both are staged as
// temporary files first; if the second rename fails the first key file is
// removed again.
func (s Store) WriteKeyPair(pair *rsa.KeyPair, publicPath, privatePath string) error {
	if pair == nil || pair.Public == nil || pair.Private == nil {
		return errors.New("keystore: incomplete key pair")
	}
	pubAbs, err := s.Resolve(publicPath)
	if err != nil {
		return err
	}
	privAbs, err := s.Resolve(privatePath)
	if err != nil {
		return err
	}
	if pubAbs == privAbs {
		return errors.New("keystore: public and private key paths are the same")
	}

	pubText, _ := pair.Public.MarshalText()
	privText, _ := pair.Private.MarshalText()
	defer ZeroizeBytes(privText)

	privTmp, err := writeTemp(privAbs, privText, PrivateKeyPerm)
	if err != nil {
		return err
	}
	pubTmp, err := writeTemp(pubAbs, pubText, PublicKeyPerm)
	if err != nil {
		_ = os.Remove(privTmp)
		return err
	}

	if err := os.Rename(privTmp, privAbs); err != nil {
		_ = os.Remove(privTmp)
		_ = os.Remove(pubTmp)
		return fmt.Errorf("keystore: install private key: %w", err)
	}
	if err := os.Rename(pubTmp, pubAbs); err != nil {
		_ = os.Remove(pubTmp)
		_ = os.Remove(privAbs)
		return fmt.Errorf("keystore: install public key: %w", err)
	}
	return nil
}

func writeTemp(target string, data []byte, perm os.FileMode) (string, error) {
	dir, base := filepath.Split(target)
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("keystore: create temp: %w", err)
	}
	name := f.Name()
	fail := func(err error) (string, error) {
		_ = f.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := f.Chmod(perm); err != nil {
		return fail(fmt.Errorf("keystore: chmod: %w", err))
	}
	if _, err := f.Write(data); err != nil {
		return fail(fmt.Errorf("keystore: write: %w", err))
	}
	if err := f.Sync(); err != nil {
		return fail(fmt.Errorf("keystore: sync: %w", err))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("keystore: close: %w", err)
	}
	return name, nil
}

// ZeroizeBytes overwrites buf with zeros. runtime.KeepAlive keeps the stores
// from being eliminated; copies made elsewhere are not reached.
func ZeroizeBytes(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
