// Package seed turns a passphrase and salt into a deterministic byte stream.
//
// The passphrase is stretched with Argon2id, expanded with HKDF-SHA512 into a
// ChaCha20 key and nonce, and the ChaCha20 keystream is served through
// io.Reader. Feeding the stream to key generation yields the same key pair for
// the same passphrase, salt and label, which is useful for reproducible test
// vectors. It is not a substitute for crypto/rand in production key
// generation.
package seed

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

// MinSaltLen is the shortest salt accepted.
const MinSaltLen = 8

var (
	// ErrEmptyPassphrase indicates an empty passphrase.
	ErrEmptyPassphrase = errors.New("seed: empty passphrase")

	// ErrShortSalt indicates a salt shorter than MinSaltLen.
	ErrShortSalt = errors.New("seed: salt too short")
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams returns Argon2id parameters of one pass over 64 MiB with four
// lanes.
func DefaultParams() Params {
	return Params{Time: 1, Memory: 64 * 1024, Threads: 4}
}

// Reader is a deterministic keystream. It never returns an error.
type Reader struct {
	stream *chacha20.Cipher
}

// NewReader derives a Reader from passphrase and salt. label separates
// independent streams derived from the same secret.
func NewReader(passphrase, salt []byte, label string, p Params) (*Reader, error) {
	if len(passphrase) == 0 {
		return nil, ErrEmptyPassphrase
	}
	if len(salt) < MinSaltLen {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrShortSalt, len(salt), MinSaltLen)
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		p = DefaultParams()
	}

	stretched := argon2.IDKey(passphrase, salt, p.Time, p.Memory, p.Threads, 32)
	kdf := hkdf.New(sha512.New, stretched, salt, []byte("cb-rsa-go/seed/"+label))

	material := make([]byte, chacha20.KeySize+chacha20.NonceSize)
	if _, err := io.ReadFull(kdf, material); err != nil {
		return nil, fmt.Errorf("seed: expand: %w", err)
	}
	stream, err := chacha20.NewUnauthenticatedCipher(material[:chacha20.KeySize], material[chacha20.KeySize:])
	if err != nil {
		return nil, fmt.Errorf("seed: keystream: %w", err)
	}
	clear(stretched)
	clear(material)
	return &Reader{stream: stream}, nil
}

// Read fills p with keystream bytes.
func (r *Reader) Read(p []byte) (int, error) {
	clear(p)
	r.stream.XORKeyStream(p, p)
	return len(p), nil
}
