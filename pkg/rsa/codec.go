package rsa

import (
	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// MinBlockWidth is the ciphertext block width for moduli below 2^64.
const MinBlockWidth = 8

// BlockWidth returns the fixed ciphertext block width in bytes for modulus n:
// MinBlockWidth, or the byte length of n when that is larger.
func BlockWidth(n bignum.Int) int {
	return max(MinBlockWidth, n.ByteLen())
}

// MarshalCiphertext concatenates blocks as width-byte big-endian integers.
func MarshalCiphertext(blocks []Block, width int) ([]byte, error) {
	if width < 1 {
		return nil, errorf("MarshalCiphertext", "%w: block width %d", ErrCiphertextFormat, width)
	}
	out := make([]byte, 0, len(blocks)*width)
	for i, b := range blocks {
		buf, err := b.FillBytes(width)
		if err != nil {
			return nil, errorf("MarshalCiphertext", "%w: block %d: %v", ErrBlockOverflow, i, err)
		}
		out = append(out, buf...)
	}
	return out, nil
}

// UnmarshalCiphertext splits data into width-byte blocks. The length of data
// must be a multiple of width; empty data is zero blocks.
func UnmarshalCiphertext(data []byte, width int) ([]Block, error) {
	if width < 1 {
		return nil, errorf("UnmarshalCiphertext", "%w: block width %d", ErrCiphertextFormat, width)
	}
	if len(data)%width != 0 {
		return nil, errorf("UnmarshalCiphertext", "%w: %d bytes is not a multiple of the %d-byte block width", ErrCiphertextFormat, len(data), width)
	}
	blocks := make([]Block, 0, len(data)/width)
	for off := 0; off < len(data); off += width {
		blocks = append(blocks, bignum.FromBytes(data[off:off+width]))
	}
	return blocks, nil
}

// EncryptBytes encrypts plaintext and encodes the blocks with the key's block
// width.
func (en Engine) EncryptBytes(plaintext []byte, pub *PublicKey) ([]byte, error) {
	blocks, err := en.Encrypt(plaintext, pub)
	if err != nil {
		return nil, err
	}
	return MarshalCiphertext(blocks, pub.BlockWidth())
}

// DecryptBytes decodes ciphertext framed with the key's block width and
// decrypts it.
func (en Engine) DecryptBytes(ciphertext []byte, priv *PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, errorf("DecryptBytes", "%w: nil private key", ErrKeyFormat)
	}
	blocks, err := UnmarshalCiphertext(ciphertext, priv.BlockWidth())
	if err != nil {
		return nil, err
	}
	return en.Decrypt(blocks, priv)
}
