package rsa

import (
	"github.com/coinbase/cb-rsa-go/pkg/bignum"
)

// Block is one plaintext unit or ciphertext block.
type Block = bignum.Int

// Engine transforms blocks with modular exponentiation. The zero value uses
// the Standard exponentiator and no observer.
type Engine struct {
	Exp      bignum.Exponentiator
	Observer Observer
}

func (en Engine) exponentiator() bignum.Exponentiator {
	if en.Exp == nil {
		return bignum.Standard{}
	}
	return en.Exp
}

func (en Engine) observer() Observer {
	if en.Observer == nil {
		return nopObserver{}
	}
	return en.Observer
}

// EncryptBlock returns m^e mod n. m must be below n.
func (en Engine) EncryptBlock(m Block, pub *PublicKey) (Block, error) {
	if pub == nil {
		return Block{}, errorf("EncryptBlock", "%w: nil public key", ErrKeyFormat)
	}
	return en.transform("EncryptBlock", m, pub.e, pub.n)
}

// DecryptBlock returns c^d mod n. c must be below n.
func (en Engine) DecryptBlock(c Block, priv *PrivateKey) (Block, error) {
	if priv == nil {
		return Block{}, errorf("DecryptBlock", "%w: nil private key", ErrKeyFormat)
	}
	return en.transform("DecryptBlock", c, priv.d, priv.n)
}

func (en Engine) transform(op string, x, exp, n bignum.Int) (Block, error) {
	if x.Cmp(n) >= 0 {
		return Block{}, errorf(op, "%w: %d-bit value against %d-bit modulus", ErrBlockOverflow, x.BitLen(), n.BitLen())
	}
	y, err := en.exponentiator().PowMod(x, exp, n)
	if err != nil {
		return Block{}, &Error{Op: op, Err: err}
	}
	return y, nil
}

// Encrypt maps every plaintext byte to one ciphertext block. A byte value
// not below n fails the whole operation with ErrBlockOverflow. Empty input
// yields an empty result.
func (en Engine) Encrypt(plaintext []byte, pub *PublicKey) ([]Block, error) {
	if pub == nil {
		return nil, errorf("Encrypt", "%w: nil public key", ErrKeyFormat)
	}
	out := make([]Block, 0, len(plaintext))
	for i, b := range plaintext {
		m := bignum.New(uint64(b))
		if m.Cmp(pub.n) >= 0 {
			return nil, errorf("Encrypt", "%w: byte %d (value %d) with modulus %s", ErrBlockOverflow, i, b, pub.n)
		}
		c, err := en.exponentiator().PowMod(m, pub.e, pub.n)
		if err != nil {
			return nil, &Error{Op: "Encrypt", Err: err}
		}
		out = append(out, c)
	}
	en.observer().BlocksProcessed("encrypt", len(out))
	return out, nil
}

// Decrypt reverses Encrypt block by block. A block not below n fails with
// ErrBlockOverflow; a block that does not decrypt to a byte (wrong key or
// corrupted data) fails with ErrCiphertextFormat.
func (en Engine) Decrypt(blocks []Block, priv *PrivateKey) ([]byte, error) {
	if priv == nil {
		return nil, errorf("Decrypt", "%w: nil private key", ErrKeyFormat)
	}
	out := make([]byte, 0, len(blocks))
	for i, c := range blocks {
		if c.Cmp(priv.n) >= 0 {
			return nil, errorf("Decrypt", "%w: block %d", ErrBlockOverflow, i)
		}
		m, err := en.exponentiator().PowMod(c, priv.d, priv.n)
		if err != nil {
			return nil, &Error{Op: "Decrypt", Err: err}
		}
		v, ok := m.Uint64()
		if !ok || v > 0xff {
			return nil, errorf("Decrypt", "%w: block %d does not decrypt to a byte", ErrCiphertextFormat, i)
		}
		out = append(out, byte(v))
	}
	en.observer().BlocksProcessed("decrypt", len(out))
	return out, nil
}

// EncryptBlock is Engine{}.EncryptBlock.
func EncryptBlock(m Block, pub *PublicKey) (Block, error) {
	return Engine{}.EncryptBlock(m, pub)
}

// DecryptBlock is Engine{}.DecryptBlock.
func DecryptBlock(c Block, priv *PrivateKey) (Block, error) {
	return Engine{}.DecryptBlock(c, priv)
}

// Encrypt is Engine{}.Encrypt.
func Encrypt(plaintext []byte, pub *PublicKey) ([]Block, error) {
	return Engine{}.Encrypt(plaintext, pub)
}

// Decrypt is Engine{}.Decrypt.
func Decrypt(blocks []Block, priv *PrivateKey) ([]byte, error) {
	return Engine{}.Decrypt(blocks, priv)
}
