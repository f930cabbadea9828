// Package rsa implements textbook (unpadded) RSA on top of pkg/bignum and
// pkg/numtheory.
//
// SECURITY WARNING: this is NOT a production encryption scheme. There is no
// padding, every plaintext byte is encrypted as its own block, and equal bytes
// encrypt to equal blocks. Use crypto/rsa with OAEP for real data.
//
// # Key generation
//
// GenerateKeys walks a fixed state machine:
//
//	AwaitPrimes → PrimesValidated → ModulusComputed → OrderComputed → ExponentsDerived → KeysEmitted
//
// A prime pair that fails validation (not prime, p == q, no usable exponent)
// sends a random source back to AwaitPrimes for a fresh pair, a bounded number
// of times. Operator-supplied primes (FixedPrimes) fail immediately so the
// caller can ask again. Either both keys are returned or neither is.
//
//	pair, err := rsa.GenerateKeys(ctx, rsa.RandomPrimes{Bits: 2048})
//	blocks, err := rsa.Encrypt([]byte("HELLO"), pair.Public)
//	plain, err := rsa.Decrypt(blocks, pair.Private)
//
// # Key text format
//
// Keys serialize as "(<n>,<exponent>)" in decimal, the public key holding e
// and the private key holding d.
//
// # Ciphertext format
//
// Ciphertext is the concatenation of fixed-width big-endian unsigned integers,
// one per plaintext byte, without a header. The width is BlockWidth(n): eight
// bytes for every modulus below 2^64 and the byte length of n beyond that.
//
// # Errors
//
// Failures carry one of the sentinel errors (ErrInvalidPrime,
// ErrDegenerateModulus, ErrNoModularInverse, ErrKeyFormat, ErrBlockOverflow,
// ...) and can be classified with errors.Is. Key generation failures are
// wrapped in *Error, which records the state machine stage.
package rsa
