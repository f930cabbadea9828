// Package numtheory implements the number theory behind RSA key generation:
// probabilistic primality testing, random prime search, the group order of
// n = p*q and derivation of an exponent pair.
//
// Primality verdicts are probabilistic. A value accepted by IsProbablyPrime
// with k rounds is composite with probability at most 4^-k; values below 2^64
// are tested against a fixed base set, which is exact.
//
// Prime search is CPU bound and, in principle, unbounded. Generator bounds the
// number of candidates it draws and honors context cancellation between
// candidates.
package numtheory
