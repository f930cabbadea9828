package rsa

import "time"

// Observer receives progress events from key generation and the cipher
// engine. Implementations must be safe for concurrent use: the two primes of
// a RandomPrimes source are searched in parallel.
type Observer interface {
	CandidateTested(prime bool)
	StageReached(stage string)
	Resampled(reason string)
	KeyGenerated(elapsed time.Duration)
	BlocksProcessed(op string, n int)
}

type nopObserver struct{}

func (nopObserver) CandidateTested(bool)        {}
func (nopObserver) StageReached(string)         {}
func (nopObserver) Resampled(string)            {}
func (nopObserver) KeyGenerated(time.Duration)  {}
func (nopObserver) BlocksProcessed(string, int) {}
