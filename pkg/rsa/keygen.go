package rsa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coinbase/cb-rsa-go/internal/retry"
	"github.com/coinbase/cb-rsa-go/pkg/bignum"
	"github.com/coinbase/cb-rsa-go/pkg/logging"
	"github.com/coinbase/cb-rsa-go/pkg/numtheory"
)

// MinModulusBits is the smallest modulus size RandomPrimes accepts.
const MinModulusBits = 4

// DefaultMaxResamples bounds how often GenerateKeys goes back to prime
// selection for a retryable source.
const DefaultMaxResamples = 32

// Stage is a key generation state.
type Stage int

const (
	StageAwaitPrimes Stage = iota + 1
	StagePrimesValidated
	StageModulusComputed
	StageOrderComputed
	StageExponentsDerived
	StageKeysEmitted
)

func (s Stage) String() string {
	switch s {
	case StageAwaitPrimes:
		return "await_primes"
	case StagePrimesValidated:
		return "primes_validated"
	case StageModulusComputed:
		return "modulus_computed"
	case StageOrderComputed:
		return "order_computed"
	case StageExponentsDerived:
		return "exponents_derived"
	case StageKeysEmitted:
		return "keys_emitted"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// GroupOrder selects the modulus the exponents are inverted against.
type GroupOrder int

const (
	// Carmichael uses λ(n) = lcm(p-1, q-1).
	Carmichael GroupOrder = iota
	// Euler uses φ(n) = (p-1)(q-1).
	Euler
)

func (o GroupOrder) String() string {
	switch o {
	case Carmichael:
		return "carmichael"
	case Euler:
		return "euler"
	default:
		return fmt.Sprintf("GroupOrder(%d)", int(o))
	}
}

// ParseGroupOrder accepts "carmichael" (or "lambda") and "euler" (or "phi").
func ParseGroupOrder(s string) (GroupOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "carmichael", "lambda", "":
		return Carmichael, nil
	case "euler", "phi", "totient":
		return Euler, nil
	default:
		return 0, fmt.Errorf("rsa: unknown group order %q", s)
	}
}

func (o GroupOrder) compute(p, q bignum.Int) (bignum.Int, error) {
	if o == Euler {
		return numtheory.Totient(p, q)
	}
	return numtheory.Carmichael(p, q)
}

// SearchConfig is handed to a PrimeSource by GenerateKeys.
type SearchConfig struct {
	Rounds      int
	OnCandidate func(prime bool)
}

// PrimeSource supplies the prime pair for one key generation attempt.
type PrimeSource interface {
	Primes(ctx context.Context, cfg SearchConfig) (p, q bignum.Int, err error)

	// Retryable reports whether a rejected pair may be replaced by drawing
	// again from the same source.
	Retryable() bool
}

// RandomPrimes draws p and q at random for a modulus of about Bits bits: p
// gets (Bits+1)/2 bits and q gets Bits/2.
//
// With a nil Rand the two primes are searched concurrently from
// crypto/rand.Reader. A non-nil Rand is read sequentially (p first) so a
// deterministic reader yields a reproducible pair.
type RandomPrimes struct {
	Bits        int
	Rand        io.Reader
	MaxAttempts int
}

// Primes implements PrimeSource.
func (s RandomPrimes) Primes(ctx context.Context, cfg SearchConfig) (bignum.Int, bignum.Int, error) {
	if s.Bits < MinModulusBits {
		return bignum.Int{}, bignum.Int{}, fmt.Errorf("%w: modulus of %d bits, need at least %d", ErrInvalidSize, s.Bits, MinModulusBits)
	}
	gen := numtheory.Generator{
		Rand:        s.Rand,
		Rounds:      cfg.Rounds,
		MaxAttempts: s.MaxAttempts,
		OnCandidate: cfg.OnCandidate,
	}
	pBits, qBits := (s.Bits+1)/2, s.Bits/2

	if s.Rand != nil {
		p, err := gen.Prime(ctx, pBits)
		if err != nil {
			return bignum.Int{}, bignum.Int{}, err
		}
		q, err := gen.Prime(ctx, qBits)
		if err != nil {
			return bignum.Int{}, bignum.Int{}, err
		}
		return p, q, nil
	}

	var p, q bignum.Int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = gen.Prime(gctx, pBits)
		return err
	})
	g.Go(func() error {
		var err error
		q, err = gen.Prime(gctx, qBits)
		return err
	})
	if err := g.Wait(); err != nil {
		return bignum.Int{}, bignum.Int{}, err
	}
	return p, q, nil
}

// Retryable implements PrimeSource.
func (RandomPrimes) Retryable() bool { return true }

// DigitPrimes draws two random primes with exactly Digits decimal digits each.
type DigitPrimes struct {
	Digits      int
	Rand        io.Reader
	MaxAttempts int
}

// Primes implements PrimeSource.
func (s DigitPrimes) Primes(ctx context.Context, cfg SearchConfig) (bignum.Int, bignum.Int, error) {
	gen := numtheory.Generator{
		Rand:        s.Rand,
		Rounds:      cfg.Rounds,
		MaxAttempts: s.MaxAttempts,
		OnCandidate: cfg.OnCandidate,
	}
	p, err := gen.PrimeDigits(ctx, s.Digits)
	if err != nil {
		return bignum.Int{}, bignum.Int{}, err
	}
	q, err := gen.PrimeDigits(ctx, s.Digits)
	if err != nil {
		return bignum.Int{}, bignum.Int{}, err
	}
	return p, q, nil
}

// Retryable implements PrimeSource.
func (DigitPrimes) Retryable() bool { return true }

// FixedPrimes supplies an operator-chosen pair. A rejected pair is reported
// to the caller instead of being replaced.
type FixedPrimes struct {
	P, Q bignum.Int
}

// Primes implements PrimeSource.
func (s FixedPrimes) Primes(context.Context, SearchConfig) (bignum.Int, bignum.Int, error) {
	return s.P, s.Q, nil
}

// Retryable implements PrimeSource.
func (FixedPrimes) Retryable() bool { return false }

// Option configures GenerateKeys.
type Option func(*keygenOptions)

type keygenOptions struct {
	logger       logging.Logger
	observer     Observer
	order        GroupOrder
	exponents    numtheory.ExponentStrategy
	maxResamples int
	rounds       int
}

// WithLogger sets the logger for state transitions. Secrets are never logged.
func WithLogger(l logging.Logger) Option {
	return func(o *keygenOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the progress observer.
func WithObserver(obs Observer) Option {
	return func(o *keygenOptions) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithOrder selects λ (the default) or φ as the exponent group order.
func WithOrder(order GroupOrder) Option {
	return func(o *keygenOptions) { o.order = order }
}

// WithExponents sets the exponent strategy. The default is
// numtheory.ConventionalPublic.
func WithExponents(s numtheory.ExponentStrategy) Option {
	return func(o *keygenOptions) { o.exponents = s }
}

// WithMaxResamples bounds the returns to prime selection. Zero disables
// re-sampling.
func WithMaxResamples(n int) Option {
	return func(o *keygenOptions) {
		if n >= 0 {
			o.maxResamples = n
		}
	}
}

// WithRounds sets the Miller–Rabin round count.
func WithRounds(n int) Option {
	return func(o *keygenOptions) {
		if n > 0 {
			o.rounds = n
		}
	}
}

// GenerateKeys runs the key generation state machine over primes from
// source. It returns both keys or an *Error naming the stage that failed.
func GenerateKeys(ctx context.Context, source PrimeSource, opts ...Option) (*KeyPair, error) {
	if source == nil {
		return nil, &Error{Op: "GenerateKeys", Stage: StageAwaitPrimes, Err: errors.New("nil prime source")}
	}
	o := keygenOptions{
		logger:       logging.Discard(),
		observer:     nopObserver{},
		order:        Carmichael,
		maxResamples: DefaultMaxResamples,
		rounds:       numtheory.DefaultRounds,
	}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	var (
		pair     *KeyPair
		failedAt Stage
		lastErr  error
		attempts int
	)
	attempt := func(ctx context.Context) error {
		if attempts > 0 {
			reason := resampleReason(lastErr)
			o.logger.Warn(ctx, "rsa: resampling primes", "attempt", attempts+1, "reason", reason)
			o.observer.Resampled(reason)
		}
		attempts++

		kp, stage, err := o.generate(ctx, source)
		if err == nil {
			pair = kp
			return nil
		}
		failedAt, lastErr = stage, err
		if source.Retryable() && resamplable(err) {
			return retry.RetryableError(err)
		}
		return err
	}

	err := retry.Constant(0).WithMaxRetries(uint64(o.maxResamples)).Do(ctx, attempt)
	if err != nil {
		if failedAt == 0 {
			failedAt = StageAwaitPrimes
		}
		o.logger.Error(ctx, "rsa: key generation failed", "stage", failedAt.String(), "attempts", attempts, "error", err)
		return nil, &Error{Op: "GenerateKeys", Stage: failedAt, Err: err}
	}

	elapsed := time.Since(start)
	o.observer.KeyGenerated(elapsed)
	o.logger.Info(ctx, "rsa: key pair generated",
		"modulus_bits", pair.Public.N().BitLen(),
		"attempts", attempts,
		"elapsed", elapsed,
	)
	return pair, nil
}

// generate performs one pass of the state machine. On failure it returns the
// stage whose entry condition was not met.
func (o *keygenOptions) generate(ctx context.Context, source PrimeSource) (*KeyPair, Stage, error) {
	o.enter(ctx, StageAwaitPrimes)
	p, q, err := source.Primes(ctx, SearchConfig{Rounds: o.rounds, OnCandidate: o.observer.CandidateTested})
	if err != nil {
		return nil, StageAwaitPrimes, err
	}

	if err := numtheory.ValidatePair(p, q, o.rounds); err != nil {
		return nil, StagePrimesValidated, err
	}
	o.enter(ctx, StagePrimesValidated, "p_bits", p.BitLen(), "q_bits", q.BitLen(), logging.Redacted("p"), logging.Redacted("q"))

	n := p.Mul(q)
	o.enter(ctx, StageModulusComputed, "modulus_bits", n.BitLen())

	order, err := o.order.compute(p, q)
	if err != nil {
		return nil, StageOrderComputed, err
	}
	o.enter(ctx, StageOrderComputed, "order", o.order.String(), logging.Redacted("value"))

	e, d, err := numtheory.DeriveExponents(order, o.exponents)
	if err != nil {
		return nil, StageExponentsDerived, err
	}
	o.enter(ctx, StageExponentsDerived, "e", e.String(), logging.Redacted("d"))

	pub, err := NewPublicKey(n, e)
	if err != nil {
		return nil, StageKeysEmitted, err
	}
	priv, err := NewPrivateKey(n, d)
	if err != nil {
		return nil, StageKeysEmitted, err
	}
	o.enter(ctx, StageKeysEmitted)
	return &KeyPair{Public: pub, Private: priv}, 0, nil
}

func (o *keygenOptions) enter(ctx context.Context, s Stage, args ...any) {
	o.observer.StageReached(s.String())
	o.logger.Debug(ctx, "rsa: keygen stage", append([]any{"stage", s.String()}, args...)...)
}

// resamplable reports whether err is a property of the drawn pair that a
// fresh pair can fix.
func resamplable(err error) bool {
	return errors.Is(err, ErrInvalidPrime) ||
		errors.Is(err, ErrDegenerateModulus) ||
		errors.Is(err, ErrNoModularInverse) ||
		errors.Is(err, ErrInvalidExponent)
}

func resampleReason(err error) string {
	switch {
	case errors.Is(err, ErrDegenerateModulus):
		return "degenerate_modulus"
	case errors.Is(err, ErrInvalidPrime):
		return "invalid_prime"
	case errors.Is(err, ErrNoModularInverse):
		return "no_modular_inverse"
	case errors.Is(err, ErrInvalidExponent):
		return "invalid_exponent"
	default:
		return "other"
	}
}
