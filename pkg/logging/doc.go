// Package logging provides the logging facade used by the RSA core.
//
// Logger wraps the context-aware subset of log/slog. Library code never
// writes through slog.Default() directly: key generation and the cipher
// engine receive a Logger through their options and default to Discard().
//
//	logger := logging.New(slog.New(slog.NewTextHandler(os.Stderr, nil)))
//	keys, err := rsa.GenerateKeys(ctx, source, rsa.WithLogger(logger))
//
// # Redaction
//
// Private exponents, primes and group orders must never reach a log line.
// Use Redacted to record that a value was deliberately left out:
//
//	logger.Debug(ctx, "exponents derived", "e_bits", e.BitLen(), logging.Redacted("d"))
//	// d="[redacted]"
package logging
