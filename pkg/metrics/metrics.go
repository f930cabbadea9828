// Package metrics exports prometheus collectors for key generation and
// cipher work. A Collector satisfies rsa.Observer.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cbrsa"

// Collector holds the prometheus collectors. Create it with New.
type Collector struct {
	Candidates    *prometheus.CounterVec
	Stages        *prometheus.CounterVec
	Resamples     *prometheus.CounterVec
	KeysGenerated prometheus.Counter
	KeygenSeconds prometheus.Histogram
	Blocks        *prometheus.CounterVec
}

// New creates a Collector and registers it with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Candidates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prime_candidates_total",
			Help:      "Number of prime candidates tested, by verdict",
		}, []string{"result"}),
		Stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keygen_stage_total",
			Help:      "Number of times key generation reached each stage",
		}, []string{"stage"}),
		Resamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keygen_resamples_total",
			Help:      "Number of times key generation went back to prime selection",
		}, []string{"reason"}),
		KeysGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_generated_total",
			Help:      "Number of key pairs emitted",
		}),
		KeygenSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keygen_duration_seconds",
			Help:      "Wall time of successful key generations",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Blocks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_total",
			Help:      "Number of blocks transformed, by operation",
		}, []string{"op"}),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.Candidates, c.Stages, c.Resamples, c.KeysGenerated, c.KeygenSeconds, c.Blocks} {
		if err := reg.Register(col); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				return nil, fmt.Errorf("metrics: collector already registered: %w", err)
			}
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return c, nil
}

// CandidateTested counts one primality verdict.
func (c *Collector) CandidateTested(prime bool) {
	result := "composite"
	if prime {
		result = "prime"
	}
	c.Candidates.WithLabelValues(result).Inc()
}

// StageReached counts a key generation state transition.
func (c *Collector) StageReached(stage string) {
	c.Stages.WithLabelValues(stage).Inc()
}

// Resampled counts a return to prime selection.
func (c *Collector) Resampled(reason string) {
	c.Resamples.WithLabelValues(reason).Inc()
}

// KeyGenerated records a completed key generation.
func (c *Collector) KeyGenerated(elapsed time.Duration) {
	c.KeysGenerated.Inc()
	c.KeygenSeconds.Observe(elapsed.Seconds())
}

// BlocksProcessed counts transformed blocks for op ("encrypt" or "decrypt").
func (c *Collector) BlocksProcessed(op string, n int) {
	c.Blocks.WithLabelValues(op).Add(float64(n))
}

// WriteTextfile writes every metric gathered by g to path in the prometheus
// text format, for pickup by a node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
