package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbase/cb-rsa-go/pkg/metrics"
)

func TestCollectorCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)

	c.CandidateTested(false)
	c.CandidateTested(false)
	c.CandidateTested(true)
	c.StageReached("keys_emitted")
	c.Resampled("degenerate_modulus")
	c.KeyGenerated(20 * time.Millisecond)
	c.BlocksProcessed("encrypt", 5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Candidates.WithLabelValues("composite")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Candidates.WithLabelValues("prime")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Stages.WithLabelValues("keys_emitted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Resamples.WithLabelValues("degenerate_modulus")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.KeysGenerated))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.Blocks.WithLabelValues("encrypt")))
}

func TestDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)
	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestNilRegisterer(t *testing.T) {
	c, err := metrics.New(nil)
	require.NoError(t, err)
	c.CandidateTested(true)
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)
	c.BlocksProcessed("decrypt", 3)

	path := filepath.Join(t.TempDir(), "cbrsa.prom")
	require.NoError(t, metrics.WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cbrsa_blocks_total{op="decrypt"} 3`)
}
