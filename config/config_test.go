package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/bramble/pkg/normalizers"
	"github.com/Ramsey-B/bramble/pkg/rules"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "address_digits", cfg.ZipPolicy)
	assert.Equal(t, normalizers.ZipPolicyAddressDigits, cfg.Zip())
	assert.Equal(t, 3, cfg.TrigramSize)
	assert.Equal(t, "trigram", cfg.SimilarityAlgorithm)
	assert.Equal(t, 100, cfg.ReviewLimit)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, 0, cfg.MaxBlockSize)
	assert.False(t, cfg.AnySinkEnabled())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)

	thresholds, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, rules.DefaultThresholds(), thresholds)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("ZIP_POLICY", "raw_suffix")
	t.Setenv("TRIGRAM_SIZE", "2")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("SINK_GRAPH_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("KAFKA_BATCH_TIMEOUT_MS", "250")
	t.Setenv("DB_CONN_MAX_LIFETIME", "1m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, normalizers.ZipPolicyRawSuffix, cfg.Zip())
	assert.Equal(t, 2, cfg.Similarity().NGramSize)
	assert.Equal(t, 8, cfg.Pipeline().Workers)
	assert.True(t, cfg.AnySinkEnabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Producer().Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Producer().BatchTimeout)
	assert.Equal(t, time.Minute, cfg.Database().ConnMaxLifetime)
	assert.Equal(t, "bolt://localhost:7687", cfg.Graph().URI())
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("REVIEW_LIMIT=25\nSIMILARITY_ALGORITHM=jaro_winkler\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("REVIEW_LIMIT")
		os.Unsetenv("SIMILARITY_ALGORITHM")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.ReviewLimit)
	assert.Equal(t, "jaro_winkler", cfg.Similarity().Algorithm)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zip policy", "ZIP_POLICY", "postcode"},
		{"algorithm", "SIMILARITY_ALGORITHM", "cosine"},
		{"review limit above cap", "REVIEW_LIMIT", "501"},
		{"zero workers", "WORKER_COUNT", "0"},
		{"trigram size", "TRIGRAM_SIZE", "1"},
		{"compression", "KAFKA_COMPRESSION", "brotli"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestThresholds_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rule_02:\n  fn: 0.8\n"), 0o600))

	cfg := &Config{RulesFile: path}
	thresholds, err := cfg.Thresholds()
	require.NoError(t, err)
	assert.Equal(t, 0.8, thresholds.Rule02.FN)

	cfg.RulesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Thresholds()
	assert.Error(t, err)
}
