package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okanelab/receipt-sync-backend/internal/domain/matcher"
)

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
freee:
  access_token: tok
  company_id: 42
receipts:
  dir: /var/receipts
  lookback_days: 14
matching:
  amount_tolerance: 0.1
  date_tolerance_days: 5
  minimum_score: 0.5
storage:
  database_path: test.db
api:
  port: 9090
observability:
  logging:
    level: debug
    format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "tok", cfg.Freee.AccessToken)
	assert.Equal(t, int64(42), cfg.Freee.CompanyID)
	assert.Equal(t, "/var/receipts", cfg.Receipts.Dir)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("FREEE_ACCESS_TOKEN", "from-env")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("freee:\n  access_token: ${FREEE_ACCESS_TOKEN}\n"), 0o644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Freee.AccessToken)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FREEE_ACCESS_TOKEN", "test-token")
	t.Setenv("FREEE_COMPANY_ID", "7")
	t.Setenv("RECEIPT_DB_PATH", "env.db")

	cfg := LoadFromEnv()

	assert.Equal(t, "test-token", cfg.Freee.AccessToken)
	assert.Equal(t, int64(7), cfg.Freee.CompanyID)
	assert.Equal(t, "env.db", cfg.Storage.DatabasePath)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("RECEIPT_DB_PATH")
	os.Unsetenv("LOG_LEVEL")

	cfg := LoadFromEnv()

	assert.Equal(t, "receipt_sync.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadOrEnvWithPath_FallbackToEnv(t *testing.T) {
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.NotNil(t, cfg)
	assert.Equal(t, "receipt_sync.db", cfg.Storage.DatabasePath)
}

func TestMatchingConfig_Criteria_EmptyUsesDefaults(t *testing.T) {
	cfg := MatchingConfig{}

	assert.Equal(t, matcher.DefaultCriteria(), cfg.Criteria())
}

func TestMatchingConfig_Criteria_FullReplace(t *testing.T) {
	// A populated section replaces the defaults wholesale; unspecified
	// fields stay at their zero value rather than inheriting defaults.
	cfg := MatchingConfig{AmountTolerance: 0.1}

	criteria := cfg.Criteria()

	assert.Equal(t, 0.1, criteria.AmountTolerance)
	assert.Equal(t, 0, criteria.DateTolerance)
	assert.Equal(t, 0.0, criteria.MinimumScore)
}
