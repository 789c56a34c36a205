package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	m, err := NewManager()
	require.NoError(t, err)
	return m
}

func TestNewManager_Defaults(t *testing.T) {
	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "medcase", cfg.Database.Database)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/", cfg.ExternalAPI.PubMed.BaseURL)
	assert.Equal(t, 3, cfg.ExternalAPI.PubMed.RateLimit)
	assert.Equal(t, 20, cfg.ExternalAPI.PubMed.SearchRetMax)
	assert.Equal(t, 15, cfg.ExternalAPI.PubMed.FetchRetMax)
	assert.Equal(t, "gemma:2b", cfg.ExternalAPI.Ollama.Model)
	assert.Equal(t, "https://libretranslate.com", cfg.ExternalAPI.Translate.BaseURL)
	assert.False(t, cfg.ExternalAPI.Translate.SecondaryEnabled)
	assert.Equal(t, 1000, cfg.Cache.MemorySize)
	assert.Empty(t, cfg.Cache.RedisURL, "Redis tier is disabled by default")
	assert.Equal(t, "postgres", cfg.QAHistory.Backend)
	assert.Equal(t, 10, cfg.Pipeline.MaxPapers)
	assert.Equal(t, 30, cfg.Pipeline.ScoreThreshold)
	assert.Equal(t, 5, cfg.Pipeline.BatchWorkers)
}

func TestValidate_Defaults(t *testing.T) {
	m := newTestManager(t)
	assert.NoError(t, m.Validate())
}

func TestValidate_EnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_SERVER_PORT", "9090")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Equal(t, 9090, m.GetConfig().Server.Port)
	assert.NoError(t, m.Validate())
}

func TestValidate_InvalidPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_SERVER_PORT", "70000")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Error(t, m.Validate())
}

func TestValidate_SecondaryEnabledWithoutKey(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_EXTERNAL_API_TRANSLATE_SECONDARY_ENABLED", "true")

	m, err := NewManager()
	require.NoError(t, err)

	err = m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key")
}

func TestValidate_InvalidPubMedRetMax(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_EXTERNAL_API_PUBMED_FETCH_RETMAX", "-1")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Error(t, m.Validate())
}

func TestValidate_InvalidQABackend(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_QA_HISTORY_BACKEND", "mongodb")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Error(t, m.Validate())
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MEDCASE_LOGGING_LEVEL", "verbose")

	m, err := NewManager()
	require.NoError(t, err)

	assert.Error(t, m.Validate())
}

func TestGetDatabaseConnectionString(t *testing.T) {
	m := newTestManager(t)

	dsn := m.GetDatabaseConnectionString()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=medcase")
	assert.Contains(t, dsn, "sslmode=disable")
}
