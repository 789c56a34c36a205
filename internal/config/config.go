// Package config loads application configuration from file,
// environment, and defaults using Viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/medcase-assist-server/internal/domain"
)

// Manager loads and validates application configuration.
type Manager struct {
	config *domain.Config
}

// NewManager creates a configuration manager and loads configuration
// from file, environment variables (MEDCASE_ prefix), and defaults.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/medcase-assist-server/")

	viper.SetEnvPrefix("MEDCASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// The config file is optional; defaults and environment variables
	// are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

func (m *Manager) setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.tls_enabled", false)

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.database", "medcase")
	viper.SetDefault("database.username", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", "5m")
	viper.SetDefault("database.migrations_path", "migrations")

	// Literature search collaborator
	viper.SetDefault("external_api.pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/")
	viper.SetDefault("external_api.pubmed.timeout", "15s")
	viper.SetDefault("external_api.pubmed.rate_limit", 3)
	viper.SetDefault("external_api.pubmed.search_retmax", 20)
	viper.SetDefault("external_api.pubmed.fetch_retmax", 15)

	// Summarization collaborator
	viper.SetDefault("external_api.ollama.base_url", "http://localhost:11434")
	viper.SetDefault("external_api.ollama.model", "gemma:2b")
	viper.SetDefault("external_api.ollama.summary_timeout", "30s")
	viper.SetDefault("external_api.ollama.completion_timeout", "60s")

	// Machine-translation collaborator
	viper.SetDefault("external_api.translate.base_url", "https://libretranslate.com")
	viper.SetDefault("external_api.translate.timeout", "5s")
	viper.SetDefault("external_api.translate.secondary_enabled", false)

	// Translation cache defaults
	viper.SetDefault("cache.memory_size", 1000)
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.redis_ttl", "24h")
	viper.SetDefault("cache.max_retries", 3)
	viper.SetDefault("cache.pool_size", 10)
	viper.SetDefault("cache.pool_timeout", "4s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// Q&A history defaults
	viper.SetDefault("qa_history.backend", "postgres")
	viper.SetDefault("qa_history.sqlite_path", "qa_history.db")

	// Pipeline tuning defaults
	viper.SetDefault("pipeline.max_papers", 10)
	viper.SetDefault("pipeline.score_threshold", 30)
	viper.SetDefault("pipeline.batch_workers", 5)
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetDatabaseConfig returns database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetExternalAPIConfig returns external collaborator configuration.
func (m *Manager) GetExternalAPIConfig() *domain.ExternalAPIConfig {
	return &m.config.ExternalAPI
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the loaded configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if config.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}

	if config.ExternalAPI.PubMed.BaseURL == "" {
		return fmt.Errorf("PubMed base URL is required")
	}
	if config.ExternalAPI.PubMed.SearchRetMax <= 0 {
		return fmt.Errorf("PubMed search_retmax must be positive: %d", config.ExternalAPI.PubMed.SearchRetMax)
	}
	if config.ExternalAPI.PubMed.FetchRetMax <= 0 {
		return fmt.Errorf("PubMed fetch_retmax must be positive: %d", config.ExternalAPI.PubMed.FetchRetMax)
	}
	if config.ExternalAPI.Ollama.BaseURL == "" {
		return fmt.Errorf("Ollama base URL is required")
	}
	if config.ExternalAPI.Translate.BaseURL == "" {
		return fmt.Errorf("translation base URL is required")
	}
	if config.ExternalAPI.Translate.SecondaryEnabled && config.ExternalAPI.Translate.SecondaryAPIKey == "" {
		return fmt.Errorf("secondary translation is enabled but no API key is configured")
	}

	if config.Cache.MemorySize <= 0 {
		return fmt.Errorf("cache memory size must be positive: %d", config.Cache.MemorySize)
	}

	switch config.QAHistory.Backend {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("invalid qa_history backend: %s", config.QAHistory.Backend)
	}

	if config.Pipeline.MaxPapers <= 0 {
		return fmt.Errorf("pipeline max_papers must be positive: %d", config.Pipeline.MaxPapers)
	}
	if config.Pipeline.ScoreThreshold < 0 {
		return fmt.Errorf("pipeline score_threshold must be non-negative: %d", config.Pipeline.ScoreThreshold)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string.
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the Redis connection string; empty
// means the Redis cache tier is disabled.
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}

// IsDevelopment returns true if running in development mode.
func (m *Manager) IsDevelopment() bool {
	env := strings.ToLower(viper.GetString("environment"))
	return env == "development" || env == "dev" || env == ""
}
