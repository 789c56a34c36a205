package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	ExternalAPI ExternalAPIConfig `mapstructure:"external_api"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	QAHistory   QAHistoryConfig   `mapstructure:"qa_history"`
	Pipeline    PipelineConfig    `mapstructure:"pipeline"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	TLSEnabled   bool          `mapstructure:"tls_enabled"`
	CertFile     string        `mapstructure:"cert_file"`
	KeyFile      string        `mapstructure:"key_file"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// ExternalAPIConfig represents external collaborator configuration
type ExternalAPIConfig struct {
	PubMed    PubMedConfig    `mapstructure:"pubmed"`
	Ollama    OllamaConfig    `mapstructure:"ollama"`
	Translate TranslateConfig `mapstructure:"translate"`
}

// PubMedConfig represents the literature-search collaborator configuration
type PubMedConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	APIKey       string        `mapstructure:"api_key"`
	Email        string        `mapstructure:"email"` // Required by NCBI for large-scale queries
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    int           `mapstructure:"rate_limit"`
	SearchRetMax int           `mapstructure:"search_retmax"` // raw PMIDs requested from esearch
	FetchRetMax  int           `mapstructure:"fetch_retmax"`  // full records fetched via efetch
}

// OllamaConfig represents the summarization/completion collaborator configuration
type OllamaConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	SummaryTimeout    time.Duration `mapstructure:"summary_timeout"`
	CompletionTimeout time.Duration `mapstructure:"completion_timeout"`
}

// TranslateConfig represents the machine-translation collaborator configuration
type TranslateConfig struct {
	BaseURL          string        `mapstructure:"base_url"`
	Timeout          time.Duration `mapstructure:"timeout"`
	SecondaryURL     string        `mapstructure:"secondary_url"`
	SecondaryAPIKey  string        `mapstructure:"secondary_api_key"`
	SecondaryEnabled bool          `mapstructure:"secondary_enabled"`
}

// CacheConfig represents translation cache configuration
type CacheConfig struct {
	MemorySize  int           `mapstructure:"memory_size"`
	RedisURL    string        `mapstructure:"redis_url"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// QAHistoryConfig selects the backend for the append-only Q&A log.
type QAHistoryConfig struct {
	Backend    string `mapstructure:"backend"` // "postgres" or "sqlite"
	SQLitePath string `mapstructure:"sqlite_path"`
}

// PipelineConfig represents enrichment pipeline tuning knobs
type PipelineConfig struct {
	MaxPapers      int `mapstructure:"max_papers"`      // cap on retained literature references
	ScoreThreshold int `mapstructure:"score_threshold"` // minimum relevance score for retention
	BatchWorkers   int `mapstructure:"batch_workers"`   // concurrent misses in batch translation
}
