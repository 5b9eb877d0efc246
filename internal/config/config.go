// Package config loads the YAML configuration selected by environment name.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/voicenote/internal/domain"
)

// Store drivers.
const (
	DriverQdrant = "qdrant"
	DriverRedis  = "redis"
)

// ID strategies.
const (
	IDStrategyCount = "count"
	IDStrategyRedis = "redis"
)

// Config holds the voicenote configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Qdrant   QdrantConfig   `yaml:"qdrant"`
	Redis    RedisConfig    `yaml:"redis"`
	Provider ProviderConfig `yaml:"provider"`
	Notes    NotesConfig    `yaml:"notes"`
	Session  SessionConfig  `yaml:"session"`
	Cache    CacheConfig    `yaml:"embedding_cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig selects the vector store.
type StoreConfig struct {
	Driver           string `yaml:"driver"` // qdrant, redis (default: qdrant)
	Collection       string `yaml:"collection"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// QdrantConfig holds Qdrant gRPC connection settings.
type QdrantConfig struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
	UseTLS bool   `yaml:"use_tls"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
}

// ProviderConfig holds speech-to-text and embedding provider settings.
type ProviderConfig struct {
	BaseURL            string `yaml:"base_url"`
	EnvFile            string `yaml:"env_file"`
	EnvVar             string `yaml:"env_var"`
	TranscriptionModel string `yaml:"transcription_model"`
	EmbeddingModel     string `yaml:"embedding_model"`
	Dimensions         int    `yaml:"dimensions"`
	AudioFilename      string `yaml:"audio_filename"`
}

// NotesConfig holds note listing and id assignment settings.
type NotesConfig struct {
	BrowseLimit int    `yaml:"browse_limit"`
	SearchLimit int    `yaml:"search_limit"`
	IDStrategy  string `yaml:"id_strategy"` // count, redis (default: count, redis with the redis driver)
	IDKey       string `yaml:"id_key"`
}

// SessionConfig holds session registry settings.
type SessionConfig struct {
	IdleTTLMinutes int `yaml:"idle_ttl_minutes"` // 0 disables eviction
}

// CacheConfig holds the Redis-backed embedding cache settings.
type CacheConfig struct {
	Enabled  bool `yaml:"enabled"`
	TTLHours int  `yaml:"ttl_hours"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	vec := domain.DefaultVectorConfig()

	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 30
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverQdrant
	}
	if c.Store.Collection == "" {
		c.Store.Collection = vec.Collection
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Qdrant.Host == "" {
		c.Qdrant.Host = "localhost"
	}
	if c.Qdrant.Port <= 0 {
		c.Qdrant.Port = 6334
	}
	if c.Provider.EnvFile == "" {
		c.Provider.EnvFile = ".env"
	}
	if c.Provider.EnvVar == "" {
		c.Provider.EnvVar = "OPENAI_API_KEY"
	}
	if c.Provider.TranscriptionModel == "" {
		c.Provider.TranscriptionModel = vec.TranscriptionModel
	}
	if c.Provider.EmbeddingModel == "" {
		c.Provider.EmbeddingModel = vec.EmbeddingModel
	}
	if c.Provider.Dimensions <= 0 {
		c.Provider.Dimensions = vec.Dimensions
	}
	if c.Provider.AudioFilename == "" {
		c.Provider.AudioFilename = vec.AudioFilename
	}
	if c.Notes.BrowseLimit <= 0 {
		c.Notes.BrowseLimit = vec.BrowseLimit
	}
	if c.Notes.SearchLimit <= 0 {
		c.Notes.SearchLimit = vec.SearchLimit
	}
	if c.Notes.IDStrategy == "" {
		c.Notes.IDStrategy = IDStrategyCount
		if c.Store.Driver == DriverRedis {
			c.Notes.IDStrategy = IDStrategyRedis
		}
	}
	if c.Notes.IDKey == "" {
		c.Notes.IDKey = domain.KeyPrefix + c.Store.Collection + ":next_id"
	}
	if c.Session.IdleTTLMinutes < 0 {
		c.Session.IdleTTLMinutes = 0
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 168
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Store.Driver {
	case DriverQdrant:
		if c.Qdrant.Port > 65535 {
			return fmt.Errorf("qdrant.port must be between 1 and 65535, got %d", c.Qdrant.Port)
		}
	case DriverRedis:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverQdrant, DriverRedis, c.Store.Driver)
	}
	switch c.Notes.IDStrategy {
	case IDStrategyCount, IDStrategyRedis:
	default:
		return fmt.Errorf("notes.id_strategy must be %q or %q, got %q",
			IDStrategyCount, IDStrategyRedis, c.Notes.IDStrategy)
	}
	if c.NeedsRedis() && len(c.Redis.Addrs) == 0 {
		return errors.New("redis.addrs is required for the redis driver, id strategy or embedding cache")
	}
	return nil
}

// NeedsRedis reports whether a Redis connection must be opened.
func (c *Config) NeedsRedis() bool {
	return c.Store.Driver == DriverRedis || c.Notes.IDStrategy == IDStrategyRedis || c.Cache.Enabled
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// envVarRegex matches ${VAR} and ${VAR:-default}.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
