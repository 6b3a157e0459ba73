package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the service. It is immutable after
// Load; every component receives the section it needs by value or pointer
// and never mutates it.
type Config struct {
	Environment string

	Database DatabaseConfig
	Cache    CacheConfig
	Queue    QueueConfig
	Storage  StorageConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // minutes
	MaxConnIdleTime int // minutes
	LogLevel        string
}

// CacheConfig holds Redis connection settings
type CacheConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	DialTimeout  int // seconds
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	PoolSize     int
	MinIdleConns int
	SummaryTTL   int // minutes
}

// QueueConfig holds Asynq worker settings
type QueueConfig struct {
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int
	Concurrency   int
	MaxRetries    int
}

// StorageConfig holds local file storage settings
type StorageConfig struct {
	BasePath    string
	MaxFileSize int64 // bytes
}

// IngestConfig holds the default parsing options applied to every
// ingestion run unless the caller overrides them per file.
type IngestConfig struct {
	Delimiter      string
	QuoteChar      string
	EscapeChar     string // empty means no escape character
	HasHeaders     bool
	TrimWhitespace bool
	Encoding       string
	BatchSize      int
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found, using environment variables only")
		}
	}

	viper.SetDefault("ENV", "development")

	// Database defaults
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_NAME", "csvinsight")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNECTIONS", 20)
	viper.SetDefault("DB_MIN_CONNECTIONS", 2)
	viper.SetDefault("DB_MAX_CONN_LIFETIME", 60)
	viper.SetDefault("DB_MAX_CONN_IDLE_TIME", 10)
	viper.SetDefault("DB_LOG_LEVEL", "silent")

	// Redis defaults
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_DIAL_TIMEOUT", 5)
	viper.SetDefault("REDIS_READ_TIMEOUT", 3)
	viper.SetDefault("REDIS_WRITE_TIMEOUT", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	viper.SetDefault("SUMMARY_CACHE_TTL_MINUTES", 60)

	// Worker defaults
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("WORKER_MAX_RETRIES", 3)

	// Storage defaults
	viper.SetDefault("STORAGE_BASE_PATH", "/tmp/csvinsight")
	viper.SetDefault("MAX_FILE_SIZE_MB", 100)

	// Ingestion defaults
	viper.SetDefault("INGEST_DELIMITER", ",")
	viper.SetDefault("INGEST_QUOTE_CHAR", `"`)
	viper.SetDefault("INGEST_ESCAPE_CHAR", "")
	viper.SetDefault("INGEST_HAS_HEADERS", true)
	viper.SetDefault("INGEST_TRIM_WHITESPACE", true)
	viper.SetDefault("INGEST_ENCODING", "utf-8")
	viper.SetDefault("INGEST_BATCH_SIZE", 1000)

	viper.AutomaticEnv()

	config := &Config{
		Environment: viper.GetString("ENV"),
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			Database:        viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConnections:  viper.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  viper.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: viper.GetInt("DB_MAX_CONN_LIFETIME"),
			MaxConnIdleTime: viper.GetInt("DB_MAX_CONN_IDLE_TIME"),
			LogLevel:        viper.GetString("DB_LOG_LEVEL"),
		},
		Cache: CacheConfig{
			Host:         viper.GetString("REDIS_HOST"),
			Port:         viper.GetInt("REDIS_PORT"),
			Password:     viper.GetString("REDIS_PASSWORD"),
			DB:           viper.GetInt("REDIS_DB"),
			DialTimeout:  viper.GetInt("REDIS_DIAL_TIMEOUT"),
			ReadTimeout:  viper.GetInt("REDIS_READ_TIMEOUT"),
			WriteTimeout: viper.GetInt("REDIS_WRITE_TIMEOUT"),
			PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
			MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
			SummaryTTL:   viper.GetInt("SUMMARY_CACHE_TTL_MINUTES"),
		},
		Queue: QueueConfig{
			RedisHost:     viper.GetString("REDIS_HOST"),
			RedisPort:     viper.GetInt("REDIS_PORT"),
			RedisPassword: viper.GetString("REDIS_PASSWORD"),
			RedisDB:       viper.GetInt("REDIS_DB"),
			Concurrency:   viper.GetInt("WORKER_CONCURRENCY"),
			MaxRetries:    viper.GetInt("WORKER_MAX_RETRIES"),
		},
		Storage: StorageConfig{
			BasePath:    viper.GetString("STORAGE_BASE_PATH"),
			MaxFileSize: viper.GetInt64("MAX_FILE_SIZE_MB") * 1024 * 1024,
		},
		Ingest: IngestConfig{
			Delimiter:      viper.GetString("INGEST_DELIMITER"),
			QuoteChar:      viper.GetString("INGEST_QUOTE_CHAR"),
			EscapeChar:     viper.GetString("INGEST_ESCAPE_CHAR"),
			HasHeaders:     viper.GetBool("INGEST_HAS_HEADERS"),
			TrimWhitespace: viper.GetBool("INGEST_TRIM_WHITESPACE"),
			Encoding:       viper.GetString("INGEST_ENCODING"),
			BatchSize:      viper.GetInt("INGEST_BATCH_SIZE"),
		},
	}

	if config.Ingest.BatchSize < 1 {
		return nil, fmt.Errorf("INGEST_BATCH_SIZE must be >= 1")
	}
	if len(config.Ingest.Delimiter) != 1 {
		return nil, fmt.Errorf("INGEST_DELIMITER must be a single character")
	}

	return config, nil
}

// GetDSN constructs the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// GetAddr constructs the Redis address
func (c *CacheConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetRedisAddr constructs the Redis address for the queue
func (c *QueueConfig) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
