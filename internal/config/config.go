// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Log         LogConfig
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	S3          S3Config
	Sources     SourcesConfig
	Aggregation AggregationConfig
	Layout      LayoutConfig
	Cloud       CloudConfig
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	File  string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// RedisConfig holds snapshot cache configuration
type RedisConfig struct {
	Enabled     bool
	Addr        string
	Password    string
	DB          int
	SnapshotKey string
	SnapshotTTL time.Duration
}

// S3Config holds the S3 source configuration
type S3Config struct {
	Enabled bool
	Region  string
	Bucket  string
	Prefix  string
}

// SourcesConfig holds local source configuration
type SourcesConfig struct {
	Files []string
}

// AggregationConfig holds scoring and merge configuration
type AggregationConfig struct {
	RankCeiling float64
	RankFloor   float64
	ViewsWeight float64
	TrendPolicy string
	MaxCreators int
}

// LayoutConfig holds word cloud layout configuration
type LayoutConfig struct {
	PageSize         int
	MaxAttempts      int
	MinFont          float64
	MaxFont          float64
	CharWidthFactor  float64
	LineHeightFactor float64
	Padding          float64
	Margin           float64
	CanvasWidth      float64
	CanvasHeight     float64
}

// CloudConfig holds refresh configuration
type CloudConfig struct {
	RefreshInterval time.Duration
	EventsTopic     string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "trendcloud.log"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendcloud"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Redis: RedisConfig{
			Enabled:     getEnvAsBool("REDIS_ENABLED", false),
			Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
			Password:    getEnv("REDIS_PASSWORD", ""),
			DB:          getEnvAsInt("REDIS_DB", 0),
			SnapshotKey: getEnv("REDIS_SNAPSHOT_KEY", "trendcloud:snapshot"),
			SnapshotTTL: getEnvAsDuration("REDIS_SNAPSHOT_TTL", 24*time.Hour),
		},
		S3: S3Config{
			Enabled: getEnvAsBool("S3_ENABLED", false),
			Region:  getEnv("AWS_REGION", "us-east-1"),
			Bucket:  getEnv("S3_BUCKET", ""),
			Prefix:  getEnv("S3_PREFIX", "hashtags/"),
		},
		Sources: SourcesConfig{
			Files: getEnvAsSlice("SOURCE_FILES", []string{"data/*.json"}),
		},
		Aggregation: AggregationConfig{
			RankCeiling: getEnvAsFloat("SCORE_RANK_CEILING", 100),
			RankFloor:   getEnvAsFloat("SCORE_RANK_FLOOR", 10),
			ViewsWeight: getEnvAsFloat("SCORE_VIEWS_WEIGHT", 5),
			TrendPolicy: getEnv("TREND_POLICY", "best_rank"),
			MaxCreators: getEnvAsInt("MAX_CREATORS", 10),
		},
		Layout: LayoutConfig{
			PageSize:         getEnvAsInt("LAYOUT_PAGE_SIZE", 80),
			MaxAttempts:      getEnvAsInt("LAYOUT_MAX_ATTEMPTS", 150),
			MinFont:          getEnvAsFloat("LAYOUT_MIN_FONT", 12),
			MaxFont:          getEnvAsFloat("LAYOUT_MAX_FONT", 48),
			CharWidthFactor:  getEnvAsFloat("LAYOUT_CHAR_WIDTH_FACTOR", 0.6),
			LineHeightFactor: getEnvAsFloat("LAYOUT_LINE_HEIGHT_FACTOR", 1.2),
			Padding:          getEnvAsFloat("LAYOUT_PADDING", 10),
			Margin:           getEnvAsFloat("LAYOUT_MARGIN", 4),
			CanvasWidth:      getEnvAsFloat("LAYOUT_CANVAS_WIDTH", 1000),
			CanvasHeight:     getEnvAsFloat("LAYOUT_CANVAS_HEIGHT", 600),
		},
		Cloud: CloudConfig{
			RefreshInterval: getEnvAsDuration("CLOUD_REFRESH_INTERVAL", 15*time.Minute),
			EventsTopic:     getEnv("CLOUD_EVENTS_TOPIC", "wordcloud"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Layout.PageSize <= 0 {
		return fmt.Errorf("layout page size must be positive, got %d", config.Layout.PageSize)
	}
	if config.Layout.MaxAttempts <= 0 {
		return fmt.Errorf("layout max attempts must be positive, got %d", config.Layout.MaxAttempts)
	}
	if config.Layout.MinFont <= 0 || config.Layout.MaxFont < config.Layout.MinFont {
		return fmt.Errorf("invalid font range %.1f..%.1f", config.Layout.MinFont, config.Layout.MaxFont)
	}
	if config.Layout.CanvasWidth <= 2*config.Layout.Padding || config.Layout.CanvasHeight <= 2*config.Layout.Padding {
		return fmt.Errorf("default canvas %.0fx%.0f leaves no room inside padding %.0f",
			config.Layout.CanvasWidth, config.Layout.CanvasHeight, config.Layout.Padding)
	}
	if config.Aggregation.RankFloor > config.Aggregation.RankCeiling {
		return fmt.Errorf("rank floor %.1f exceeds rank ceiling %.1f",
			config.Aggregation.RankFloor, config.Aggregation.RankCeiling)
	}
	switch config.Aggregation.TrendPolicy {
	case "best_rank", "last_write":
	default:
		return fmt.Errorf("unknown trend policy %q", config.Aggregation.TrendPolicy)
	}
	if config.S3.Enabled && config.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET must be set when S3_ENABLED is true")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
