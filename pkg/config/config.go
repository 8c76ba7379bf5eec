package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Store        StoreConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Chat         ChatConfig
	OpenAI       OpenAIConfig
	Gemini       GeminiConfig
	Uploads      UploadsConfig
	Alerts       AlertsConfig
	CORS         CORSConfig
	RateLimit    RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	switch cfg.Store.Driver {
	case StoreDriverMemory, StoreDriverSQLite:
	case StoreDriverPostgres:
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported %s %q", EnvStoreDriver, cfg.Store.Driver)
	}
	cfg.Chat.Mode = strings.ToLower(strings.TrimSpace(cfg.Chat.Mode))
	if cfg.Chat.Mode == ChatModeLLM {
		if err := cfg.Chat.validateProvider(cfg.OpenAI, cfg.Gemini); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"WARRANTYWIZARD_APP_ENV" default:"dev"`
	Port         string        `envconfig:"WARRANTYWIZARD_APP_PORT" default:"3001"`
	Name         string        `envconfig:"WARRANTYWIZARD_APP_NAME" default:"warrantywizard-api"`
	LogLevel     string        `envconfig:"WARRANTYWIZARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool          `envconfig:"WARRANTYWIZARD_LOG_WARN_STACK" default:"false"`
	LogFormat    string        `envconfig:"WARRANTYWIZARD_LOG_FORMAT" default:"json"`
	ShutdownWait time.Duration `envconfig:"WARRANTYWIZARD_SHUTDOWN_TIMEOUT" default:"10s"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// StoreConfig selects the warranty persistence backend.
type StoreConfig struct {
	Driver   string `envconfig:"WARRANTYWIZARD_STORE_DRIVER" default:"memory"`
	SeedDemo bool   `envconfig:"WARRANTYWIZARD_STORE_SEED_DEMO" default:"true"`
}

type DBConfig struct {
	DSN        string `envconfig:"WARRANTYWIZARD_DB_DSN"`
	SQLitePath string `envconfig:"WARRANTYWIZARD_DB_SQLITE_PATH" default:"warrantywizard.db"`

	LegacyHost     string `envconfig:"WARRANTYWIZARD_DB_HOST"`
	LegacyPort     int    `envconfig:"WARRANTYWIZARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WARRANTYWIZARD_DB_USER"`
	LegacyPassword string `envconfig:"WARRANTYWIZARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"WARRANTYWIZARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"WARRANTYWIZARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WARRANTYWIZARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WARRANTYWIZARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WARRANTYWIZARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WARRANTYWIZARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WARRANTYWIZARD_REDIS_URL"`
	Address      string        `envconfig:"WARRANTYWIZARD_REDIS_ADDR"`
	Password     string        `envconfig:"WARRANTYWIZARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"WARRANTYWIZARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WARRANTYWIZARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WARRANTYWIZARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WARRANTYWIZARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WARRANTYWIZARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WARRANTYWIZARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"WARRANTYWIZARD_AUTO_MIGRATE" default:"false"`
	HTTPMetrics bool `envconfig:"WARRANTYWIZARD_HTTP_METRICS" default:"true"`
}

// ChatConfig controls how /api/ai-chat answers.
type ChatConfig struct {
	Mode        string  `envconfig:"WARRANTYWIZARD_CHAT_MODE" default:"rules"`
	Provider    string  `envconfig:"WARRANTYWIZARD_CHAT_PROVIDER" default:"openai"`
	Model       string  `envconfig:"WARRANTYWIZARD_CHAT_MODEL"`
	Temperature float32 `envconfig:"WARRANTYWIZARD_CHAT_TEMPERATURE" default:"0.7"`
	MaxTokens   int     `envconfig:"WARRANTYWIZARD_CHAT_MAX_TOKENS" default:"500"`
	HistorySize int     `envconfig:"WARRANTYWIZARD_CHAT_HISTORY_SIZE" default:"10"`

	// RetentionDays bounds how long stored turns survive the cleanup job.
	RetentionDays int `envconfig:"WARRANTYWIZARD_CHAT_RETENTION_DAYS" default:"30"`
}

func (c ChatConfig) validateProvider(openai OpenAIConfig, gemini GeminiConfig) error {
	switch strings.ToLower(c.Provider) {
	case ChatProviderOpenAI:
		if openai.APIKey == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvOpenAIAPIKey, EnvChatMode, ChatModeLLM)
		}
	case ChatProviderGemini:
		if gemini.APIKey == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvGeminiAPIKey, EnvChatMode, ChatModeLLM)
		}
	default:
		return fmt.Errorf("unsupported %s %q", EnvChatProvider, c.Provider)
	}
	return nil
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"WARRANTYWIZARD_OPENAI_API_KEY"`
	BaseURL string `envconfig:"WARRANTYWIZARD_OPENAI_BASE_URL"`
}

type GeminiConfig struct {
	APIKey string `envconfig:"WARRANTYWIZARD_GEMINI_API_KEY"`
}

type UploadsConfig struct {
	Dir         string `envconfig:"WARRANTYWIZARD_UPLOADS_DIR" default:"uploads"`
	MaxUploadMB int    `envconfig:"WARRANTYWIZARD_MAX_UPLOAD_MB" default:"10"`
}

// MaxBytes returns the upload cap in bytes.
func (u UploadsConfig) MaxBytes() int64 {
	if u.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(u.MaxUploadMB) << 20
}

type AlertsConfig struct {
	Interval time.Duration `envconfig:"WARRANTYWIZARD_ALERTS_INTERVAL" default:"24h"`
	LockTTL  time.Duration `envconfig:"WARRANTYWIZARD_ALERTS_LOCK_TTL" default:"1h"`
}

// RateLimitConfig throttles the LLM-backed and upload endpoints when Redis is configured.
type RateLimitConfig struct {
	Window       time.Duration `envconfig:"WARRANTYWIZARD_RATE_LIMIT_WINDOW" default:"1m"`
	IPLimit      int           `envconfig:"WARRANTYWIZARD_RATE_LIMIT_IP_LIMIT" default:"30"`
	SessionLimit int           `envconfig:"WARRANTYWIZARD_RATE_LIMIT_SESSION_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WARRANTYWIZARD_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
