package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/domain/moderation"
)

// Knowledge base source kinds.
const (
	SourceMemory   = "memory"
	SourceCSV      = "csv"
	SourceSheets   = "sheets"
	SourceObject   = "object"
	SourcePostgres = "postgres"
)

// Sink and store kinds.
const (
	SinkMemory   = "memory"
	SinkSheets   = "sheets"
	SinkPostgres = "postgres"

	StoreMemory = "memory"
	StoreValkey = "valkey"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	FAQ         FAQConfig         `yaml:"faq"`
	Sheets      SheetsConfig      `yaml:"sheets"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Valkey      ValkeyConfig      `yaml:"valkey"`
	ObjectStore ObjectStoreConfig `yaml:"objectStore"`
	Notify      NotifyConfig      `yaml:"notify"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	Admin       AdminConfig       `yaml:"admin"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	Retry        RetryConfig     `yaml:"retry"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests. Exclude entries
// are path prefixes.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FAQConfig controls matching, moderation and the backends the engine talks to.
type FAQConfig struct {
	Threshold          int            `yaml:"threshold"`
	BlockedKeywords    []string       `yaml:"blockedKeywords"`
	BlockedTag         string         `yaml:"blockedTag"`
	TopRecommendations int            `yaml:"topRecommendations"`
	Session            SessionConfig  `yaml:"session"`
	Source             SourceConfig   `yaml:"source"`
	Sinks              SinksConfig    `yaml:"sinks"`
	Trending           TrendingConfig `yaml:"trending"`
}

// SessionConfig bounds per-user conversation state.
type SessionConfig struct {
	MaxTurns int           `yaml:"maxTurns"`
	IdleTTL  time.Duration `yaml:"idleTtl"`
}

// SourceConfig selects where the knowledge base table comes from.
type SourceConfig struct {
	Kind      string      `yaml:"kind"`
	Path      string      `yaml:"path"`
	Worksheet string      `yaml:"worksheet"`
	ObjectKey string      `yaml:"objectKey"`
	Cache     CacheConfig `yaml:"cache"`
}

// CacheConfig enables the shared Valkey copy of the knowledge base.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// SinksConfig selects where interaction and blocked records go.
type SinksConfig struct {
	Kind             string `yaml:"kind"`
	LogWorksheet     string `yaml:"logWorksheet"`
	BlockedWorksheet string `yaml:"blockedWorksheet"`
}

// TrendingConfig selects the popularity counter store.
type TrendingConfig struct {
	Store string `yaml:"store"`
}

// SheetsConfig holds the Google Sheets spreadsheet and service account.
type SheetsConfig struct {
	SpreadsheetID   string        `yaml:"spreadsheetId"`
	CredentialsFile string        `yaml:"credentialsFile"`
	CredentialsJSON string        `yaml:"credentialsJson"`
	// BaseURL overrides the API root (without /v4), e.g. for an emulator.
	BaseURL         string        `yaml:"baseUrl"`
	Timeout         time.Duration `yaml:"timeout"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ValkeyConfig contains connection information for cache storage.
type ValkeyConfig struct {
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// ObjectStoreConfig points at an S3-compatible bucket (Cloudflare R2, MinIO, S3).
type ObjectStoreConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// NotifyConfig controls escalation emails.
type NotifyConfig struct {
	Recipient string     `yaml:"recipient"`
	Subject   string     `yaml:"subject"`
	SMTP      SMTPConfig `yaml:"smtp"`
}

// SMTPConfig describes the outgoing mail server. When disabled, mail is only logged.
type SMTPConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

// KafkaConfig controls turn event publishing.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// AdminConfig guards the operator endpoints.
type AdminConfig struct {
	Secret    string           `yaml:"secret"`
	TokenTTL  time.Duration    `yaml:"tokenTtl"`
	Operators []OperatorConfig `yaml:"operators"`
}

// OperatorConfig is one operator account; PasswordHash is a bcrypt hash.
type OperatorConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"passwordHash"`
}

// Load reads configuration from a YAML file and environment variables. A .env file
// (or ENV_FILE) is loaded first without overriding variables already set.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); err != nil {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("HTTP_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}

	if v := os.Getenv("FAQ_THRESHOLD"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Threshold = parsed
		}
	}
	if v := os.Getenv("FAQ_BLOCKED_KEYWORDS"); v != "" {
		cfg.FAQ.BlockedKeywords = splitList(v)
	}
	if v := os.Getenv("FAQ_BLOCKED_TAG"); v != "" {
		cfg.FAQ.BlockedTag = v
	}
	if v := os.Getenv("FAQ_RECOMMENDATIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.TopRecommendations = parsed
		}
	}
	if v := os.Getenv("FAQ_SESSION_MAX_TURNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.Session.MaxTurns = parsed
		}
	}
	if v := os.Getenv("FAQ_SESSION_IDLE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FAQ.Session.IdleTTL = parsed
		}
	}
	if v := os.Getenv("FAQ_SOURCE_KIND"); v != "" {
		cfg.FAQ.Source.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("FAQ_SOURCE_PATH"); v != "" {
		cfg.FAQ.Source.Path = v
	}
	if v := os.Getenv("FAQ_SOURCE_WORKSHEET"); v != "" {
		cfg.FAQ.Source.Worksheet = v
	}
	if v := os.Getenv("FAQ_SOURCE_OBJECT_KEY"); v != "" {
		cfg.FAQ.Source.ObjectKey = v
	}
	if v := os.Getenv("FAQ_SOURCE_CACHE_ENABLED"); v != "" {
		cfg.FAQ.Source.Cache.Enabled = parseBool(v)
	}
	if v := os.Getenv("FAQ_SOURCE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FAQ.Source.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("FAQ_SINKS_KIND"); v != "" {
		cfg.FAQ.Sinks.Kind = strings.ToLower(v)
	}
	if v := os.Getenv("FAQ_TRENDING_STORE"); v != "" {
		cfg.FAQ.Trending.Store = strings.ToLower(v)
	}

	if v := os.Getenv("SHEETS_SPREADSHEET_ID"); v != "" {
		cfg.Sheets.SpreadsheetID = v
	}
	if v := os.Getenv("SHEETS_CREDENTIALS_FILE"); v != "" {
		cfg.Sheets.CredentialsFile = v
	}
	if v := os.Getenv("SHEETS_CREDENTIALS_JSON"); v != "" {
		cfg.Sheets.CredentialsJSON = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Valkey.Addr = v
	}
	if v := os.Getenv("OBJECT_STORE_ENDPOINT"); v != "" {
		cfg.ObjectStore.Endpoint = v
	}
	if v := os.Getenv("OBJECT_STORE_ACCESS_KEY"); v != "" {
		cfg.ObjectStore.AccessKey = v
	}
	if v := os.Getenv("OBJECT_STORE_SECRET_KEY"); v != "" {
		cfg.ObjectStore.SecretKey = v
	}
	if v := os.Getenv("OBJECT_STORE_BUCKET"); v != "" {
		cfg.ObjectStore.Bucket = v
	}
	if v := os.Getenv("OBJECT_STORE_REGION"); v != "" {
		cfg.ObjectStore.Region = v
	}

	if v := os.Getenv("NOTIFY_RECIPIENT"); v != "" {
		cfg.Notify.Recipient = v
	}
	if v := os.Getenv("SMTP_ENABLED"); v != "" {
		cfg.Notify.SMTP.Enabled = parseBool(v)
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Notify.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Notify.SMTP.Port = parsed
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Notify.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Notify.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.Notify.SMTP.From = v
	}

	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.Kafka.Enabled = parseBool(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Kafka.Topic = v
	}

	if v := os.Getenv("ADMIN_SECRET"); v != "" {
		cfg.Admin.Secret = v
	}
	if v := os.Getenv("ADMIN_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Admin.TokenTTL = parsed
		}
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		cfg.Admin.Operators = append(cfg.Admin.Operators, OperatorConfig{Username: "admin", PasswordHash: v})
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/faq/ask",
					"/api/v1/faq/turns/",
					"/api/v1/admin/login",
				},
			},
		},
		FAQ: FAQConfig{
			Threshold:          faq.DefaultAcceptanceThreshold,
			BlockedKeywords:    append([]string(nil), moderation.DefaultBlockedKeywords...),
			BlockedTag:         faq.DefaultBlockedTag,
			TopRecommendations: 10,
			Session: SessionConfig{
				MaxTurns: 50,
				IdleTTL:  30 * time.Minute,
			},
			Source: SourceConfig{
				Kind:      SourceCSV,
				Path:      "configs/faq.csv",
				Worksheet: "FAQ_DB",
				Cache: CacheConfig{
					TTL: 5 * time.Minute,
				},
			},
			Sinks: SinksConfig{
				Kind:             SinkMemory,
				LogWorksheet:     "FAQ_Logs",
				BlockedWorksheet: "Blocked_Questions",
			},
			Trending: TrendingConfig{
				Store: StoreMemory,
			},
		},
		Sheets: SheetsConfig{
			Timeout: 10 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Valkey: ValkeyConfig{
			Prefix: "faq",
		},
		Notify: NotifyConfig{
			SMTP: SMTPConfig{
				Port:    587,
				Timeout: 10 * time.Second,
			},
		},
		Kafka: KafkaConfig{
			Topic:        "faq.turns",
			WriteTimeout: 5 * time.Second,
		},
		Admin: AdminConfig{
			TokenTTL: 12 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}

	if c.FAQ.Threshold < 1 || c.FAQ.Threshold > 100 {
		return errors.New("faq.threshold must be between 1 and 100")
	}
	if c.FAQ.TopRecommendations < 0 {
		return errors.New("faq.topRecommendations cannot be negative")
	}
	if c.FAQ.Session.MaxTurns < 0 {
		return errors.New("faq.session.maxTurns cannot be negative")
	}
	if c.FAQ.Session.IdleTTL < 0 {
		return errors.New("faq.session.idleTtl cannot be negative")
	}

	switch c.FAQ.Source.Kind {
	case SourceMemory:
	case SourceCSV:
		if strings.TrimSpace(c.FAQ.Source.Path) == "" {
			return errors.New("faq.source.path cannot be empty for csv source")
		}
	case SourceSheets:
		if err := c.Sheets.validate(); err != nil {
			return err
		}
	case SourceObject:
		if strings.TrimSpace(c.ObjectStore.Endpoint) == "" || strings.TrimSpace(c.ObjectStore.Bucket) == "" {
			return errors.New("objectStore.endpoint and objectStore.bucket are required for object source")
		}
		if strings.TrimSpace(c.FAQ.Source.ObjectKey) == "" {
			return errors.New("faq.source.objectKey cannot be empty for object source")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("postgres.dsn cannot be empty for postgres source")
		}
	default:
		return fmt.Errorf("faq.source.kind %q is not supported", c.FAQ.Source.Kind)
	}
	if c.FAQ.Source.Cache.Enabled && strings.TrimSpace(c.Valkey.Addr) == "" {
		return errors.New("valkey.addr cannot be empty when the knowledge base cache is enabled")
	}

	switch c.FAQ.Sinks.Kind {
	case SinkMemory:
	case SinkSheets:
		if err := c.Sheets.validate(); err != nil {
			return err
		}
	case SinkPostgres:
		if strings.TrimSpace(c.Postgres.DSN) == "" {
			return errors.New("postgres.dsn cannot be empty for postgres sinks")
		}
	default:
		return fmt.Errorf("faq.sinks.kind %q is not supported", c.FAQ.Sinks.Kind)
	}

	switch c.FAQ.Trending.Store {
	case StoreMemory:
	case StoreValkey:
		if strings.TrimSpace(c.Valkey.Addr) == "" {
			return errors.New("valkey.addr cannot be empty when the trending store is valkey")
		}
	default:
		return fmt.Errorf("faq.trending.store %q is not supported", c.FAQ.Trending.Store)
	}

	if c.Notify.SMTP.Enabled {
		if strings.TrimSpace(c.Notify.SMTP.Host) == "" {
			return errors.New("notify.smtp.host cannot be empty when smtp is enabled")
		}
		if strings.TrimSpace(c.Notify.SMTP.From) == "" {
			return errors.New("notify.smtp.from cannot be empty when smtp is enabled")
		}
		if strings.TrimSpace(c.Notify.Recipient) == "" {
			return errors.New("notify.recipient cannot be empty when smtp is enabled")
		}
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if len(c.Admin.Operators) > 0 && strings.TrimSpace(c.Admin.Secret) == "" {
		return errors.New("admin.secret cannot be empty when operators are configured")
	}
	if c.Admin.TokenTTL <= 0 {
		return errors.New("admin.tokenTtl must be positive")
	}
	return nil
}

func (s SheetsConfig) validate() error {
	if strings.TrimSpace(s.SpreadsheetID) == "" {
		return errors.New("sheets.spreadsheetId cannot be empty")
	}
	if strings.TrimSpace(s.CredentialsFile) == "" && strings.TrimSpace(s.CredentialsJSON) == "" {
		return errors.New("sheets.credentialsFile or sheets.credentialsJson is required")
	}
	return nil
}

// SheetsCredentials returns the service account key, reading the file when needed.
func (c *Config) SheetsCredentials() ([]byte, error) {
	if raw := strings.TrimSpace(c.Sheets.CredentialsJSON); raw != "" {
		return []byte(raw), nil
	}
	data, err := os.ReadFile(c.Sheets.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	return data, nil
}
