package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/faq-chatbot/internal/domain/auth"
	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/domain/moderation"
	"github.com/yanqian/faq-chatbot/internal/infra/config"
	"github.com/yanqian/faq-chatbot/internal/infra/events"
	"github.com/yanqian/faq-chatbot/internal/infra/faqlog"
	"github.com/yanqian/faq-chatbot/internal/infra/faqsource"
	"github.com/yanqian/faq-chatbot/internal/infra/faqstore"
	"github.com/yanqian/faq-chatbot/internal/infra/notify"
	"github.com/yanqian/faq-chatbot/internal/infra/sheets"
)

// ProvideFAQConfig maps the file configuration onto the engine knobs.
func ProvideFAQConfig(cfg *config.Config) faq.Config {
	return faq.Config{
		Threshold:          cfg.FAQ.Threshold,
		BlockedTag:         cfg.FAQ.BlockedTag,
		MaxTurns:           cfg.FAQ.Session.MaxTurns,
		SessionIdleTTL:     cfg.FAQ.Session.IdleTTL,
		TopRecommendations: cfg.FAQ.TopRecommendations,
	}
}

func ProvideAuthConfig(cfg *config.Config) auth.Config {
	operators := make([]auth.Operator, 0, len(cfg.Admin.Operators))
	for _, op := range cfg.Admin.Operators {
		operators = append(operators, auth.Operator{Username: op.Username, PasswordHash: op.PasswordHash})
	}
	return auth.Config{
		Secret:    cfg.Admin.Secret,
		TokenTTL:  cfg.Admin.TokenTTL,
		Operators: operators,
	}
}

func ProvideContentFilter(cfg *config.Config) faq.ContentFilter {
	return moderation.NewFilter(cfg.FAQ.BlockedKeywords)
}

func ProvideScorer() faq.Scorer {
	return faq.WeightedRatio{}
}

// ProvidePostgresPool opens a pool only when the source or the sinks live in Postgres.
// A nil pool is returned otherwise.
func ProvidePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func(), error) {
	noop := func() {}
	if cfg.FAQ.Source.Kind != config.SourcePostgres && cfg.FAQ.Sinks.Kind != config.SinkPostgres {
		return nil, noop, nil
	}
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(cfg.Postgres.DSN))
	if err != nil {
		return nil, noop, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, noop, fmt.Errorf("initialize postgres pool: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, noop, fmt.Errorf("postgres ping failed: %w", err)
	}
	logger.Info("postgres pool ready")
	return pool, pool.Close, nil
}

// ProvideValkeyClient connects when the trending store or the knowledge base cache need
// it. Connection problems are logged and a nil client is returned so callers fall back
// to process memory.
func ProvideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	noop := func() {}
	if cfg.FAQ.Trending.Store != config.StoreValkey && !cfg.FAQ.Source.Cache.Enabled {
		return nil, noop
	}
	opt, err := buildValkeyOptions(cfg)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory", "error", err)
		return nil, noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory", "error", err)
		return nil, noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory", "error", err)
		client.Close()
		return nil, noop
	}
	logger.Info("valkey enabled", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

// ProvideSheetsClient returns nil unless a worksheet backs the source or the sinks.
func ProvideSheetsClient(cfg *config.Config) (*sheets.Client, error) {
	if cfg.FAQ.Source.Kind != config.SourceSheets && cfg.FAQ.Sinks.Kind != config.SinkSheets {
		return nil, nil
	}
	creds, err := cfg.SheetsCredentials()
	if err != nil {
		return nil, err
	}
	return sheets.NewServiceAccountClient(context.Background(), cfg.Sheets.BaseURL, cfg.Sheets.SpreadsheetID, creds, cfg.Sheets.Timeout)
}

// ProvideKnowledgeSource picks the configured knowledge base backend and optionally puts
// the Valkey cache in front of it.
func ProvideKnowledgeSource(cfg *config.Config, pool *pgxpool.Pool, sheetsClient *sheets.Client, cache valkey.Client, logger *slog.Logger) (faq.Source, error) {
	var (
		source faq.Source
		err    error
	)
	switch cfg.FAQ.Source.Kind {
	case config.SourceMemory:
		source = faqsource.NewMemorySource(nil)
	case config.SourceCSV:
		source = faqsource.NewFileSource(cfg.FAQ.Source.Path)
	case config.SourceSheets:
		if sheetsClient == nil {
			return nil, errors.New("sheets source configured without a sheets client")
		}
		source = faqsource.NewSheetSource(sheetsClient, cfg.FAQ.Source.Worksheet)
	case config.SourceObject:
		store := cfg.ObjectStore
		source, err = faqsource.NewObjectSource(store.Endpoint, store.AccessKey, store.SecretKey, store.Bucket, store.Region, cfg.FAQ.Source.ObjectKey, logger)
		if err != nil {
			return nil, err
		}
	case config.SourcePostgres:
		if pool == nil {
			return nil, errors.New("postgres source configured without a pool")
		}
		source = faqsource.NewPostgresSource(pool)
	default:
		return nil, fmt.Errorf("unsupported knowledge base source %q", cfg.FAQ.Source.Kind)
	}

	if cfg.FAQ.Source.Cache.Enabled {
		if cache == nil {
			logger.Warn("knowledge base cache requested but valkey is unavailable")
			return source, nil
		}
		logger.Info("knowledge base cache enabled", "ttl", cfg.FAQ.Source.Cache.TTL)
		return faqsource.NewCachedSource(source, cache, cfg.Valkey.Prefix, cfg.FAQ.Source.Cache.TTL, logger), nil
	}
	return source, nil
}

func ProvideInteractionLog(cfg *config.Config, pool *pgxpool.Pool, sheetsClient *sheets.Client) (faq.InteractionLog, error) {
	switch cfg.FAQ.Sinks.Kind {
	case config.SinkPostgres:
		if pool == nil {
			return nil, errors.New("postgres sinks configured without a pool")
		}
		return faqlog.NewPostgresInteractionLog(pool), nil
	case config.SinkSheets:
		if sheetsClient == nil {
			return nil, errors.New("sheets sinks configured without a sheets client")
		}
		return faqlog.NewSheetsInteractionLog(sheetsClient, cfg.FAQ.Sinks.LogWorksheet), nil
	default:
		return faqlog.NewMemoryInteractionLog(), nil
	}
}

func ProvideBlockedLog(cfg *config.Config, pool *pgxpool.Pool, sheetsClient *sheets.Client) (faq.BlockedLog, error) {
	switch cfg.FAQ.Sinks.Kind {
	case config.SinkPostgres:
		if pool == nil {
			return nil, errors.New("postgres sinks configured without a pool")
		}
		return faqlog.NewPostgresBlockedLog(pool), nil
	case config.SinkSheets:
		if sheetsClient == nil {
			return nil, errors.New("sheets sinks configured without a sheets client")
		}
		return faqlog.NewSheetsBlockedLog(sheetsClient, cfg.FAQ.Sinks.BlockedWorksheet), nil
	default:
		return faqlog.NewMemoryBlockedLog(), nil
	}
}

func ProvideFAQStore(cfg *config.Config, client valkey.Client, logger *slog.Logger) faq.Store {
	if cfg.FAQ.Trending.Store == config.StoreValkey && client != nil {
		logger.Info("faq valkey store enabled", "addr", cfg.Valkey.Addr)
		return faqstore.NewValkeyStore(client, cfg.Valkey.Prefix)
	}
	return faqstore.NewMemoryStore()
}

// ProvideNotifier sends escalations by SMTP when configured and otherwise only logs them.
// Without a recipient escalation is disabled.
func ProvideNotifier(cfg *config.Config, logger *slog.Logger) faq.Notifier {
	if strings.TrimSpace(cfg.Notify.Recipient) == "" {
		logger.Warn("notify.recipient not set, escalation disabled")
		return nil
	}
	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if cfg.Notify.SMTP.Enabled {
		smtpCfg := cfg.Notify.SMTP
		mailer = notify.NewSMTPMailer(notify.SMTPConfig{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			Username: smtpCfg.Username,
			Password: smtpCfg.Password,
			From:     smtpCfg.From,
			Timeout:  smtpCfg.Timeout,
		})
	}
	return notify.NewEmailNotifier(mailer, cfg.Notify.Recipient, cfg.Notify.Subject)
}

// ProvideEventPublisher returns the Kafka publisher when enabled.
func ProvideEventPublisher(cfg *config.Config, logger *slog.Logger) (faq.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return events.NoopPublisher{}, func() {}, nil
	}
	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.WriteTimeout)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("kafka turn events enabled", "topic", cfg.Kafka.Topic)
	cleanup := func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("kafka publisher close failed", "error", err)
		}
	}
	return publisher, cleanup, nil
}
