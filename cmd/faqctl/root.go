package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yanqian/faq-chatbot/internal/bootstrap"
	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/infra/config"
	"github.com/yanqian/faq-chatbot/internal/infra/faqlog"
	"github.com/yanqian/faq-chatbot/pkg/logger"
	"github.com/yanqian/faq-chatbot/pkg/metrics"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "faqctl",
		Short:         "Operator tool for the FAQ chatbot",
		Long:          "faqctl asks the matcher questions, checks text against the content filter and inspects the knowledge base.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file path (defaults to CONFIG_PATH or configs/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "write JSON logs to stderr")

	cmd.AddCommand(
		newAskCmd(opts),
		newCheckCmd(opts),
		newKBCmd(opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		if err := os.Setenv("CONFIG_PATH", o.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func (o *rootOptions) logger() *slog.Logger {
	if o.verbose {
		return logger.New()
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// cliRuntime holds the pieces a command needs. Records stay in memory so operator
// experiments never reach the production logs.
type cliRuntime struct {
	cfg     *config.Config
	loader  *faq.Loader
	engine  *faq.Engine
	cleanup func()
}

func (o *rootOptions) runtime() (*cliRuntime, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	log := o.logger()

	local := *cfg
	local.FAQ.Sinks.Kind = config.SinkMemory
	local.FAQ.Trending.Store = config.StoreMemory
	local.FAQ.Source.Cache.Enabled = false

	pool, cleanup, err := bootstrap.ProvidePostgresPool(&local, log)
	if err != nil {
		return nil, err
	}
	sheetsClient, err := bootstrap.ProvideSheetsClient(&local)
	if err != nil {
		cleanup()
		return nil, err
	}
	source, err := bootstrap.ProvideKnowledgeSource(&local, pool, sheetsClient, nil, log)
	if err != nil {
		cleanup()
		return nil, err
	}
	loader := faq.NewLoader(source, log)
	engine := faq.NewEngine(
		bootstrap.ProvideFAQConfig(&local),
		bootstrap.ProvideContentFilter(&local),
		bootstrap.ProvideScorer(),
		loader,
		faqlog.NewMemoryInteractionLog(),
		faqlog.NewMemoryBlockedLog(),
		nil,
		nil,
		nil,
		metrics.NewCounter(),
		log,
	)
	return &cliRuntime{cfg: cfg, loader: loader, engine: engine, cleanup: cleanup}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
