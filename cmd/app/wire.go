//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/faq-chatbot/internal/bootstrap"
	"github.com/yanqian/faq-chatbot/internal/domain/auth"
	"github.com/yanqian/faq-chatbot/internal/domain/faq"
	"github.com/yanqian/faq-chatbot/internal/infra/config"
	httpiface "github.com/yanqian/faq-chatbot/internal/interface/http"
	"github.com/yanqian/faq-chatbot/pkg/logger"
	"github.com/yanqian/faq-chatbot/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewCounter,
		bootstrap.ProvideFAQConfig,
		bootstrap.ProvideAuthConfig,
		bootstrap.ProvideContentFilter,
		bootstrap.ProvideScorer,
		bootstrap.ProvidePostgresPool,
		bootstrap.ProvideValkeyClient,
		bootstrap.ProvideSheetsClient,
		bootstrap.ProvideKnowledgeSource,
		bootstrap.ProvideInteractionLog,
		bootstrap.ProvideBlockedLog,
		bootstrap.ProvideFAQStore,
		bootstrap.ProvideNotifier,
		bootstrap.ProvideEventPublisher,
		faq.NewLoader,
		faq.NewEngine,
		faq.NewSessionRegistry,
		faq.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
