// Package app wires repositories and usecases together for the API server
// and the operator CLI.
package app

import (
	"dangerous-goods-backend/config"
	"dangerous-goods-backend/internal/domain"
	pgrepo "dangerous-goods-backend/internal/repository/postgres"
	"dangerous-goods-backend/internal/usecase"
	"dangerous-goods-backend/pkg/cache"
)

type Usecases struct {
	Settings   *usecase.SettingsUsecase
	Classifier *usecase.ClassificationUsecase
	Evaluator  *usecase.EvaluationUsecase
	Notices    *usecase.NoticeBuilder
	Cart       *usecase.CartUsecase
	Catalog    *usecase.CatalogUsecase
	Order      *usecase.OrderUsecase
}

// NewUsecases builds the usecase graph on top of PostgreSQL. All caches share
// memCache; publisher may be a messaging.NoopPublisher.
func NewUsecases(cfg *config.Config, db pgrepo.Pool, memCache cache.CacheService, publisher domain.EventPublisher) *Usecases {
	productRepo := pgrepo.NewProductRepository(db)
	settingsRepo := pgrepo.NewSettingsRepository(db)
	cartRepo := pgrepo.NewCartRepository(db)
	orderRepo := pgrepo.NewOrderRepository(db)
	txManager := pgrepo.NewTransactionManager(db)

	settingsUC := usecase.NewSettingsUsecase(settingsRepo, memCache, cfg.CacheSettingsTTL)
	classifier := usecase.NewClassificationUsecase(productRepo)
	evaluator := usecase.NewEvaluationUsecase(classifier, memCache, cfg.CacheEvaluationTTL)
	notices := usecase.NewNoticeBuilder(cfg.CurrencySymbol)

	// Fee providers run in order on every calculation pass.
	feeProviders := []domain.CartFeeProvider{
		usecase.NewDangerousGoodsFeeRule(settingsUC, evaluator),
	}

	cartUC := usecase.NewCartUsecase(cartRepo, productRepo, evaluator, settingsUC, notices, feeProviders, cfg.MaxCartQuantity)
	catalogUC := usecase.NewCatalogUsecase(productRepo, classifier, evaluator, settingsUC, notices)
	orderUC := usecase.NewOrderUsecase(orderRepo, productRepo, cartRepo, cartUC, classifier, evaluator, settingsUC, publisher, txManager)

	return &Usecases{
		Settings:   settingsUC,
		Classifier: classifier,
		Evaluator:  evaluator,
		Notices:    notices,
		Cart:       cartUC,
		Catalog:    catalogUC,
		Order:      orderUC,
	}
}
