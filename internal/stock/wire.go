//go:build wireinject
// +build wireinject

package stock

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/stock-ledger/internal/stock/cache"
	"github.com/tair/stock-ledger/internal/stock/delivery/http"
	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/internal/stock/repository"
	"github.com/tair/stock-ledger/internal/stock/usecase/command"
	"github.com/tair/stock-ledger/internal/stock/usecase/query"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/lock"
)

// ProvideStore provides the gorm-backed stock store
func ProvideStore(db *gorm.DB) domain.Store {
	return repository.NewGormStore(db)
}

// ProvideGuard provides the per-lot consistency guard
func ProvideGuard(store domain.Store, locker lock.Locker, notifier domain.Notifier) *guard.Guard {
	return guard.NewGuard(store, locker, notifier)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStore,
	ProvideGuard,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateLotHandler,
	command.NewUpdateLotHandler,
	command.NewDeleteLotHandler,
	command.NewCreatePortionHandler,
	command.NewResizePortionHandler,
	command.NewDisposeUnitsHandler,
	command.NewUpdatePortionFieldsHandler,
	command.NewUpdatePortionHandler,
	command.NewDeletePortionHandler,
	command.NewRecordSaleHandler,
	command.NewDeleteSaleHandler,
	wire.Struct(new(http.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewListLotsHandler,
	query.NewGetLotHandler,
	query.NewListPortionsHandler,
	query.NewGetPortionHandler,
	query.NewListSalesHandler,
	query.NewGetSaleHandler,
	query.NewGetSummaryHandler,
	wire.Struct(new(http.Queries), "*"),
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)

// InitializeHTTPHandler initializes HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	locker lock.Locker,
	notifier domain.Notifier,
	verifier *auth.Verifier,
	registerer prometheus.Registerer,
	responseCache *cache.Cache,
	limiter *http.RateLimiter,
) (*http.StockHandler, error) {
	wire.Build(
		AllHandlersSet,
		http.NewMetrics,
		http.NewStockHandler,
	)
	return nil, nil
}
