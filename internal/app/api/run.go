package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	shopserver "github.com/Apurer/go-shop-api-server/go"

	catalogmemory "github.com/Apurer/go-shop-api-server/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-shop-api-server/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/Apurer/go-shop-api-server/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-shop-api-server/internal/domains/catalog/ports"
	cachememory "github.com/Apurer/go-shop-api-server/internal/domains/orders/adapters/cache/memory"
	ordersmemory "github.com/Apurer/go-shop-api-server/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/go-shop-api-server/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-shop-api-server/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/go-shop-api-server/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-shop-api-server/internal/domains/orders/ports"
	usermemory "github.com/Apurer/go-shop-api-server/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/go-shop-api-server/internal/domains/users/adapters/observability"
	userpostgres "github.com/Apurer/go-shop-api-server/internal/domains/users/adapters/persistence/postgres"
	userapp "github.com/Apurer/go-shop-api-server/internal/domains/users/application"
	userports "github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
	temporalnotifier "github.com/Apurer/go-shop-api-server/internal/notifications/temporal"
	"github.com/Apurer/go-shop-api-server/internal/platform/migrations"
	platformobservability "github.com/Apurer/go-shop-api-server/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-shop-api-server/internal/platform/postgres"
)

// Run boots the shop HTTP API with observability, repositories, and the
// notification pipeline wired.
func Run(ctx context.Context) error {
	const serviceName = "shop-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	notifier := buildNotifier(cfg, instruments, logger)
	if closer, ok := notifier.(interface{ Close() }); ok {
		defer closer.Close()
	}

	lowStock := lowStockLogger(logger)
	stores := buildStores(db, cfg, lowStock)

	catalogService := catalogapp.NewService(stores.categories, stores.products)

	coreOrderService := ordersapp.NewService(
		stores.orders,
		stores.catalog,
		ordersapp.WithCache(cachememory.NewCache()),
		ordersapp.WithNotifier(notifier),
		ordersapp.WithCacheTTL(cfg.CacheTTL),
		ordersapp.WithStoreTimeout(cfg.StoreTimeout),
	)
	orderService := ordersobs.New(
		coreOrderService,
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	coreUserService := userapp.NewService(
		stores.users,
		stores.sessions,
		userapp.WithNotifier(notifier),
		userapp.WithSessionTTL(cfg.SessionTTL),
	)
	userService := userobs.New(
		coreUserService,
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)

	handlers := shopserver.ApiHandleFunctions{
		CatalogAPI: shopserver.NewCatalogAPI(catalogService),
		OrderAPI:   shopserver.NewOrderAPI(orderService),
		UserAPI:    shopserver.NewUserAPI(userService),
	}

	router := shopserver.NewRouter(handlers,
		otelgin.Middleware(serviceName),
		shopserver.AuthMiddleware(userService),
	)
	addr := ":" + cfg.Port
	logger.Info("shop API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("shop API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

type stores struct {
	categories catalogports.CategoryRepository
	products   catalogports.ProductRepository
	catalog    ordersports.ProductCatalog
	orders     ordersports.Repository
	users      userports.Repository
	sessions   userports.SessionStore
}

func buildStores(db *gorm.DB, cfg Config, lowStock ordersports.LowStockFunc) stores {
	if db != nil {
		products := catalogpostgres.NewProductRepository(db)
		return stores{
			categories: catalogpostgres.NewCategoryRepository(db),
			products:   products,
			catalog:    products,
			orders: orderspostgres.NewRepository(db,
				orderspostgres.WithLowStockFunc(lowStock),
				orderspostgres.WithLowStockThreshold(cfg.LowStockThreshold)),
			users:    userpostgres.NewRepository(db),
			sessions: userpostgres.NewSessionStore(db),
		}
	}
	products := catalogmemory.NewProductRepository(
		catalogmemory.WithLowStockFunc(lowStock),
		catalogmemory.WithLowStockThreshold(cfg.LowStockThreshold))
	return stores{
		categories: catalogmemory.NewCategoryRepository(),
		products:   products,
		catalog:    products,
		orders:     ordersmemory.NewRepository(products),
		users:      usermemory.NewRepository(),
		sessions:   usermemory.NewSessionStore(),
	}
}

// buildNotifier prefers durable Temporal delivery and falls back to the
// log notifier so order placement never depends on the cluster.
func buildNotifier(cfg Config, instruments *platformobservability.Instruments, logger *slog.Logger) notifications.Notifier {
	temporalClient, err := connectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Warn("Temporal notifications unavailable, logging events instead", slog.String("error", err.Error()))
		return notifications.NewLogNotifier(logger)
	}
	logger.Info("Temporal notifications enabled", slog.String("namespace", cfg.TemporalNamespace))
	return &closingNotifier{Notifier: temporalnotifier.NewNotifier(temporalClient), client: temporalClient}
}

type closingNotifier struct {
	notifications.Notifier
	client client.Client
}

func (n *closingNotifier) Close() { n.client.Close() }

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}

func lowStockLogger(logger *slog.Logger) ordersports.LowStockFunc {
	return func(productID int64, remaining int32) {
		logger.Warn("product stock low",
			slog.Int64("product.id", productID), slog.Int("remaining", int(remaining)))
	}
}
