package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	appanalytics "github.com/jhoicas/tienda-pos/internal/application/analytics"
	"github.com/jhoicas/tienda-pos/internal/application/billing"
	"github.com/jhoicas/tienda-pos/internal/application/usecase"
	"github.com/jhoicas/tienda-pos/internal/domain/repository"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/memory"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/tienda-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-pos/internal/infrastructure/redisstore"
	httpRouter "github.com/jhoicas/tienda-pos/internal/interfaces/http"
	"github.com/jhoicas/tienda-pos/pkg/config"
	"github.com/jhoicas/tienda-pos/pkg/logger"
)

// storage repositorios del backend según STORAGE_DRIVER.
type storage struct {
	products  repository.ProductRepository
	sales     repository.SaleRepository
	analytics repository.AnalyticsRepository
	txRunner  billing.SaleTxRunner
	checks    map[string]httpRouter.HealthCheck
	closers   []func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	}).Component("api")
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}

	// Idempotencia de POST /api/sales: Redis si está configurado; si no, en proceso.
	var idempotency repository.IdempotencyStore
	if cfg.Redis.Enabled() {
		rs, err := redisstore.New(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		idempotency = rs
		store.checks["redis"] = rs.Ping
		store.closers = append(store.closers, rs.Close)
	} else {
		log.Warn().Msg("REDIS_URL vacío: idempotencia en memoria del proceso")
		idempotency = memory.NewIdempotencyStore()
	}

	saleMetrics := metrics.NewSaleMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	productUC := usecase.NewProductUseCase(store.products)
	createSaleUC := billing.NewCreateSaleUseCase(store.txRunner, saleMetrics)
	listSalesUC := billing.NewListSalesUseCase(store.sales)
	receiptUC := billing.NewReceiptUseCase(store.sales, infrapdf.NewMarotoReceiptGenerator(cfg.Console.CurrencyPrefix), cfg.App.StoreName)
	dashboardUC := appanalytics.NewDashboardUseCase(store.analytics, store.sales)
	reportUC := appanalytics.NewReportUseCase(store.analytics)

	app := httpRouter.NewApp(httpRouter.RouterDeps{
		AppName:        cfg.App.Name,
		Logger:         log,
		ProductUC:      productUC,
		CreateSale:     createSaleUC,
		ListSales:      listSalesUC,
		Receipt:        receiptUC,
		DashboardUC:    dashboardUC,
		ReportUC:       reportUC,
		Idempotency:    idempotency,
		IdempotencyTTL: cfg.Idempotency.TTL,
		HTTPMetrics:    httpMetrics,
		Gatherer:       prometheus.DefaultGatherer,
		HealthChecks:   store.checks,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := store.close(); err != nil {
		log.Error().Err(err).Msg("cierre de conexiones")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.DB.Driver == "memory" {
		mem := memory.NewStore()
		return &storage{
			products:  mem.Products(),
			sales:     mem.Sales(),
			analytics: mem.Analytics(),
			txRunner:  mem,
			checks:    map[string]httpRouter.HealthCheck{},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool, "up"); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		products:  postgres.NewProductRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		txRunner:  postgres.NewTxRunner(pool, cfg.DB.LockTimeout),
		checks:    map[string]httpRouter.HealthCheck{"database": pool.Ping},
		closers: []func() error{func() error {
			pool.Close()
			return nil
		}},
	}, nil
}

// close cierra las conexiones en orden inverso al de apertura.
func (s *storage) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return multierr.Combine(errs...)
}
