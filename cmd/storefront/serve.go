package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	cart "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/cart/infra/storage"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	catalogmemory "github.com/dwikikusuma/storefront/internal/catalog/infra/memory"
	catalogpg "github.com/dwikikusuma/storefront/internal/catalog/infra/postgres"
	"github.com/dwikikusuma/storefront/internal/catalog/infra/retrying"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/httpclient"
	"github.com/dwikikusuma/storefront/internal/httpapi"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/postgres"
	"github.com/dwikikusuma/storefront/pkg/retry"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
	"github.com/dwikikusuma/storefront/pkg/telemetry"
)

const healthInterval = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log := logger.New(logger.Options{
				Service:   "storefront",
				Env:       cfg.AppEnv,
				Level:     cfg.LogLevel,
				AddSource: true,
			})

			ctx, cancel := shutdown.WithSignals(cmd.Context())
			defer cancel()

			if err := serve(ctx, cfg, log); err != nil {
				log.Error("server stopped with error", slog.Any("err", err))
				return err
			}
			log.Info("bye")
			return nil
		},
	}
}

func retryPolicy(cfg config.RetryConfig) retry.Policy {
	return retry.Policy{MaxAttempts: cfg.MaxAttempts, Backoff: retry.Linear(cfg.Step)}
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	stopTracing, err := telemetry.InitTracerProvider(ctx, telemetry.Options{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Service:  "storefront",
		Version:  version,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown.Drain(shutdown.DefaultTimeout, stopTracing); err != nil {
			log.Warn("tracer shutdown failed", slog.Any("err", err))
		}
	}()

	reg := metrics.NewRegistry()
	policy := retryPolicy(cfg.Retry)

	// Cart
	cartStorage, err := storage.Open(ctx, cfg.Cart)
	if err != nil {
		return fmt.Errorf("open cart storage: %w", err)
	}
	carts := cartapp.NewRegistry(
		storage.WithRetry(cartStorage, policy, log),
		cartapp.WithLogger(log),
		cartapp.WithRecorder(metrics.NewCart(reg)),
	)
	defer func() {
		if err := shutdown.Drain(shutdown.DefaultTimeout, carts.Close); err != nil {
			log.Warn("cart registry close failed", slog.Any("err", err))
		}
	}()

	// Catalog
	productRepo, closeCatalog, err := openCatalog(ctx, cfg.Catalog)
	if err != nil {
		return err
	}
	defer closeCatalog()
	catalogSvc := catalogapp.NewService(retrying.NewProductRepo(productRepo, policy, log))

	// Checkout (adapters)
	checkoutSvc := newCheckoutService(cfg.Checkout, carts, log)

	router := httpapi.NewRouter(httpapi.Deps{
		Carts:    carts,
		Catalog:  catalogSvc,
		Checkout: checkoutSvc,
		Metrics:  metrics.Handler(reg),
		Log:      log,
		Ready:    carts.Ping,
	})

	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              httpAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	grpcAddr := fmt.Sprintf(":%d", cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	reflection.Register(grpcServer)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", httpAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc starting", slog.String("addr", grpcAddr))
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		watchHealth(gctx, healthSrv, carts.Ping, log)
		return nil
	})

	g.Go(func() error {
		carts.Run(gctx, cfg.Cart.SweepInterval, cfg.Cart.IdleTTL)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown requested")
		healthSrv.Shutdown()

		if err := shutdown.Drain(shutdown.DefaultTimeout, server.Shutdown); err != nil {
			log.Error("http shutdown error", slog.Any("err", err))
		}
		stopGRPC(grpcServer, shutdown.DefaultTimeout, log)
		return nil
	})

	return g.Wait()
}

func stopGRPC(s *grpc.Server, timeout time.Duration, log *slog.Logger) {
	stopped := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(stopped)
	}()

	select {
	case <-time.After(timeout):
		log.Warn("graceful stop timeout, forcing stop")
		s.Stop()
	case <-stopped:
	}
}

// watchHealth flips the gRPC health status with cart storage reachability
// until ctx is done.
func watchHealth(ctx context.Context, srv *health.Server, ping func(context.Context) error, log *slog.Logger) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := ping(pctx); err != nil {
			log.Warn("cart storage unreachable", slog.Any("err", err))
			srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			return
		}
		srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	check()
	t := time.NewTicker(healthInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}

func openCatalog(ctx context.Context, cfg config.CatalogConfig) (catalogapp.ProductRepo, func(), error) {
	switch cfg.Driver {
	case "", "memory":
		return catalogmemory.NewProductRepo(), func() {}, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, nil, errors.New("postgres catalog driver requires a dsn")
		}
		db, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open catalog db: %w", err)
		}
		repo := catalogpg.NewProductRepo(db)
		if err := repo.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, closer(db), nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

func closer(db *sql.DB) func() {
	return func() { _ = db.Close() }
}

// newCheckoutService wires whichever collaborators have a URL configured.
// Unset collaborators stay nil interfaces so the service reports them as
// unavailable.
func newCheckoutService(cfg config.CheckoutConfig, carts *cartapp.Registry, log *slog.Logger) *checkoutapp.Service {
	var (
		payment  checkoutapp.PaymentGateway
		shipping checkoutapp.ShippingQuoter
		tax      checkoutapp.TaxCalculator
	)
	if cfg.PaymentURL != "" {
		payment = httpclient.NewPaymentClient(cfg.PaymentURL, cfg.Timeout)
	}
	if cfg.ShippingURL != "" {
		shipping = httpclient.NewShippingClient(cfg.ShippingURL, cfg.Timeout)
	}
	if cfg.TaxURL != "" {
		tax = httpclient.NewTaxClient(cfg.TaxURL, cfg.Timeout)
	}

	return checkoutapp.NewService(
		adapter.NewCartRegistryReader(carts),
		payment,
		shipping,
		tax,
		cart.Address(cfg.ShipFrom),
		log,
	)
}
