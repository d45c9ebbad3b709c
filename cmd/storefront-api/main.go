// Command storefront-api serves the CustomTees REST API.
//
//	@title			CustomTees storefront API
//	@version		1.0
//	@description	Products, design submissions, orders and bill export.
//	@BasePath		/api
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/customtees/docs"
	"github.com/MikeMC777/customtees/internal/assets"
	"github.com/MikeMC777/customtees/internal/config"
	"github.com/MikeMC777/customtees/internal/design"
	"github.com/MikeMC777/customtees/internal/docstore"
	"github.com/MikeMC777/customtees/internal/logger"
	"github.com/MikeMC777/customtees/internal/order"
	"github.com/MikeMC777/customtees/internal/product"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.NewForEnvironment(cfg.App.Env, logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Fatal("startup failed", zap.Error(err))
	}
	defer cleanup()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(a, cfg.HTTP.CORSAllowOrigins, log)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("storefront-api listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("storage", cfg.Storage.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	log.Info("storefront-api stopped")
}

// buildApp wires repositories and the asset store for the configured drivers.
func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, func(), error) {
	cleanup := func() {}

	var (
		products docstore.Store[product.Product]
		designs  docstore.Store[design.Submission]
		orders   docstore.Store[order.Order]
	)
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
		if err := docstore.EnsureSchema(ctx, pool, product.Collection, design.Collection, order.Collection); err != nil {
			return nil, cleanup, err
		}
		products = docstore.NewCollection[product.Product](pool, product.Collection)
		designs = docstore.NewCollection[design.Submission](pool, design.Collection)
		orders = docstore.NewCollection[order.Order](pool, order.Collection)
	default:
		products = docstore.NewMemory[product.Product]()
		designs = docstore.NewMemory[design.Submission]()
		orders = docstore.NewMemory[order.Order]()
	}

	var store assets.Storage
	switch cfg.Storage.Driver {
	case "s3":
		s3s, err := assets.NewS3Storage(ctx, cfg.Storage, assets.WithLogger(log.Named("assets")))
		if err != nil {
			return nil, cleanup, err
		}
		if err := s3s.EnsureBucket(ctx); err != nil {
			return nil, cleanup, err
		}
		store = s3s
	default:
		store = assets.NewStub(cfg.Storage.PublicBaseURL)
	}

	productRepo := product.NewRepo(products)
	designRepo := design.NewRepo(designs)
	orderRepo := order.NewRepo(orders)
	if cfg.Store.SeedFile != "" {
		n, err := seedOrders(ctx, orderRepo, cfg.Store.SeedFile)
		if err != nil {
			return nil, cleanup, err
		}
		log.Info("orders seeded", zap.Int("count", n), zap.String("file", cfg.Store.SeedFile))
	}
	return &app{
		products: productRepo,
		designs:  designRepo,
		promoter: &design.Promoter{Designs: designRepo, Products: productRepo, BasePrice: cfg.Catalog.DesignBasePrice},
		orders:   orderRepo,
		assets:   store,
		maxBytes: cfg.HTTP.MaxUploadBytes,
		log:      log,
	}, cleanup, nil
}
