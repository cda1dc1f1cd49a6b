package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rmartinelli/shopcart-backend/api/routes"
	"github.com/rmartinelli/shopcart-backend/internal/auth"
	"github.com/rmartinelli/shopcart-backend/internal/categories"
	"github.com/rmartinelli/shopcart-backend/internal/coupons"
	"github.com/rmartinelli/shopcart-backend/internal/deliveries"
	"github.com/rmartinelli/shopcart-backend/internal/orders"
	"github.com/rmartinelli/shopcart-backend/internal/products"
	"github.com/rmartinelli/shopcart-backend/internal/users"
	"github.com/rmartinelli/shopcart-backend/pkg/config"
	"github.com/rmartinelli/shopcart-backend/pkg/db"
	"github.com/rmartinelli/shopcart-backend/pkg/logger"
	"github.com/rmartinelli/shopcart-backend/pkg/metrics"
	"github.com/rmartinelli/shopcart-backend/pkg/migrate"
	"github.com/rmartinelli/shopcart-backend/pkg/redis"
	"github.com/rmartinelli/shopcart-backend/pkg/storage/local"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, login rate limiting disabled")
	}

	imageStore, err := local.NewStore(cfg.Uploads)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload directory", err)
		os.Exit(1)
	}

	conn := dbClient.DB()

	userRepo := users.NewRepository(conn)
	userService, err := users.NewService(userRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create user service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(userRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	categoryRepo := categories.NewRepository(conn)
	categoryService, err := categories.NewService(categoryRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create category service", err)
		os.Exit(1)
	}

	productRepo := products.NewRepository(conn)
	productService, err := products.NewService(productRepo, imageStore, categoryRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	couponService, err := coupons.NewService(coupons.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create coupon service", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(conn)
	orderService, err := orders.NewService(dbClient, orderRepo, productRepo, couponService, nil, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	deliveryService, err := deliveries.NewService(dbClient, deliveries.NewRepository(conn), orderRepo, productRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create delivery service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			HTTPMetrics:     metrics.NewHTTPMetrics(registry),
			MetricsGatherer: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ImageStore:      imageStore,
			AuthService:     authService,
			UserService:     userService,
			CategoryService: categoryService,
			ProductService:  productService,
			CouponService:   couponService,
			OrderService:    orderService,
			DeliveryService: deliveryService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
