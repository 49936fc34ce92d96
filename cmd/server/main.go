package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bestea-be/internal/api"
	"bestea-be/internal/cart"
	"bestea-be/internal/config"
	"bestea-be/internal/coupon"
	"bestea-be/internal/db"
	"bestea-be/internal/logger"
	"bestea-be/internal/metrics"
	"bestea-be/internal/middleware"
	"bestea-be/internal/notification"
	"bestea-be/internal/order"
	"bestea-be/internal/payment"
	"bestea-be/internal/pricing"
	"bestea-be/internal/product"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	log := logger.L()

	database := db.InitDB(cfg)
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coupons, err := couponSource(cfg, database)
	if err != nil {
		log.Fatal("invalid coupon table", zap.Error(err))
	}

	publisher := notificationPublisher(cfg)
	dispatcher := notification.NewDispatcher(publisher, dispatcherConfig(cfg), metrics.Default)

	policy := pricingPolicy(cfg)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)
	couponSvc := coupon.NewService(coupons)
	paymentRepo := payment.NewRepository(database)

	orderSvc := order.NewService(
		order.NewRepository(database),
		productRepo,
		couponSvc,
		paymentRepo,
		order.Config{
			Pricing:            policy,
			CancellationWindow: cfg.Policy.CancellationWindow,
			NumberPrefix:       cfg.Policy.OrderNumberPrefix,
		},
		order.WithNotifier(dispatcher),
	)
	cartSvc := cart.NewService(cart.NewRepository(database), productRepo, couponSvc, policy)

	limiter := middleware.NewLimiter(cfg.InternalSecretKey)
	go limiter.Run(ctx)

	router := api.NewRouter(&api.Handler{
		OrderSvc:   orderSvc,
		ProductSvc: productSvc,
		CartSvc:    cartSvc,
		CouponSvc:  couponSvc,
		Metrics:    metrics.Default,
		Pricing:    policy,
	}, api.RouterConfig{
		JWTSecret:  cfg.JWTSecret,
		CORSOrigin: cfg.CORSOrigin,
		Limiter:    limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		log.Error("notification dispatcher shutdown", zap.Error(err))
	}
}

func pricingPolicy(cfg *config.Config) pricing.Policy {
	return pricing.Policy{
		FreeShippingThreshold: cfg.Policy.FreeShippingThreshold,
		ShippingFee:           cfg.Policy.ShippingFee,
		TaxRate:               cfg.Policy.TaxRate,
		CODFee:                cfg.Policy.CODFee,
	}
}

// couponSource prefers the COUPONS table from the environment and falls
// back to the coupons table in the database.
func couponSource(cfg *config.Config, database *sql.DB) (coupon.Source, error) {
	if cfg.Policy.StaticCoupons == "" {
		return coupon.NewRepository(database), nil
	}
	list, err := coupon.ParseTable(cfg.Policy.StaticCoupons)
	if err != nil {
		return nil, fmt.Errorf("COUPONS: %w", err)
	}
	return coupon.NewStaticSource(list...), nil
}

func dispatcherConfig(cfg *config.Config) notification.DispatcherConfig {
	dc := notification.DefaultDispatcherConfig()
	dc.Workers = cfg.NotificationWorkers
	dc.QueueSize = cfg.NotificationQueueSize
	return dc
}

// notificationPublisher falls back to logging when no broker is configured
// or the broker cannot be reached at startup.
func notificationPublisher(cfg *config.Config) notification.Publisher {
	if cfg.RabbitMQURL == "" {
		logger.L().Info("RABBITMQ_URL not set, order notifications go to the log")
		return notification.LogPublisher{}
	}

	pub, err := notification.NewRabbitMQPublisher(notification.RabbitMQConfig{
		URL:      cfg.RabbitMQURL,
		Exchange: cfg.RabbitMQExchange,
	})
	if err != nil {
		logger.L().Error("rabbitmq unavailable, order notifications go to the log", zap.Error(err))
		return notification.LogPublisher{}
	}
	return pub
}
