package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/obrakomarvelouss/gpower/internal/cart"
	"github.com/obrakomarvelouss/gpower/internal/category"
	"github.com/obrakomarvelouss/gpower/internal/config"
	"github.com/obrakomarvelouss/gpower/internal/contact"
	"github.com/obrakomarvelouss/gpower/internal/gateway"
	"github.com/obrakomarvelouss/gpower/internal/logger"
	"github.com/obrakomarvelouss/gpower/internal/metrics"
	"github.com/obrakomarvelouss/gpower/internal/middleware"
	"github.com/obrakomarvelouss/gpower/internal/product"
	"github.com/obrakomarvelouss/gpower/internal/session"
	"github.com/obrakomarvelouss/gpower/internal/storefront"
	"github.com/obrakomarvelouss/gpower/internal/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	gw, closeGW, err := openGateway(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open data gateway")
	}
	defer closeGW()

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		log.Warn("JWT_SECRET is not set; using a random secret, tokens will not survive a restart")
	}

	stop := make(chan struct{})
	app := newApp(cfg, gw, log, stop)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		close(stop)
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "backend": cfg.Backend}).Info("starting server")
	if err := app.Listen(cfg.Addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// newApp builds the Fiber app with every route registered. stop ends the
// rate limiter's background cleanup.
func newApp(cfg config.Config, gw gateway.Gateway, log *logrus.Logger, stop <-chan struct{}) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(recover.New())
	app.Use(middleware.CORS(cfg.CORSOrigins))
	app.Use(metrics.Middleware())
	app.Use(session.Middleware(log, cfg.CookieSecure))
	app.Use(logger.Middleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	productService := product.NewService(product.NewGatewayRepository(gw))
	cartService := cart.NewService(cart.NewGatewayRepository(gw), productService, log)
	userHandler := user.NewHandler(user.NewService(user.NewGatewayRepository(gw)), cfg.JWTSecret, log)

	limiter := middleware.NewRateLimiter(cfg.FormRate, cfg.FormBurst, log)
	limiter.StartCleanup(time.Minute, 10*time.Minute, stop)

	category.NewHandler().RegisterPublicRoutes(app)
	product.NewHandler(productService, log).RegisterPublicRoutes(app)
	cart.NewHandler(cartService, log).RegisterRoutes(app)
	contact.NewHandler(contact.NewService(gw), log).RegisterPublicRoutes(app, limiter.Handler())
	storefront.NewHandler(storefront.NewComposer(productService, cartService, log)).RegisterRoutes(app)
	userHandler.RegisterPublicRoutes(app)

	app.Use("/api/v1/account", jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
	}))
	userHandler.RegisterProtectedRoutes(app)

	return app
}

// openGateway picks the data backend. The returned func releases whatever
// the backend holds.
func openGateway(cfg config.Config, log logrus.FieldLogger) (gateway.Gateway, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		db, err := openDB(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := gateway.Migrate(db); err != nil {
				db.Close()
				return nil, nil, err
			}
			log.Info("database schema is up to date")
		}
		return gateway.NewPostgres(db), func() { db.Close() }, nil

	case config.BackendREST:
		gw, err := gateway.NewREST(gateway.RESTConfig{
			URL:     cfg.SupabaseURL,
			APIKey:  cfg.SupabaseKey,
			Timeout: cfg.HTTPTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return gw, func() {}, nil

	default:
		mem := gateway.NewMemory()
		if err := mem.Seed(context.Background(), gateway.TableProducts, product.SampleCatalog()...); err != nil {
			return nil, nil, err
		}
		log.Info("using in-memory backend seeded with the sample catalog")
		return mem, func() {}, nil
	}
}

func openDB(dbURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
