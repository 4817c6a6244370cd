package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/akarpov/go_shop/internal/cart"
	"github.com/akarpov/go_shop/internal/catalog"
	"github.com/akarpov/go_shop/internal/checkout"
	h "github.com/akarpov/go_shop/internal/http"
	"github.com/akarpov/go_shop/internal/orderstore"
	"github.com/akarpov/go_shop/internal/payment"
	"github.com/akarpov/go_shop/internal/publisher"
)

type Config struct {
	HTTPPort string
	BaseURL  string
	Currency string

	DBHost            string
	DBPort            int
	DBUser            string
	DBPassword        string
	DBName            string
	MigrationsDirPath string

	MongoURI string
	MongoDB  string

	RedisAddr    string
	KafkaBrokers []string

	GatewayBaseURL       string
	GatewaySecretKey     string
	GatewayWebhookSecret string

	JWTSecret string

	RequestTimeout  time.Duration
	GatewayTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}

	return &Config{
		HTTPPort: getEnv("HTTP_PORT", "8080"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		Currency: getEnv("CURRENCY", "usd"),

		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            dbPort,
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "go_shop"),
		MigrationsDirPath: getEnv("MIGRATIONS_DIR", "./internal/orderstore/migrations"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "go_shop"),

		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: brokers,

		GatewayBaseURL:       getEnv("GATEWAY_BASE_URL", "https://api.gateway.example.com"),
		GatewaySecretKey:     os.Getenv("GATEWAY_SECRET_KEY"),
		GatewayWebhookSecret: os.Getenv("GATEWAY_WEBHOOK_SECRET"),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),

		RequestTimeout:  30 * time.Second,
		GatewayTimeout:  10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()
	ctx := context.Background()

	// Order store: postgres when configured, otherwise in-memory (dev).
	var orders orderstore.OrderRepository
	if cfg.DBHost != "" {
		cred := &orderstore.Credentials{
			Host:              cfg.DBHost,
			Port:              cfg.DBPort,
			User:              cfg.DBUser,
			Password:          cfg.DBPassword,
			DBName:            cfg.DBName,
			MigrationsDirPath: cfg.MigrationsDirPath,
		}
		repo, err := orderstore.NewRepository(cred)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		if err := repo.RunMigrations(cred); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		orders = repo
		log.Println("order store: postgres")
	} else {
		orders = orderstore.NewMemoryRepository()
		log.Println("order store: in-memory (no DB_HOST configured)")
	}
	defer orders.Close()

	// Catalog: mongo when configured, otherwise in-memory (dev).
	var products catalog.Store
	if cfg.MongoURI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		cancel()
		if err != nil {
			log.Fatalf("failed to connect to mongo: %v", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("failed to disconnect mongo: %v", err)
			}
		}()
		products = catalog.NewMongoStore(client.Database(cfg.MongoDB))
		log.Println("catalog store: mongo")
	} else {
		products = catalog.NewMemoryStore()
		log.Println("catalog store: in-memory (no MONGO_URI configured)")
	}

	catalogService := catalog.NewService(products)

	// Carts: redis when configured, otherwise in-memory (dev).
	var carts cart.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		carts = cart.NewRedisStore(redisClient)
		catalogService.SetRedisClient(redisClient)
		log.Println("cart store: redis")
	} else {
		carts = cart.NewMemoryStore()
		log.Println("cart store: in-memory (no REDIS_ADDR configured)")
	}

	gateway := payment.NewHTTPClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey, cfg.GatewayTimeout)

	checkoutService := checkout.NewService(orders, catalogService, carts, gateway, checkout.Config{
		BaseURL:       cfg.BaseURL,
		Currency:      cfg.Currency,
		WebhookSecret: cfg.GatewayWebhookSecret,
	})

	if len(cfg.KafkaBrokers) > 0 {
		pub := publisher.NewKafkaPublisher(cfg.KafkaBrokers...)
		defer pub.Close()
		checkoutService.SetPublisher(pub)
		log.Printf("order events: kafka %v", cfg.KafkaBrokers)
	}

	cartHandler := h.NewCartHandler(carts, catalogService, cfg.RequestTimeout)
	checkoutHandler := h.NewCheckoutHandler(checkoutService, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(checkoutService, cfg.RequestTimeout)
	productHandler := h.NewProductHandler(catalogService, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(checkoutService, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.AuthMiddleware(cfg.JWTSecret))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Gateway callbacks
	r.Post("/webhook/payment", webhookHandler.HandleEvent)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
		})

		r.Post("/checkout", checkoutHandler.StartCheckout)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordersHandler.ListOrders)
			r.Get("/{order_id}", ordersHandler.GetOrder)
			r.Post("/{order_id}/confirm", checkoutHandler.ConfirmPayment)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.ListProducts)
			r.Get("/{product_id}", productHandler.GetProduct)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.AdminOnly)
			r.Get("/stats", ordersHandler.GetStats)
			r.Post("/products", productHandler.CreateProduct)
			r.Put("/products/{product_id}", productHandler.UpdateProduct)
			r.Delete("/products/{product_id}", productHandler.DeleteProduct)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "go-shop"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}
