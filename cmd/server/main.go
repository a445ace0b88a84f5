package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse-service/config"
	"warehouse-service/internal/api"
	"warehouse-service/internal/auth"
	"warehouse-service/internal/broker"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/service"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"
	"warehouse-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting warehouse service")

	tp, err := util.InitTracer("warehouse-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	if err := store.Migrate(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations applied")

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicPackages)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	cacheTTL := time.Duration(cfg.Warehouse.ProductCacheTTLHours) * time.Hour
	sessionTTL := time.Duration(cfg.Warehouse.SessionTTLMinutes) * time.Minute

	sessionStore := service.NewRedisSessionStore(redisClient)
	productService := service.NewProductService(db, redisClient, cacheTTL)
	packageService := service.NewPackageService(db, productService, sessionStore, eventPublisher)
	verifyService := service.NewVerifyService(db, sessionStore, productService)
	userService := service.NewUserService(db)
	authManager := auth.NewManager(db, redisClient, sessionTTL)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicPackages, cfg.Kafka.ConsumerGroup)
	inventoryWorker := worker.NewInventoryWorker(consumer, db, redisClient, cacheTTL, cfg.Warehouse.LowStockThreshold)
	go func() {
		if err := inventoryWorker.Start(workerCtx); err != nil {
			log.Printf("Inventory worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// SetupRoutes installs recovery, metrics and logging itself; starting
	// from a bare engine keeps each from running twice per request.
	router := gin.New()
	handler := api.NewHandler(packageService, productService, verifyService, userService, authManager)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	inventoryWorker.Stop()

	log.Println("Server exited")
}
