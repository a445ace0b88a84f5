package worker

import (
	"context"
	"log"
	"time"

	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

// InventoryWorker consumes package events and keeps the Redis product cache
// in step with archival stock decrements, warning when stock runs low.
type InventoryWorker struct {
	consumer          *broker.Consumer
	eventHandler      *broker.EventHandler
	store             *store.Store
	redis             *redisclient.Client
	cacheTTL          time.Duration
	lowStockThreshold int
	logger            *zap.Logger
}

// NewInventoryWorker creates a new inventory worker
func NewInventoryWorker(
	consumer *broker.Consumer,
	store *store.Store,
	redis *redisclient.Client,
	cacheTTL time.Duration,
	lowStockThreshold int,
) *InventoryWorker {
	w := &InventoryWorker{
		consumer:          consumer,
		store:             store,
		redis:             redis,
		cacheTTL:          cacheTTL,
		lowStockThreshold: lowStockThreshold,
		logger:            util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnPackageArchived(w.handlePackageArchived)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *InventoryWorker) Start(ctx context.Context) error {
	log.Println("Starting inventory worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *InventoryWorker) Stop() error {
	log.Println("Stopping inventory worker...")
	return w.consumer.Close()
}

// handlePackageArchived refreshes the cache entry for every product the
// archived package decremented. Processing is idempotent per event id.
func (w *InventoryWorker) handlePackageArchived(ctx context.Context, event *models.PackageArchivedEvent) error {
	processed, err := w.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return err
	}
	if processed {
		w.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	for _, line := range event.Manifest {
		product, err := w.store.GetProductByID(ctx, line.ProductID)
		if err != nil {
			w.logger.Error("Failed to read product",
				zap.String("product_id", line.ProductID),
				zap.Error(err))
			continue
		}
		if product == nil {
			continue
		}

		if err := w.redis.CacheProduct(ctx, product.ID, product.Name, product.Quantity, w.cacheTTL); err != nil {
			w.logger.Error("Failed to refresh product cache",
				zap.String("product_id", product.ID),
				zap.Error(err))
		}

		if product.Quantity < w.lowStockThreshold {
			util.LowStockWarningsTotal.Inc()
			w.logger.Warn("Product stock is low",
				zap.String("product_id", product.ID),
				zap.String("name", product.Name),
				zap.Int("quantity", product.Quantity))
		}
	}

	if err := w.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		w.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	w.logger.Info("Inventory cache refreshed after archive",
		zap.String("package_id", event.PackageID),
		zap.Int("products", len(event.Manifest)))
	return nil
}
