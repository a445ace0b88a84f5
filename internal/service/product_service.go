package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService handles catalog operations
type ProductService struct {
	store    *store.Store
	redis    *redisclient.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(store *store.Store, redis *redisclient.Client, cacheTTL time.Duration) *ProductService {
	return &ProductService{
		store:    store,
		redis:    redis,
		cacheTTL: cacheTTL,
		logger:   util.GetLogger(),
	}
}

// AddProductRequest represents a request to add a product
type AddProductRequest struct {
	Name        string `json:"name" binding:"required"`
	Producer    string `json:"producer"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// ListProducts returns catalog products ordered by name, narrowed by a
// case-insensitive free-text query against one of name, producer or id.
func (ps *ProductService) ListProducts(ctx context.Context, filter, query string) ([]models.Product, error) {
	products, err := ps.store.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return FilterProducts(products, filter, query), nil
}

// FilterProducts narrows a product list the way the catalog search does.
// An empty query matches everything.
func FilterProducts(products []models.Product, filter, query string) []models.Product {
	if query == "" {
		return products
	}

	q := strings.ToLower(query)
	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		var field string
		switch filter {
		case models.ProductFilterProducer:
			field = p.Producer
		case models.ProductFilterID:
			field = p.ID
		default:
			field = p.Name
		}
		if strings.Contains(strings.ToLower(field), q) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// GetProduct retrieves one product
func (ps *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := ps.store.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// AddProduct creates a catalog product. The scannable token is the product's
// own id.
func (ps *ProductService) AddProduct(ctx context.Context, sess *auth.Session, req *AddProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "ProductService.AddProduct")
	defer span.End()

	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: product name must not be blank", ErrValidation)
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	id := uuid.New().String()
	product := &models.Product{
		ID:          id,
		Name:        req.Name,
		Producer:    req.Producer,
		Description: req.Description,
		Quantity:    req.Quantity,
		QRCode:      id,
		AddedBy:     sess.Username,
	}

	if err := ps.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	ps.logger.Info("Product added",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("added_by", sess.Username))

	return product, nil
}

// UpdateProduct replaces a product record and invalidates its cache entry
func (ps *ProductService) UpdateProduct(ctx context.Context, sess *auth.Session, product *models.Product) error {
	ctx, span := util.StartSpan(ctx, "ProductService.UpdateProduct")
	defer span.End()

	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name must not be blank", ErrValidation)
	}
	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", ErrValidation)
	}

	if err := ps.store.UpdateProduct(ctx, product); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	if err := ps.redis.InvalidateProduct(ctx, product.ID); err != nil {
		ps.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}

	return nil
}

// DeleteProduct removes a product. Refused while any active package manifest
// still references it.
func (ps *ProductService) DeleteProduct(ctx context.Context, sess *auth.Session, id string) error {
	ctx, span := util.StartSpan(ctx, "ProductService.DeleteProduct")
	defer span.End()

	referenced, err := ps.store.ProductReferenced(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check references: %w", err)
	}
	if referenced {
		return fmt.Errorf("%w: product is referenced by an open package", ErrConflict)
	}

	if err := ps.store.DeleteProduct(ctx, id); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if err := ps.redis.InvalidateProduct(ctx, id); err != nil {
		ps.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", id),
			zap.Error(err))
	}

	ps.logger.Info("Product deleted",
		zap.String("product_id", id),
		zap.String("deleted_by", sess.Username))

	return nil
}

// ProductName resolves a product's display name through the Redis cache,
// falling back to the store and repopulating the cache on a miss.
func (ps *ProductService) ProductName(ctx context.Context, productID string) (string, error) {
	name, _, hit, err := ps.redis.GetCachedProduct(ctx, productID)
	if err != nil {
		ps.logger.Warn("Product cache read failed",
			zap.String("product_id", productID),
			zap.Error(err))
	}
	if hit {
		return name, nil
	}

	product, err := ps.store.GetProductByID(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		return "Unknown Product", nil
	}

	if err := ps.redis.CacheProduct(ctx, product.ID, product.Name, product.Quantity, ps.cacheTTL); err != nil {
		ps.logger.Warn("Failed to cache product",
			zap.String("product_id", product.ID),
			zap.Error(err))
	}

	return product.Name, nil
}
