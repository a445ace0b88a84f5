package service

import (
	"context"
	"fmt"

	"warehouse-service/internal/models"
	"warehouse-service/internal/redisclient"
	"warehouse-service/internal/util"

	"go.uber.org/zap"
)

// SessionStore persists the per-package confirmed-pick set. Confirming is
// idempotent; set semantics hold.
type SessionStore interface {
	Confirm(ctx context.Context, packageID, productID string) (int, error)
	Confirmed(ctx context.Context, packageID string) ([]string, error)
	Clear(ctx context.Context, packageID string) error
}

// RedisSessionStore backs pick sessions with Redis sets so partial progress
// survives UI re-entry and process restarts.
type RedisSessionStore struct {
	redis *redisclient.Client
}

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(redis *redisclient.Client) *RedisSessionStore {
	return &RedisSessionStore{redis: redis}
}

func (r *RedisSessionStore) Confirm(ctx context.Context, packageID, productID string) (int, error) {
	return r.redis.ConfirmScan(ctx, packageID, productID)
}

func (r *RedisSessionStore) Confirmed(ctx context.Context, packageID string) ([]string, error) {
	return r.redis.GetConfirmed(ctx, packageID)
}

func (r *RedisSessionStore) Clear(ctx context.Context, packageID string) error {
	return r.redis.ClearConfirmed(ctx, packageID)
}

// ManifestSource supplies packages and their manifests to the verification
// flow. Satisfied by the database store.
type ManifestSource interface {
	GetPackageByID(ctx context.Context, id string) (*models.Package, error)
	GetPackageItems(ctx context.Context, packageID string) ([]models.PackageItem, error)
}

// NameResolver resolves product display names. Satisfied by ProductService.
type NameResolver interface {
	ProductName(ctx context.Context, productID string) (string, error)
}

// VerifyService tracks scan-by-scan pick verification against a package's
// manifest. There is no server-held pending-scan state: a cancelled scan
// changes nothing, idempotently.
type VerifyService struct {
	manifests ManifestSource
	sessions  SessionStore
	products  NameResolver
	logger    *zap.Logger
}

// NewVerifyService creates a new verification service
func NewVerifyService(manifests ManifestSource, sessions SessionStore, products NameResolver) *VerifyService {
	return &VerifyService{
		manifests: manifests,
		sessions:  sessions,
		products:  products,
		logger:    util.GetLogger(),
	}
}

// SessionLine is one manifest line with its confirmation state
type SessionLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Confirmed   bool   `json:"confirmed"`
}

// SessionView is the state of one package's pick verification. Complete is
// recomputed from the confirmed set on every call.
type SessionView struct {
	PackageID string        `json:"package_id"`
	Lines     []SessionLine `json:"lines"`
	Confirmed int           `json:"confirmed"`
	Total     int           `json:"total"`
	Complete  bool          `json:"complete"`
}

// ConfirmScanRequest represents a scan result for one manifest line.
// ProductID is the line the picker chose to scan; Token is the decoded code.
type ConfirmScanRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Token     string `json:"token" binding:"required"`
}

// Session loads the verification state for a package, seeded from persisted
// partial-scan progress.
func (vs *VerifyService) Session(ctx context.Context, packageID string) (*SessionView, error) {
	pkg, err := vs.manifests.GetPackageByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return nil, ErrNotFound
	}

	items, err := vs.manifests.GetPackageItems(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}

	confirmed, err := vs.sessions.Confirmed(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pick session: %w", err)
	}

	return vs.buildView(ctx, packageID, items, confirmed)
}

// ConfirmScan checks a decoded token against the manifest line the picker
// selected. The token must equal that exact product's id, not just any
// remaining manifest product. A match persists the confirmation; a mismatch
// leaves the session unchanged and is retryable.
func (vs *VerifyService) ConfirmScan(ctx context.Context, packageID string, req *ConfirmScanRequest) (*SessionView, error) {
	ctx, span := util.StartSpan(ctx, "VerifyService.ConfirmScan")
	defer span.End()

	pkg, err := vs.manifests.GetPackageByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return nil, ErrNotFound
	}

	items, err := vs.manifests.GetPackageItems(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}

	inManifest := false
	for _, item := range items {
		if item.ProductID == req.ProductID {
			inManifest = true
			break
		}
	}
	if !inManifest {
		return nil, fmt.Errorf("%w: product %s is not in this package's manifest", ErrValidation, req.ProductID)
	}

	if req.Token != req.ProductID {
		util.ScansMismatchedTotal.Inc()
		vs.logger.Info("Scan mismatch",
			zap.String("package_id", packageID),
			zap.String("expected", req.ProductID))
		return nil, ErrScanMismatch
	}

	if _, err := vs.sessions.Confirm(ctx, packageID, req.ProductID); err != nil {
		return nil, fmt.Errorf("failed to persist confirmation: %w", err)
	}

	util.ScansConfirmedTotal.Inc()
	vs.logger.Info("Product scan confirmed",
		zap.String("package_id", packageID),
		zap.String("product_id", req.ProductID))

	confirmed, err := vs.sessions.Confirmed(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to read pick session: %w", err)
	}

	return vs.buildView(ctx, packageID, items, confirmed)
}

func (vs *VerifyService) buildView(ctx context.Context, packageID string, items []models.PackageItem, confirmed []string) (*SessionView, error) {
	confirmedSet := make(map[string]struct{}, len(confirmed))
	for _, id := range confirmed {
		confirmedSet[id] = struct{}{}
	}

	lines := make([]SessionLine, 0, len(items))
	confirmedCount := 0
	for _, item := range items {
		_, ok := confirmedSet[item.ProductID]
		if ok {
			confirmedCount++
		}

		name, err := vs.products.ProductName(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, SessionLine{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
			Confirmed:   ok,
		})
	}

	return &SessionView{
		PackageID: packageID,
		Lines:     lines,
		Confirmed: confirmedCount,
		Total:     len(items),
		Complete:  ManifestComplete(items, confirmed),
	}, nil
}
