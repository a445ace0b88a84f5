package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/broker"
	"warehouse-service/internal/models"
	"warehouse-service/internal/store"
	"warehouse-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PackageService owns the package lifecycle: creation from a product
// selection, assignment, archival with inventory decrement.
type PackageService struct {
	store          *store.Store
	products       *ProductService
	sessions       SessionStore
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewPackageService creates a new package service
func NewPackageService(
	store *store.Store,
	products *ProductService,
	sessions SessionStore,
	eventPublisher *broker.EventPublisher,
) *PackageService {
	return &PackageService{
		store:          store,
		products:       products,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreatePackageRequest represents a request to create a package. Items maps
// product id to ordered quantity.
type CreatePackageRequest struct {
	Items map[string]int `json:"items" binding:"required"`
}

// ManifestLine is one manifest entry enriched with the product's name
type ManifestLine struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// PackageView is a package together with its manifest
type PackageView struct {
	models.Package
	Manifest []ManifestLine `json:"manifest"`
}

// CreatePackage validates the selection and persists a new unassigned
// package. No stock is reserved or decremented at creation time; on-hand
// inventory is only adjusted at archival.
func (s *PackageService) CreatePackage(ctx context.Context, sess *auth.Session, req *CreatePackageRequest) (*models.Package, error) {
	ctx, span := util.StartSpan(ctx, "PackageService.CreatePackage")
	defer span.End()

	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: package manifest must not be empty", ErrValidation)
	}

	productIDs := make([]string, 0, len(req.Items))
	for productID, quantity := range req.Items {
		if quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product %s must be positive", ErrValidation, productID)
		}
		productIDs = append(productIDs, productID)
	}

	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		util.PackagesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to validate products: %w", err)
	}
	if len(products) != len(productIDs) {
		util.PackagesFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, fmt.Errorf("%w: some products not found", ErrValidation)
	}

	for _, product := range products {
		if req.Items[product.ID] > product.Quantity {
			util.PackagesFailedTotal.WithLabelValues("invalid_items").Inc()
			return nil, fmt.Errorf("%w: ordered quantity for %s exceeds on-hand stock", ErrValidation, product.ID)
		}
	}

	pkg := &models.Package{
		ID:         uuid.New().String(),
		CreatedBy:  sess.Username,
		AssignedTo: models.UnassignedSentinel,
		Done:       false,
		Version:    0,
	}

	sort.Strings(productIDs)
	items := make([]models.PackageItem, 0, len(productIDs))
	manifest := make([]models.ManifestLineData, 0, len(productIDs))
	for _, productID := range productIDs {
		items = append(items, models.PackageItem{
			PackageID: pkg.ID,
			ProductID: productID,
			Quantity:  req.Items[productID],
		})
		manifest = append(manifest, models.ManifestLineData{
			ProductID: productID,
			Quantity:  req.Items[productID],
		})
	}

	if err := s.store.CreatePackageTx(ctx, pkg, items); err != nil {
		util.PackagesFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create package: %w", err)
	}

	util.PackagesCreatedTotal.Inc()
	s.logger.Info("Package created",
		zap.String("package_id", pkg.ID),
		zap.String("created_by", sess.Username),
		zap.Int("manifest_lines", len(items)))

	event := &models.PackageCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePackageCreated,
			Timestamp: time.Now(),
		},
		PackageID: pkg.ID,
		CreatedBy: pkg.CreatedBy,
		Manifest:  manifest,
	}
	if err := s.eventPublisher.PublishPackageCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish PackageCreated event", zap.Error(err))
	}

	return pkg, nil
}

// ListPackages returns active packages in the requested filter mode:
// "unassigned" matches the empty-assignee sentinel, "assigned" everything
// else, optionally narrowed to one assignee. The free-text query is applied
// after the store query, case-insensitively against package id and assignee.
func (s *PackageService) ListPackages(ctx context.Context, filter, assignee, query string) ([]PackageView, error) {
	var packages []models.Package
	var err error

	switch filter {
	case models.FilterAssigned:
		packages, err = s.store.GetAssignedPackages(ctx, assignee)
	default:
		packages, err = s.store.GetUnassignedPackages(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}

	packages = FilterPackages(packages, query)

	views := make([]PackageView, 0, len(packages))
	for _, pkg := range packages {
		manifest, err := s.manifestView(ctx, pkg.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, PackageView{Package: pkg, Manifest: manifest})
	}
	return views, nil
}

// FilterPackages narrows a package list by a case-insensitive free-text
// query against package id and assignee. An empty query matches everything.
func FilterPackages(packages []models.Package, query string) []models.Package {
	if query == "" {
		return packages
	}

	q := strings.ToLower(query)
	filtered := make([]models.Package, 0, len(packages))
	for _, pkg := range packages {
		if strings.Contains(strings.ToLower(pkg.ID), q) ||
			strings.Contains(strings.ToLower(pkg.AssignedTo), q) {
			filtered = append(filtered, pkg)
		}
	}
	return filtered
}

// GetPackage retrieves one active package with its manifest
func (s *PackageService) GetPackage(ctx context.Context, packageID string) (*PackageView, error) {
	pkg, err := s.store.GetPackageByID(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return nil, ErrNotFound
	}

	manifest, err := s.manifestView(ctx, packageID)
	if err != nil {
		return nil, err
	}
	return &PackageView{Package: *pkg, Manifest: manifest}, nil
}

func (s *PackageService) manifestView(ctx context.Context, packageID string) ([]ManifestLine, error) {
	items, err := s.store.GetPackageItems(ctx, packageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest: %w", err)
	}

	lines := make([]ManifestLine, 0, len(items))
	for _, item := range items {
		name, err := s.products.ProductName(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, ManifestLine{
			ProductID:   item.ProductID,
			ProductName: name,
			Quantity:    item.Quantity,
		})
	}
	return lines, nil
}

// AssignPackage assigns a package to the calling user, conditioned on the
// expected version. Assignment is one-way; there is no unassign operation.
// A stale version yields a retryable ErrConflict instead of silently
// overwriting a concurrent assignment.
func (s *PackageService) AssignPackage(ctx context.Context, sess *auth.Session, packageID string, version int64) error {
	ctx, span := util.StartSpan(ctx, "PackageService.AssignPackage")
	defer span.End()

	pkg, err := s.store.GetPackageByID(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return ErrNotFound
	}

	if err := s.store.AssignPackage(ctx, packageID, sess.Username, version); err != nil {
		if isNoRows(err) {
			util.AssignConflictsTotal.Inc()
			return fmt.Errorf("%w: package was modified by another worker", ErrConflict)
		}
		return fmt.Errorf("failed to assign package: %w", err)
	}

	util.PackagesAssignedTotal.Inc()
	s.logger.Info("Package assigned",
		zap.String("package_id", packageID),
		zap.String("assigned_to", sess.Username))

	event := &models.PackageAssignedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePackageAssigned,
			Timestamp: time.Now(),
		},
		PackageID:  packageID,
		AssignedTo: sess.Username,
	}
	if err := s.eventPublisher.PublishPackageAssigned(ctx, event); err != nil {
		s.logger.Error("Failed to publish PackageAssigned event", zap.Error(err))
	}

	return nil
}

// DeletePackage removes a package unconditionally. Manager capability is
// required and re-checked here, not only at the HTTP boundary.
func (s *PackageService) DeletePackage(ctx context.Context, sess *auth.Session, packageID string) error {
	ctx, span := util.StartSpan(ctx, "PackageService.DeletePackage")
	defer span.End()

	if !sess.IsManager {
		return fmt.Errorf("%w: deleting packages requires the manager capability", ErrForbidden)
	}

	if err := s.store.DeletePackage(ctx, packageID); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete package: %w", err)
	}

	if err := s.sessions.Clear(ctx, packageID); err != nil {
		s.logger.Warn("Failed to clear pick session",
			zap.String("package_id", packageID),
			zap.Error(err))
	}

	util.PackagesDeletedTotal.Inc()
	s.logger.Info("Package deleted",
		zap.String("package_id", packageID),
		zap.String("deleted_by", sess.Username))

	event := &models.PackageDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePackageDeleted,
			Timestamp: time.Now(),
		},
		PackageID: packageID,
		DeletedBy: sess.Username,
	}
	if err := s.eventPublisher.PublishPackageDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish PackageDeleted event", zap.Error(err))
	}

	return nil
}

// ArchivePackage completes a package: every manifest line must already be
// scan-confirmed, then one transaction decrements stock, copies the record
// into the archive and deletes the active record.
func (s *PackageService) ArchivePackage(ctx context.Context, sess *auth.Session, packageID string) error {
	ctx, span := util.StartSpan(ctx, "PackageService.ArchivePackage")
	defer span.End()

	start := time.Now()
	defer func() {
		util.ArchiveLatency.Observe(time.Since(start).Seconds())
	}()

	pkg, err := s.store.GetPackageByID(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to get package: %w", err)
	}
	if pkg == nil {
		return ErrNotFound
	}

	items, err := s.store.GetPackageItems(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to get manifest: %w", err)
	}

	confirmed, err := s.sessions.Confirmed(ctx, packageID)
	if err != nil {
		return fmt.Errorf("failed to read pick session: %w", err)
	}
	if !ManifestComplete(items, confirmed) {
		util.PackagesFailedTotal.WithLabelValues("not_ready").Inc()
		return fmt.Errorf("%w: %d of %d products confirmed", ErrNotReady, len(confirmed), len(items))
	}

	if err := s.store.ArchivePackageTx(ctx, packageID, sess.Username, time.Now()); err != nil {
		if isNoRows(err) {
			return ErrNotFound
		}
		util.PackagesFailedTotal.WithLabelValues("db_error").Inc()
		return fmt.Errorf("failed to archive package: %w", err)
	}

	if err := s.sessions.Clear(ctx, packageID); err != nil {
		s.logger.Warn("Failed to clear pick session",
			zap.String("package_id", packageID),
			zap.Error(err))
	}

	util.PackagesArchivedTotal.Inc()
	s.logger.Info("Package archived",
		zap.String("package_id", packageID),
		zap.String("archived_by", sess.Username))

	manifest := make([]models.ManifestLineData, 0, len(items))
	for _, item := range items {
		manifest = append(manifest, models.ManifestLineData{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	event := &models.PackageArchivedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePackageArchived,
			Timestamp: time.Now(),
		},
		PackageID:  packageID,
		ArchivedBy: sess.Username,
		Manifest:   manifest,
	}
	if err := s.eventPublisher.PublishPackageArchived(ctx, event); err != nil {
		s.logger.Error("Failed to publish PackageArchived event", zap.Error(err))
	}

	return nil
}

// ListArchivedPackages returns archived packages, newest first
func (s *PackageService) ListArchivedPackages(ctx context.Context, assignee string) ([]models.ArchivedPackage, error) {
	packages, err := s.store.GetArchivedPackages(ctx, assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived packages: %w", err)
	}
	return packages, nil
}

// ManifestComplete reports whether every distinct manifest product has been
// confirmed. Confirmed entries outside the manifest do not count.
func ManifestComplete(items []models.PackageItem, confirmed []string) bool {
	if len(items) == 0 {
		return false
	}

	confirmedSet := make(map[string]struct{}, len(confirmed))
	for _, id := range confirmed {
		confirmedSet[id] = struct{}{}
	}

	for _, item := range items {
		if _, ok := confirmedSet[item.ProductID]; !ok {
			return false
		}
	}
	return true
}
