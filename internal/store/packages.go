package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"warehouse-service/internal/models"
)

// CreatePackageTx inserts a package and its manifest rows in one transaction.
func (s *Store) CreatePackageTx(ctx context.Context, pkg *models.Package, items []models.PackageItem) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO packages (id, created_by, assigned_to, done, version)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err = tx.GetContext(ctx, &pkg.CreatedAt, query,
		pkg.ID, pkg.CreatedBy, pkg.AssignedTo, pkg.Done, pkg.Version)
	if err != nil {
		return fmt.Errorf("failed to insert package: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO package_items (package_id, product_id, quantity) VALUES ($1, $2, $3)",
			pkg.ID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to insert manifest line: %w", err)
		}
	}

	return tx.Commit()
}

// GetPackageByID retrieves an active package by ID
func (s *Store) GetPackageByID(ctx context.Context, id string) (*models.Package, error) {
	var pkg models.Package
	err := s.db.GetContext(ctx, &pkg, "SELECT * FROM packages WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// GetPackageItems retrieves the manifest of a package
func (s *Store) GetPackageItems(ctx context.Context, packageID string) ([]models.PackageItem, error) {
	var items []models.PackageItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM package_items WHERE package_id = $1 ORDER BY product_id", packageID)
	return items, err
}

// GetUnassignedPackages retrieves active packages with no assignee,
// creation time ascending.
func (s *Store) GetUnassignedPackages(ctx context.Context) ([]models.Package, error) {
	var packages []models.Package
	err := s.db.SelectContext(ctx, &packages,
		"SELECT * FROM packages WHERE assigned_to = '' ORDER BY created_at, id")
	return packages, err
}

// GetAssignedPackages retrieves active packages with an assignee, optionally
// narrowed to one, creation time ascending.
func (s *Store) GetAssignedPackages(ctx context.Context, assignee string) ([]models.Package, error) {
	var packages []models.Package
	if assignee != "" {
		err := s.db.SelectContext(ctx, &packages,
			"SELECT * FROM packages WHERE assigned_to = $1 ORDER BY created_at, id", assignee)
		return packages, err
	}
	err := s.db.SelectContext(ctx, &packages,
		"SELECT * FROM packages WHERE assigned_to <> '' ORDER BY created_at, id")
	return packages, err
}

// AssignPackage sets the assignee, conditioned on the expected version.
// Returns sql.ErrNoRows when the version no longer matches or the package
// is gone, so callers can surface a retryable conflict.
func (s *Store) AssignPackage(ctx context.Context, packageID, username string, version int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE packages SET assigned_to = $1, version = version + 1 WHERE id = $2 AND version = $3",
		username, packageID, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePackage removes a package; manifest rows go with it via cascade.
func (s *Store) DeletePackage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM packages WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchivePackageTx completes a package in one transaction: decrements each
// manifest product's on-hand quantity, copies the record and its manifest
// into the archive tables with done set, and deletes the active record.
// Quantities are decremented without a floor; stock may go negative.
func (s *Store) ArchivePackageTx(ctx context.Context, packageID, archivedBy string, archivedAt time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pkg models.Package
	err = tx.GetContext(ctx, &pkg, "SELECT * FROM packages WHERE id = $1 FOR UPDATE", packageID)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to lock package: %w", err)
	}

	var items []models.PackageItem
	err = tx.SelectContext(ctx, &items,
		"SELECT * FROM package_items WHERE package_id = $1", packageID)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"UPDATE products SET quantity = quantity - $1 WHERE id = $2",
			item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock for product %s: %w", item.ProductID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO archived_packages (id, created_by, assigned_to, done, created_at, archived_by, archived_at)
		VALUES ($1, $2, $3, TRUE, $4, $5, $6)`,
		pkg.ID, pkg.CreatedBy, pkg.AssignedTo, pkg.CreatedAt, archivedBy, archivedAt)
	if err != nil {
		return fmt.Errorf("failed to write archive record: %w", err)
	}

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO archived_package_items (package_id, product_id, quantity) VALUES ($1, $2, $3)",
			item.PackageID, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("failed to copy manifest line: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM packages WHERE id = $1", packageID); err != nil {
		return fmt.Errorf("failed to delete active record: %w", err)
	}

	return tx.Commit()
}

// GetArchivedPackages retrieves archived packages, newest first, optionally
// narrowed to one assignee.
func (s *Store) GetArchivedPackages(ctx context.Context, assignee string) ([]models.ArchivedPackage, error) {
	var packages []models.ArchivedPackage
	if assignee != "" {
		err := s.db.SelectContext(ctx, &packages,
			"SELECT * FROM archived_packages WHERE assigned_to = $1 ORDER BY archived_at DESC", assignee)
		return packages, err
	}
	err := s.db.SelectContext(ctx, &packages,
		"SELECT * FROM archived_packages ORDER BY archived_at DESC")
	return packages, err
}

// GetArchivedPackageItems retrieves the manifest copy of an archived package
func (s *Store) GetArchivedPackageItems(ctx context.Context, packageID string) ([]models.PackageItem, error) {
	var items []models.PackageItem
	err := s.db.SelectContext(ctx, &items,
		"SELECT * FROM archived_package_items WHERE package_id = $1 ORDER BY product_id", packageID)
	return items, err
}
