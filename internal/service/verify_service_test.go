package service

import (
	"context"
	"testing"

	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

type fakeManifestSource struct {
	pkg   *models.Package
	items []models.PackageItem
}

func (f *fakeManifestSource) GetPackageByID(ctx context.Context, id string) (*models.Package, error) {
	if f.pkg == nil || f.pkg.ID != id {
		return nil, nil
	}
	return f.pkg, nil
}

func (f *fakeManifestSource) GetPackageItems(ctx context.Context, packageID string) ([]models.PackageItem, error) {
	return f.items, nil
}

type memSessionStore struct {
	sets map[string]map[string]struct{}
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sets: make(map[string]map[string]struct{})}
}

func (m *memSessionStore) Confirm(ctx context.Context, packageID, productID string) (int, error) {
	if m.sets[packageID] == nil {
		m.sets[packageID] = make(map[string]struct{})
	}
	m.sets[packageID][productID] = struct{}{}
	return len(m.sets[packageID]), nil
}

func (m *memSessionStore) Confirmed(ctx context.Context, packageID string) ([]string, error) {
	confirmed := make([]string, 0, len(m.sets[packageID]))
	for id := range m.sets[packageID] {
		confirmed = append(confirmed, id)
	}
	return confirmed, nil
}

func (m *memSessionStore) Clear(ctx context.Context, packageID string) error {
	delete(m.sets, packageID)
	return nil
}

type fakeNames struct{}

func (fakeNames) ProductName(ctx context.Context, productID string) (string, error) {
	return "product " + productID, nil
}

func newTestVerifyService(t *testing.T, items []models.PackageItem) (*VerifyService, *memSessionStore) {
	t.Helper()
	manifests := &fakeManifestSource{
		pkg:   &models.Package{ID: "pkg-1", AssignedTo: "alice"},
		items: items,
	}
	sessions := newMemSessionStore()
	return NewVerifyService(manifests, sessions, fakeNames{}), sessions
}

// --- tests ---

func TestSessionEmptyOnOpen(t *testing.T) {
	vs, _ := newTestVerifyService(t, []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
	})

	view, err := vs.Session(context.Background(), "pkg-1")
	require.NoError(t, err)

	assert.Equal(t, 0, view.Confirmed)
	assert.Equal(t, 2, view.Total)
	assert.False(t, view.Complete)
	for _, line := range view.Lines {
		assert.False(t, line.Confirmed)
	}
}

func TestSessionUnknownPackage(t *testing.T) {
	vs, _ := newTestVerifyService(t, nil)

	_, err := vs.Session(context.Background(), "no-such-package")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmScanMatch(t *testing.T) {
	vs, _ := newTestVerifyService(t, []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
	})

	view, err := vs.ConfirmScan(context.Background(), "pkg-1", &ConfirmScanRequest{
		ProductID: "p1",
		Token:     "p1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, view.Confirmed)
	assert.False(t, view.Complete)
}

func TestConfirmScanMismatchLeavesSessionUnchanged(t *testing.T) {
	vs, sessions := newTestVerifyService(t, []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
	})

	// Scanning p2's code while p1 was selected must fail even though p2 is
	// also a required manifest product.
	_, err := vs.ConfirmScan(context.Background(), "pkg-1", &ConfirmScanRequest{
		ProductID: "p1",
		Token:     "p2",
	})
	assert.ErrorIs(t, err, ErrScanMismatch)

	confirmed, err := sessions.Confirmed(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.Empty(t, confirmed)
}

func TestConfirmScanIdempotent(t *testing.T) {
	vs, _ := newTestVerifyService(t, []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
	})

	req := &ConfirmScanRequest{ProductID: "p1", Token: "p1"}

	view, err := vs.ConfirmScan(context.Background(), "pkg-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Confirmed)

	view, err = vs.ConfirmScan(context.Background(), "pkg-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Confirmed)
}

func TestConfirmScanProductOutsideManifest(t *testing.T) {
	vs, _ := newTestVerifyService(t, []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
	})

	_, err := vs.ConfirmScan(context.Background(), "pkg-1", &ConfirmScanRequest{
		ProductID: "p9",
		Token:     "p9",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCompletionGating(t *testing.T) {
	items := []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
		{PackageID: "pkg-1", ProductID: "p3", Quantity: 4},
	}
	vs, _ := newTestVerifyService(t, items)

	// Complete must stay false for every confirmed-set size below the
	// manifest's distinct key count and flip exactly at it.
	for i, item := range items {
		view, err := vs.ConfirmScan(context.Background(), "pkg-1", &ConfirmScanRequest{
			ProductID: item.ProductID,
			Token:     item.ProductID,
		})
		require.NoError(t, err)

		assert.Equal(t, i+1, view.Confirmed)
		assert.Equal(t, i == len(items)-1, view.Complete)
	}
}

func TestSessionResumesPersistedProgress(t *testing.T) {
	items := []models.PackageItem{
		{PackageID: "pkg-1", ProductID: "p1", Quantity: 2},
		{PackageID: "pkg-1", ProductID: "p2", Quantity: 1},
	}
	vs, sessions := newTestVerifyService(t, items)

	_, err := vs.ConfirmScan(context.Background(), "pkg-1", &ConfirmScanRequest{
		ProductID: "p1",
		Token:     "p1",
	})
	require.NoError(t, err)

	// A new service over the same session store models re-opening the
	// package detail after leaving mid-scan.
	manifests := &fakeManifestSource{
		pkg:   &models.Package{ID: "pkg-1", AssignedTo: "alice"},
		items: items,
	}
	reopened := NewVerifyService(manifests, sessions, fakeNames{})

	view, err := reopened.Session(context.Background(), "pkg-1")
	require.NoError(t, err)
	assert.Equal(t, 1, view.Confirmed)
	assert.False(t, view.Complete)

	for _, line := range view.Lines {
		assert.Equal(t, line.ProductID == "p1", line.Confirmed)
	}
}
