package service

import (
	"context"
	"testing"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCreatePackageValidation(t *testing.T) {
	// Validation runs before any store call, so no infrastructure is needed.
	s := NewPackageService(nil, nil, nil, nil)
	sess := &auth.Session{Username: "boss", IsManager: true}

	tests := []struct {
		name  string
		items map[string]int
	}{
		{name: "empty manifest", items: map[string]int{}},
		{name: "zero quantity", items: map[string]int{"p1": 0}},
		{name: "negative quantity", items: map[string]int{"p1": 2, "p2": -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreatePackage(context.Background(), sess, &CreatePackageRequest{Items: tt.items})
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestDeletePackageRequiresManager(t *testing.T) {
	s := NewPackageService(nil, nil, nil, nil)

	err := s.DeletePackage(context.Background(), &auth.Session{Username: "alice"}, "pkg-1")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFilterPackages(t *testing.T) {
	packages := []models.Package{
		{ID: "PKG-001", AssignedTo: ""},
		{ID: "PKG-002", AssignedTo: "alice"},
		{ID: "BOX-100", AssignedTo: "Bob"},
	}

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{
			name:    "empty query matches everything",
			query:   "",
			wantIDs: []string{"PKG-001", "PKG-002", "BOX-100"},
		},
		{
			name:    "matches id case-insensitively",
			query:   "pkg",
			wantIDs: []string{"PKG-001", "PKG-002"},
		},
		{
			name:    "matches assignee case-insensitively",
			query:   "bob",
			wantIDs: []string{"BOX-100"},
		},
		{
			name:    "no match",
			query:   "carol",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPackages(packages, tt.query)
			gotIDs := make([]string, 0, len(got))
			for _, pkg := range got {
				gotIDs = append(gotIDs, pkg.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}

func TestManifestComplete(t *testing.T) {
	items := []models.PackageItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p3", Quantity: 4},
	}

	tests := []struct {
		name      string
		items     []models.PackageItem
		confirmed []string
		want      bool
	}{
		{
			name:      "empty manifest is never complete",
			items:     nil,
			confirmed: nil,
			want:      false,
		},
		{
			name:      "no confirmations",
			items:     items,
			confirmed: nil,
			want:      false,
		},
		{
			name:      "partial confirmations",
			items:     items,
			confirmed: []string{"p1", "p3"},
			want:      false,
		},
		{
			name:      "all confirmed",
			items:     items,
			confirmed: []string{"p1", "p2", "p3"},
			want:      true,
		},
		{
			name:      "stray confirmations do not substitute for missing ones",
			items:     items,
			confirmed: []string{"p1", "p2", "p9"},
			want:      false,
		},
		{
			name:      "stray confirmations on top of a complete set are harmless",
			items:     items,
			confirmed: []string{"p1", "p2", "p3", "p9"},
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ManifestComplete(tt.items, tt.confirmed))
		})
	}
}

func TestManifestCompleteFlipsExactlyAtFullCount(t *testing.T) {
	items := []models.PackageItem{
		{ProductID: "p1", Quantity: 1},
		{ProductID: "p2", Quantity: 1},
		{ProductID: "p3", Quantity: 1},
		{ProductID: "p4", Quantity: 1},
	}

	confirmed := make([]string, 0, len(items))
	for i, item := range items {
		assert.False(t, ManifestComplete(items, confirmed), "complete with %d of %d confirmed", i, len(items))
		confirmed = append(confirmed, item.ProductID)
	}
	assert.True(t, ManifestComplete(items, confirmed))
}
