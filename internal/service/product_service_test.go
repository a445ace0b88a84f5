package service

import (
	"context"
	"testing"

	"warehouse-service/internal/auth"
	"warehouse-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestProductValidation(t *testing.T) {
	// Validation runs before any store call.
	ps := NewProductService(nil, nil, 0)
	sess := &auth.Session{Username: "boss", IsManager: true}
	ctx := context.Background()

	_, err := ps.AddProduct(ctx, sess, &AddProductRequest{Name: "  ", Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ps.AddProduct(ctx, sess, &AddProductRequest{Name: "Ball Bearing", Quantity: -1})
	assert.ErrorIs(t, err, ErrValidation)

	// A catalog edit must not be a back door into negative stock; only the
	// archive decrement may take quantities below zero.
	err = ps.UpdateProduct(ctx, sess, &models.Product{ID: "p1", Name: "Ball Bearing", Quantity: -2})
	assert.ErrorIs(t, err, ErrValidation)

	err = ps.UpdateProduct(ctx, sess, &models.Product{ID: "p1", Name: "", Quantity: 3})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestFilterProducts(t *testing.T) {
	products := []models.Product{
		{ID: "a1b2", Name: "Ball Bearing", Producer: "Acme"},
		{ID: "c3d4", Name: "Gear Box", Producer: "Initech"},
		{ID: "e5f6", Name: "Ball Valve", Producer: "acme industrial"},
	}

	tests := []struct {
		name    string
		filter  string
		query   string
		wantIDs []string
	}{
		{
			name:    "empty query matches everything",
			filter:  models.ProductFilterName,
			query:   "",
			wantIDs: []string{"a1b2", "c3d4", "e5f6"},
		},
		{
			name:    "by name case-insensitively",
			filter:  models.ProductFilterName,
			query:   "ball",
			wantIDs: []string{"a1b2", "e5f6"},
		},
		{
			name:    "by producer",
			filter:  models.ProductFilterProducer,
			query:   "acme",
			wantIDs: []string{"a1b2", "e5f6"},
		},
		{
			name:    "by id",
			filter:  models.ProductFilterID,
			query:   "c3",
			wantIDs: []string{"c3d4"},
		},
		{
			name:    "unknown filter falls back to name",
			filter:  "color",
			query:   "gear",
			wantIDs: []string{"c3d4"},
		},
		{
			name:    "no match",
			filter:  models.ProductFilterName,
			query:   "sprocket",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProducts(products, tt.filter, tt.query)
			gotIDs := make([]string, 0, len(got))
			for _, p := range got {
				gotIDs = append(gotIDs, p.ID)
			}
			assert.Equal(t, tt.wantIDs, gotIDs)
		})
	}
}
