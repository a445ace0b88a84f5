package service

import (
	"context"
	"testing"

	"warehouse-service/internal/auth"

	"github.com/stretchr/testify/assert"
)

func TestUserOperationsRequireManager(t *testing.T) {
	// Capability checks run before any store call.
	us := NewUserService(nil)
	ctx := context.Background()
	worker := &auth.Session{UserID: "u1", Username: "alice"}

	_, err := us.ListUsers(ctx, worker)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = us.AddUser(ctx, worker, &AddUserRequest{
		Username:  "bob",
		Password:  "secret",
		FirstName: "Bob",
		LastName:  "Builder",
	})
	assert.ErrorIs(t, err, ErrForbidden)

	err = us.DeleteUser(ctx, worker, "some-user-id")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAddUserRejectsBlankFields(t *testing.T) {
	us := NewUserService(nil)
	manager := &auth.Session{UserID: "u0", Username: "boss", IsManager: true}

	tests := []struct {
		name string
		req  AddUserRequest
	}{
		{name: "blank username", req: AddUserRequest{Username: " ", Password: "x", FirstName: "A", LastName: "B"}},
		{name: "blank password", req: AddUserRequest{Username: "carol", Password: "", FirstName: "A", LastName: "B"}},
		{name: "blank first name", req: AddUserRequest{Username: "carol", Password: "x", FirstName: "", LastName: "B"}},
		{name: "blank last name", req: AddUserRequest{Username: "carol", Password: "x", FirstName: "A", LastName: " "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := us.AddUser(context.Background(), manager, &tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestResetPasswordRejectsBlank(t *testing.T) {
	us := NewUserService(nil)
	sess := &auth.Session{UserID: "u1", Username: "alice"}

	err := us.ResetPassword(context.Background(), sess, "   ")
	assert.ErrorIs(t, err, ErrValidation)
}
