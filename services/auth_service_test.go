package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sporthall/tournament-core/models"
)

func TestRegisterAndLogin(t *testing.T) {
	users := newFakeUserRepo()
	service := NewAuthService(users)
	ctx := context.Background()

	user, err := service.Register(ctx, RegisterInput{
		FirstName: "Priya",
		LastName:  "Nair",
		Email:     "Priya.Nair@Example.com",
		Password:  "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya.nair@example.com", user.Email)
	assert.Equal(t, models.RoleViewer, user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	logged, err := service.Login(ctx, LoginInput{
		Email:    "priya.nair@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())

	_, err := service.Register(context.Background(), RegisterInput{
		FirstName: "Priya",
		Email:     "priya@example.com",
		Password:  "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	input := RegisterInput{FirstName: "Priya", Email: "priya@example.com", Password: "correct-horse"}
	_, err := service.Register(ctx, input)
	require.NoError(t, err)

	_, err = service.Register(ctx, input)
	assert.ErrorIs(t, err, ErrAuthEmailTaken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	service := NewAuthService(newFakeUserRepo())
	ctx := context.Background()

	_, err := service.Register(ctx, RegisterInput{
		FirstName: "Priya", Email: "priya@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = service.Login(ctx, LoginInput{Email: "priya@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = service.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct-horse"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}
