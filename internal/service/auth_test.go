package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pantrychef/backend/internal/testhelpers"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	db := testhelpers.OpenSQLite(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	token, err := svc.Register(ctx, "Alex", "alex@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.NotEqual(t, claims.UserID.String(), "00000000-0000-0000-0000-000000000000")

	loginToken, err := svc.Login(ctx, "alex@example.com", "s3cret-pass")
	require.NoError(t, err)

	loginClaims, err := svc.ValidateToken(loginToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, loginClaims.UserID)
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	db := testhelpers.OpenSQLite(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alex", "alex@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other", "alex@example.com", "different-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthLoginRejectsBadCredentials(t *testing.T) {
	db := testhelpers.OpenSQLite(t)
	svc := NewAuthService(db, "test-secret")
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alex", "alex@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alex@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthValidateTokenRejectsGarbage(t *testing.T) {
	db := testhelpers.OpenSQLite(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthValidateTokenRejectsWrongSecret(t *testing.T) {
	db := testhelpers.OpenSQLite(t)
	issuer := NewAuthService(db, "secret-one")
	verifier := NewAuthService(db, "secret-two")

	token, err := issuer.Register(context.Background(), "Alex", "alex@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}
