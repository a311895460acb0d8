package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Name: "Alex", Email: "alex@example.com", Password: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var reg TokenResponse
	decodeBody(t, w, &reg)
	assert.NotEmpty(t, reg.Token)

	// Duplicate registration conflicts.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Name: "Alex", Email: "alex@example.com", Password: "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email: "alex@example.com", Password: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var login TokenResponse
	decodeBody(t, w, &login)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	// Short password.
	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Name: "Alex", Email: "alex@example.com", Password: "short",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Bad email.
	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"name": "Alex", "email": "not-an-email", "password": "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router, _ := newTestRouter(t, &stubGenerator{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", RegisterRequest{
		Name: "Alex", Email: "alex@example.com", Password: "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", LoginRequest{
		Email: "alex@example.com", Password: "wrong-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
