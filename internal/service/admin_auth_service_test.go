package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golfalerts/internal/auth"
)

func TestAdminLogin(t *testing.T) {
	hash, err := HashPassword("fore!")
	require.NoError(t, err)
	issuer := auth.NewIssuer("s3cret", time.Hour)
	svc := NewAdminAuthService("ops@example.com", hash, issuer)

	token, err := svc.Login("OPS@example.com", "fore!")
	require.NoError(t, err)
	sub, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", sub)

	_, err = svc.Login("ops@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("someone@example.com", "fore!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginUnconfigured(t *testing.T) {
	svc := NewAdminAuthService("", "", auth.NewIssuer("s3cret", time.Hour))
	_, err := svc.Login("", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}
