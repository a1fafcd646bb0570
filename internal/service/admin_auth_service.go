package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"golfalerts/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type AdminAuthService interface {
	Login(email, password string) (string, error)
}

// adminAuthService checks a single operator account held in configuration.
type adminAuthService struct {
	email        string
	passwordHash string
	issuer       *auth.Issuer
}

func NewAdminAuthService(email, passwordHash string, issuer *auth.Issuer) AdminAuthService {
	return &adminAuthService{email: email, passwordHash: passwordHash, issuer: issuer}
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	if s.email == "" || s.passwordHash == "" {
		return "", ErrInvalidCredentials
	}
	if !strings.EqualFold(strings.TrimSpace(email), s.email) {
		return "", ErrInvalidCredentials
	}
	if !checkPasswordHash(password, s.passwordHash) {
		return "", ErrInvalidCredentials
	}
	return s.issuer.IssueToken(s.email)
}

// HashPassword produces a value suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
