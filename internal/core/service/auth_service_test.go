package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/silab/attendance-system/internal/core/domain"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)

	user, err := svc.Register(context.Background(), "Budi", "budi@silab.dev", "password123", domain.RoleAslab)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.PasswordHash == "password123" {
		t.Fatalf("password stored in clear")
	}

	token, logged, err := svc.Login(context.Background(), "budi@silab.dev", "password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != user.ID {
		t.Errorf("logged in as wrong user")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["role"] != domain.RoleAslab || claims["email"] != "budi@silab.dev" {
		t.Errorf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	if _, err := svc.Register(context.Background(), "Budi", "budi@silab.dev", "password123", domain.RoleAslab); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, err := svc.Login(context.Background(), "budi@silab.dev", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	_, _, err := svc.Login(context.Background(), "nobody@silab.dev", "password123")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, "secret", time.Hour)
	if _, err := svc.Register(context.Background(), "Budi", "budi@silab.dev", "password123", domain.RoleAslab); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), "Budi Dua", "budi@silab.dev", "password456", domain.RoleAslab)
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got: %v", err)
	}
}

func TestAuthService_Register_BadRole(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), "secret", time.Hour)

	_, err := svc.Register(context.Background(), "Budi", "budi@silab.dev", "password123", "superuser")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got: %v", err)
	}
}
