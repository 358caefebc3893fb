package service

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture(t)

	user := f.register(t, "alice")
	if user.PasswordHash == "password123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_CreatesDefaultBoard(t *testing.T) {
	f := newFixture(t)
	user := f.register(t, "alice")

	board, err := f.store.Boards().FindByTitle(context.Background(), user.ID, domain.DefaultBoardTitle)
	if err != nil {
		t.Fatalf("expected default board: %v", err)
	}
	if board.IsPrivate {
		t.Fatalf("default board must be public")
	}
	if board.PinCount() != 0 {
		t.Fatalf("default board must start empty")
	}
}

func TestAuthService_Register_RollsBackUserWhenBoardFails(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("boards.Create", errors.New("insert failed"))

	_, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "password123",
	})
	expectErr(t, err, domain.ErrStore)

	if _, err := f.store.Users().FindByUsername(context.Background(), "bob"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("user must be removed after a failed registration, got %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.auth.Register(ctx, ports.RegisterInput{Username: "", Email: "x@example.com", Password: "password123"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := f.auth.Register(ctx, ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for short password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob")

	_, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Username: "bob",
		Email:    "other@example.com",
		Password: "password123",
	})
	if !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "carol")

	for _, identifier := range []string{"carol@example.com", "CAROL@example.com", "carol"} {
		token, user, err := f.auth.Login(context.Background(), identifier, "password123")
		if err != nil {
			t.Fatalf("login with %q failed: %v", identifier, err)
		}
		if user == nil || user.Username != "carol" {
			t.Fatalf("unexpected user: %+v", user)
		}

		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("secret"), nil
		})
		if err != nil || !parsed.Valid {
			t.Fatalf("token invalid: %v", err)
		}
		if claims["sub"] != registered.ID {
			t.Fatalf("expected sub %s, got %v", registered.ID, claims["sub"])
		}
		if claims["role"] != domain.RoleUser {
			t.Fatalf("expected role %s, got %v", domain.RoleUser, claims["role"])
		}
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "dave")

	if _, _, err := f.auth.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	f := newFixture(t)

	if _, _, err := f.auth.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := f.register(t, "erin")

	if err := f.auth.ChangePassword(ctx, user.ID, "wrong-password", "newpassword1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.auth.ChangePassword(ctx, "", "password123", "newpassword1"); err != domain.ErrUnauthenticated {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if err := f.auth.ChangePassword(ctx, user.ID, "password123", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := f.auth.Login(ctx, "erin", "newpassword1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
