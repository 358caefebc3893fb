package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// AuthService implements registration, login and password changes.
type AuthService struct {
	repos     Repositories
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func NewAuthService(repos Repositories, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repos:     repos,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// Register creates the account and, as an explicit second step, its default
// board. When the board cannot be created the user is removed again.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, domain.Invalid("username, email and password are required")
	}
	if len(input.Password) < domain.MinPasswordLength {
		return nil, domain.Invalid("password must be at least %d characters", domain.MinPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var created *domain.User
	sg := newSaga("register", s.log)
	sg.add("create user",
		func(ctx context.Context) (err error) {
			created, err = s.repos.Users.Create(ctx, &domain.User{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
				Role:         domain.RoleUser,
				CreatedAt:    now,
				UpdatedAt:    now,
			})
			return err
		},
		func(ctx context.Context) error { return s.repos.Users.Delete(ctx, created.ID) },
	)
	sg.add("create default board",
		func(ctx context.Context) error {
			_, err := s.repos.Boards.Create(ctx, &domain.Board{
				UserID:    created.ID,
				Title:     domain.DefaultBoardTitle,
				CreatedAt: now,
				UpdatedAt: now,
			})
			return err
		},
		nil,
	)
	if err := s.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// Login authenticates by email (any identifier containing "@") or username
// and returns a signed token.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repos.Users.FindByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.repos.Users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// ChangePassword re-hashes the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if len(newPassword) < domain.MinPasswordLength {
		return domain.Invalid("password must be at least %d characters", domain.MinPasswordLength)
	}
	user, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repos.Users.UpdatePassword(ctx, user.ID, string(hash), s.now())
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
