package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID   string
	Username string
	Role     string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the caller stored in ctx. Anonymous callers yield the
// zero Identity.
func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// UserID returns the authenticated user id set by Auth or OptionalAuth.
func UserID(c echo.Context) string {
	id, _ := c.Get("user_id").(string)
	return id
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errInvalidHeader = errors.New("invalid authorization header")
	errInvalidToken  = errors.New("invalid token")
)

// Auth validates the JWT and injects claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, false)
}

// OptionalAuth behaves like Auth but lets requests without an Authorization
// header through anonymously. A present but invalid token is still rejected.
func OptionalAuth(jwtSecret string) echo.MiddlewareFunc {
	return authenticate(jwtSecret, true)
}

func authenticate(jwtSecret string, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" && optional {
				return next(c)
			}

			id, err := parseBearer(header, jwtSecret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set("user_id", id.UserID)
			c.Set("username", id.Username)
			c.Set("role", id.Role)
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))

			return next(c)
		}
	}
}

func parseBearer(header, jwtSecret string) (Identity, error) {
	if header == "" {
		return Identity{}, errMissingHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Identity{}, errInvalidHeader
	}

	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return Identity{}, errInvalidToken
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		return Identity{}, errInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return Identity{UserID: sub, Username: username, Role: role}, nil
}
