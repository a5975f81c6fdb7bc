package webserver

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/toyorbit/toyorbit/internal/apperr"
)

const tokenContextKey = "user"

// Claims carried by access tokens
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for the user
func IssueToken(secret string, ttl time.Duration, userID, username, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return token, errors.Wrap(err, "sign token")
}

// JWTAuth verifies the bearer token and stores it on the context
func JWTAuth(secret string, skipper func(c echo.Context) bool) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		Skipper:       skipper,
		SigningKey:    []byte(secret),
		SigningMethod: jwt.SigningMethodHS256.Name,
		ContextKey:    tokenContextKey,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperr.Unauthorized("Missing, invalid or expired token")
		},
	})
}

// CurrentUser returns the verified claims of the request, nil on public routes
func CurrentUser(c echo.Context) *Claims {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*Claims)
	return claims
}

// RequireRole lets the request through only for the given roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return apperr.Unauthorized("Authentication required")
			}
			for _, r := range roles {
				if user.Role == r {
					return next(c)
				}
			}
			return apperr.Forbidden("Insufficient permissions")
		}
	}
}
