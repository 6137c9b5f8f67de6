package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const CookieName = "token"

// Claims defines JWT payload structure
type Claims struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// JWT issues and validates session credentials. The signing secret is
// loaded once at startup and injected here; there is no revocation list,
// a valid unexpired signature is always accepted.
type JWT struct {
	secret []byte
	ttl    time.Duration
}

func NewJWT(secret string, ttl time.Duration) *JWT {
	return &JWT{secret: []byte(secret), ttl: ttl}
}

// GenerateToken creates a signed token for the given user details.
func (j *JWT) GenerateToken(id int64, email, role string) (string, error) {
	claims := &Claims{
		ID:    id,
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "general-hardware-api",
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(j.secret)
}

// Parse validates signature and expiry and returns the claims.
func (j *JWT) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Middleware validates the bearer header, falling back to the "token"
// cookie, and sets the claims on the request context.
func (j *JWT) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided"})
			}
			claims, err := j.Parse(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token"})
			}
			c.Set("auth_claims", claims)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if auth != "" {
		parts := strings.Fields(auth)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// GetClaims extracts claims set by Middleware.
func GetClaims(c echo.Context) *Claims {
	v := c.Get("auth_claims")
	if v == nil {
		return nil
	}
	if cl, ok := v.(*Claims); ok {
		return cl
	}
	return nil
}

// AdminOnly middleware requires role == admin
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := GetClaims(c)
		if claims == nil || claims.Role != "admin" {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "Access denied"})
		}
		return next(c)
	}
}
