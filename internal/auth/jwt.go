package auth

import (
	"errors"
	"sync"
	"time"

	"delegation-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	mu       sync.RWMutex
	settings = config.Default().Auth
)

// Configure replaces the signing settings. Call once at startup.
func Configure(cfg config.AuthConfig) {
	mu.Lock()
	defer mu.Unlock()
	settings = cfg
}

func current() config.AuthConfig {
	mu.RLock()
	defer mu.RUnlock()
	return settings
}

// Claims represents the JWT claims
type Claims struct {
	StaffID uint   `json:"staff_id"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

// GenerateToken generates a JWT token for the given staff member
func GenerateToken(staffID uint, name string) (string, error) {
	cfg := current()
	now := time.Now()
	claims := Claims{
		StaffID: staffID,
		Name:    name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.JWTIssuer,
			Audience:  jwt.ClaimStrings{cfg.JWTAudience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	cfg := current()
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithAudience(cfg.JWTAudience),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.StaffID == 0 {
		return nil, errors.New("token has no staff id")
	}
	return claims, nil
}
