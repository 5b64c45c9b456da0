package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the store location a session was opened for.
type Claims struct {
	Location string `json:"location"`
	jwt.RegisteredClaims
}

func GenerateToken(secret, location string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Location: location,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   location,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func ParseToken(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Location == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// NormalizePassword lower-cases a location password; staff type them in any case.
func NormalizePassword(password string) string {
	return strings.ToLower(strings.TrimSpace(password))
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(NormalizePassword(password)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(NormalizePassword(password))) == nil
}
