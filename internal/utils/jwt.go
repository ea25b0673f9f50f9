package utils

import (
	"errors"
	"os"
	"strconv"
	"time"

	"datasub/internal/config"
	"datasub/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "datasub-api"

var ErrInvalidToken = errors.New("invalid token")

// GenerateTokens issues an access/refresh token pair for the user. Both carry
// the token version so a logout invalidates them together. The signing secret
// comes from the JWT_SECRET environment variable.
func GenerateTokens(claims *models.UserClaims) (accessToken string, refreshToken string, err error) {
	secret, err := signingSecret()
	if err != nil {
		return "", "", err
	}

	accessTTL := time.Duration(config.GetIntEnv("ACCESS_TOKEN_TTL_MINUTES", 15)) * time.Minute
	refreshTTL := time.Duration(config.GetIntEnv("REFRESH_TOKEN_TTL_HOURS", 7*24)) * time.Hour

	accessToken, err = signToken(claims, secret, accessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = signToken(claims, secret, refreshTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func signToken(claims *models.UserClaims, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	tokenClaims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatUint(uint64(claims.UserID), 10),
		},
		UserID:       claims.UserID,
		Email:        claims.Email,
		Role:         claims.Role,
		TokenVersion: claims.TokenVersion,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims).SignedString(secret)
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenStr string) (*jwt.Token, *models.UserClaims, error) {
	secret, err := signingSecret()
	if err != nil {
		return nil, nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, nil, err
	}

	claims, ok := token.Claims.(*models.UserClaims)
	if !ok || !token.Valid {
		return nil, nil, ErrInvalidToken
	}
	return token, claims, nil
}

func signingSecret() ([]byte, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET not configured")
	}
	return []byte(secret), nil
}
