package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

var (
	ErrInvalidJWTToken = errors.New("JWT token is invalid")
	ErrExpiredJWTToken = errors.New("JWT token is expired")
)

const DefaultAccessTokenDuration = 10 * time.Minute

type JWTManagerInterface interface {
	GenerateAccessJWT(userID string, duration time.Duration) (string, error)
	ValidateAccessToken(tokenString string) (string, error)
}

type AccessTokenCustomClaims struct {
	UserID string `json:"user_id"`
	jwt.StandardClaims
}

type JWTManager struct {
	secret string
}

func NewJWTManager(secret string) (JWTManagerInterface, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is not set")
	}
	return &JWTManager{secret: secret}, nil
}

func (j *JWTManager) GenerateAccessJWT(userID string, duration time.Duration) (string, error) {
	now := time.Now()
	claims := &AccessTokenCustomClaims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(duration).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secret))
}

func (j *JWTManager) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessTokenCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(j.secret), nil
	})

	if err != nil {
		var validationErr *jwt.ValidationError
		if errors.As(err, &validationErr) {
			if validationErr.Errors&(jwt.ValidationErrorExpired) != 0 {
				return "", ErrExpiredJWTToken
			}
		}
		return "", ErrInvalidJWTToken
	}

	claims, ok := token.Claims.(*AccessTokenCustomClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", ErrInvalidJWTToken
	}

	return claims.UserID, nil
}
