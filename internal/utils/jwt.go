package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// TokenIssuer mints short-lived bearer credentials for a user. The publisher
// embeds one in every outbound message so the downstream dispatcher can act
// as that user.
type TokenIssuer interface {
	IssueToken(userID, email string) (string, error)
}

// JWTIssuer signs HS256 tokens with a shared secret.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}
}

// IssueToken creates a signed JWT with the user id as subject.
func (i *JWTIssuer) IssueToken(userID, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// ValidateToken parses a token string and returns the subject claim.
func (i *JWTIssuer) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}
	return sub, nil
}
