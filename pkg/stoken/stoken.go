package stoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"taskboard-backend/pkg/idwrap"
)

type TokenType string

const SessionToken TokenType = "session_token"

const issuer = "taskboard-backend"

type SessionClaims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
}

// NewJWT mints a signed session token carrying the user id as subject.
func NewJWT(userID idwrap.IDWrap, tokenType TokenType, duration time.Duration, secret []byte) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{issuer},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			NotBefore: jwt.NewNumericDate(time.Now()),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	})

	tokenString, err := t.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT checks the signature, expiry and token type, and returns the
// verified claims.
func ValidateJWT(tokenString string, tokenType TokenType, secret []byte) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("cannot cast claims")
	}

	if claims.TokenType != tokenType {
		return nil, fmt.Errorf("invalid token type")
	}

	return claims, nil
}

// UserID parses the subject back into an id.
func (c *SessionClaims) UserID() (idwrap.IDWrap, error) {
	return idwrap.NewText(c.Subject)
}
