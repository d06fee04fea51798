package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Kr1shnam00rth1/Bank-API/internal/core/domain"
)

// TokenTTL is the lifetime of a session token. Validity is purely a function
// of the signature and this expiry; nothing is persisted server-side.
const TokenTTL = time.Hour

// TokenIssuer mints and verifies HS256 session tokens carrying the principal
// id and role.
type TokenIssuer struct {
	secret []byte
}

func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Mint signs a token for the principal, expiring one hour from now.
func (ti *TokenIssuer) Mint(principalID uuid.UUID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  principalID.String(),
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(TokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// Verify resolves a token to its principal. Bad signature, malformed token
// and expiry all come back as domain.ErrUnauthorized; callers treat every
// failure uniformly as unauthenticated.
func (ti *TokenIssuer) Verify(tokenStr string) (domain.Principal, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ti.secret, nil
	})
	if err != nil || !token.Valid {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)

	id, err := uuid.Parse(sub)
	if err != nil || (role != domain.RoleUser && role != domain.RoleCashier) {
		return domain.Principal{}, domain.ErrUnauthorized
	}
	return domain.Principal{ID: id, Role: role}, nil
}
