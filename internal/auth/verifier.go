package auth

import (
	"context"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrInvalidToken
	}
	return token, nil
}

// Verifier resolves an Authorization header to the caller's claims.
type Verifier struct {
	tokens   *JWTManager
	denylist Denylist
}

func NewVerifier(tokens *JWTManager, denylist Denylist) *Verifier {
	return &Verifier{tokens: tokens, denylist: denylist}
}

// Authenticate returns ErrInvalidToken, ErrExpiredToken or ErrRevokedToken for
// any credential that must not be trusted. Other errors come from the denylist
// backend.
func (v *Verifier) Authenticate(ctx context.Context, header string) (*Claims, error) {
	raw, err := BearerToken(header)
	if err != nil {
		return nil, err
	}

	claims, err := v.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}

	if v.denylist != nil && claims.ID != "" {
		revoked, err := v.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrRevokedToken
		}
	}

	return claims, nil
}
