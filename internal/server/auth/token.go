// Package auth validates bearer tokens and turns their claims into a typed
// caller identity. Token issuance belongs to the external identity provider;
// GenerateToken exists for tests and local development only.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"expenses/internal/common"
	"expenses/internal/server/models"
)

// Claims is the token payload shape issued by the identity provider:
// standard registered claims plus "oid", "name", a space-separated "scp"
// and a "roles" array.
type Claims struct {
	jwt.RegisteredClaims
	ObjectID string   `json:"oid,omitempty"`
	Name     string   `json:"name,omitempty"`
	Scope    string   `json:"scp,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// GenerateToken mints an HS256 token carrying the given caller's identity.
func GenerateToken(caller models.Caller, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   caller.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		ObjectID: caller.UserID,
		Name:     caller.DisplayName,
		Scope:    strings.Join(caller.Scopes, " "),
		Roles:    caller.Roles,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseCaller validates tokenString against secretKey and builds a caller
// identity from its claims. Invalid, expired or mis-signed tokens yield
// common.ErrInvalidToken.
func ParseCaller(tokenString string, secretKey []byte) (models.Caller, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Caller{}, common.ErrInvalidToken
	}
	if !token.Valid {
		return models.Caller{}, common.ErrInvalidToken
	}

	userID := claims.ObjectID
	if userID == "" {
		userID = claims.Subject
	}

	return models.Caller{
		UserID:      userID,
		DisplayName: claims.Name,
		Scopes:      strings.Fields(claims.Scope),
		Roles:       claims.Roles,
	}, nil
}
