// Package models defines the server-side data model: the verified caller
// identity and the expense entity.
package models

import "slices"

// Caller is the verified principal (user or application) making a request.
// It is populated once at the authentication boundary from validated token
// claims; business logic never inspects raw claims.
//
// The zero value is the anonymous caller.
type Caller struct {
	// UserID is the stable unique identifier of the principal ("oid" claim).
	UserID string
	// DisplayName is the human-readable name ("name" claim), optional.
	DisplayName string
	// Scopes are delegated permissions granted by a user to a client
	// application ("scp" claim, split by spaces).
	Scopes []string
	// Roles are user- or application-assigned roles ("roles" claim).
	Roles []string
}

// Authenticated reports whether a valid identity was presented at all.
func (c Caller) Authenticated() bool {
	return c.UserID != ""
}

// HasClaims reports whether the caller presents at least one scope or role
// claim. A token without either proves authentication but no authorization,
// and the baseline policy rejects it.
func (c Caller) HasClaims() bool {
	return len(c.Scopes) > 0 || len(c.Roles) > 0
}

// HasScope reports whether the caller holds the given delegated scope.
func (c Caller) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// HasRole reports whether the caller holds the given role.
func (c Caller) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}
