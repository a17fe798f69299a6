// Package policy decides, for a named capability, whether a caller identity
// is permitted to exercise it. Every rule is a pure predicate over the claim
// sets already present on the identity; no external calls are made.
//
// Denials carry a reason naming the exact missing scope or role, so API
// clients can tell why they were rejected rather than receiving a generic
// 403.
package policy

import (
	"expenses/internal/common"
	"expenses/internal/server/models"
)

// Capability names an action a caller may or may not perform.
type Capability string

const (
	// ReadOwnIdentity allows reading the caller's own identity details.
	ReadOwnIdentity Capability = "ReadOwnIdentity"
	// ReadOwnExpenses allows reading expenses the caller created.
	ReadOwnExpenses Capability = "ReadOwnExpenses"
	// ReadAllExpenses allows reading every user's expenses.
	ReadAllExpenses Capability = "ReadAllExpenses"
	// WriteOwnExpenses allows creating, editing and deleting the caller's
	// own expenses.
	WriteOwnExpenses Capability = "WriteOwnExpenses"
	// ApproveExpenses allows approving submitted expenses.
	ApproveExpenses Capability = "ApproveExpenses"
	// PayExpenses allows marking approved expenses as paid.
	PayExpenses Capability = "PayExpenses"
)

// Baseline is the gate applied to every request regardless of endpoint:
// the caller must be authenticated and must present at least one scope or
// role claim. Without the second condition any application could request a
// valid access token and call the API without being truly authorized.
//
// The two failures carry different kinds: no identity at all is
// unauthenticated, while a valid identity without any claim is forbidden.
func Baseline(c models.Caller) error {
	if !c.Authenticated() {
		return common.Unauthenticated("A valid access token is required.")
	}
	if !c.HasClaims() {
		return common.Forbidden("The access token must contain at least one scope or role claim.")
	}
	return nil
}

// Require evaluates the policy for the given capability, applying Baseline
// first. It returns nil when the caller is allowed, an ErrUnauthenticated
// when no usable identity is present, and an ErrForbidden with a specific
// reason otherwise.
func Require(c models.Caller, capability Capability) error {
	if err := Baseline(c); err != nil {
		return err
	}

	switch capability {
	case ReadOwnIdentity:
		if c.HasScope(common.ScopeIdentityRead) {
			return nil
		}
		return missingScope(common.ScopeIdentityRead)

	case ReadOwnExpenses:
		if c.HasScope(common.ScopeExpensesRead) || c.HasScope(common.ScopeExpensesReadWrite) {
			return nil
		}
		return common.Forbidden("The %q or %q scope is required to read your own expenses.",
			common.ScopeExpensesRead, common.ScopeExpensesReadWrite)

	case ReadAllExpenses:
		// Applications carry the all-access role directly; users need the
		// approver role combined with the admin-consented read-all scope.
		if c.HasRole(common.RoleExpenseReadWriteAll) {
			return nil
		}
		if c.HasRole(common.RoleExpenseApprover) && c.HasScope(common.ScopeExpensesReadAll) {
			return nil
		}
		return common.Forbidden("The %q role, or the %q role with the %q scope, is required to read all expenses.",
			common.RoleExpenseReadWriteAll, common.RoleExpenseApprover, common.ScopeExpensesReadAll)

	case WriteOwnExpenses:
		if !c.HasScope(common.ScopeExpensesReadWrite) {
			return missingScope(common.ScopeExpensesReadWrite)
		}
		if !c.HasRole(common.RoleExpenseSubmitter) {
			return missingRole(common.RoleExpenseSubmitter)
		}
		return nil

	case ApproveExpenses:
		if c.HasRole(common.RoleExpenseApprover) {
			return nil
		}
		return missingRole(common.RoleExpenseApprover)

	case PayExpenses:
		if c.HasRole(common.RoleExpenseReadWriteAll) {
			return nil
		}
		return missingRole(common.RoleExpenseReadWriteAll)
	}

	return common.Forbidden("Unknown capability %q.", string(capability))
}

func missingScope(scope string) error {
	return common.Forbidden("The %q scope is required.", scope)
}

func missingRole(role string) error {
	return common.Forbidden("The %q role is required.", role)
}
