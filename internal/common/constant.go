package common

// Scopes are delegated permissions a user consents to granting a client
// application over their own data.
const (
	// ScopeIdentityRead allows reading the caller's own identity details.
	ScopeIdentityRead = "Identity.Read"
	// ScopeExpensesRead allows reading the caller's own expenses.
	ScopeExpensesRead = "Expenses.Read"
	// ScopeExpensesReadWrite allows reading and writing the caller's own expenses.
	ScopeExpensesReadWrite = "Expenses.ReadWrite"
	// ScopeExpensesReadAll allows reading every user's expenses. Admin-consent only.
	ScopeExpensesReadAll = "Expenses.Read.All"
)

// Roles are permissions assigned directly by an administrator, not subject
// to user consent.
const (
	// RoleExpenseSubmitter can be granted to users only.
	RoleExpenseSubmitter = "Expense Submitter"
	// RoleExpenseApprover can be granted to users only.
	RoleExpenseApprover = "Expense Approver"
	// RoleExpenseReadWriteAll is an application permission granted to
	// service principals such as the payout processor.
	RoleExpenseReadWriteAll = "Expense.ReadWrite.All"
)

// Claim types carried by access tokens, matching the identity provider's
// token shape.
const (
	ClaimObjectID = "oid"
	ClaimName     = "name"
	ClaimScope    = "scp"
	ClaimRoles    = "roles"
)
