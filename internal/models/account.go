package models

import "strings"

// AccountStatus gates whether an account may clock in or out.
type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountInactive AccountStatus = "Inactive"
)

// Valid returns true when the status is a supported value.
func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountInactive
}

// Toggle flips Active and Inactive.
func (s AccountStatus) Toggle() AccountStatus {
	if s == AccountInactive {
		return AccountActive
	}
	return AccountInactive
}

// AccountRole qualifies account ids in the status mapping.
type AccountRole string

const (
	AccountRoleUser  AccountRole = "user"
	AccountRoleAdmin AccountRole = "admin"
)

// ParseAccountRole accepts "user"/"employee" and "admin".
func ParseAccountRole(raw string) (AccountRole, bool) {
	switch strings.ToLower(raw) {
	case "user", "employee":
		return AccountRoleUser, true
	case "admin":
		return AccountRoleAdmin, true
	default:
		return "", false
	}
}

// AccountKey builds the role-qualified key, e.g. "user:42".
func AccountKey(role AccountRole, id string) string {
	return string(role) + ":" + id
}

// Account is the status of one role-qualified id.
type Account struct {
	Role   AccountRole   `json:"role"`
	ID     string        `json:"id"`
	Status AccountStatus `json:"status"`
}
