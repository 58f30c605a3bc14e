package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	// ErrUserNotDeletable is returned when the user still owns unfinished work.
	ErrUserNotDeletable = errors.New("User can not be deleted")
	ErrInvalidUser      = errors.New("invalid user")
	ErrForbidden        = errors.New("access forbidden")
)

// RoleKind is the closed set of capabilities a user can hold.
type RoleKind uint8

const (
	RoleOther RoleKind = iota
	RoleAdmin
	RoleManager
	RoleEmployee
)

// Canonical role descriptions.
const (
	RoleAdminDescription    = "Admin"
	RoleManagerDescription  = "Manager"
	RoleEmployeeDescription = "Employee"
)

// Role is the capability tag attached to a user. Description is the
// discriminant; Kind is derived from it.
type Role struct {
	Kind        RoleKind `json:"-"`
	Description string   `json:"description"`
}

// ParseRole maps a description to its role, ignoring case. Unknown
// descriptions are kept verbatim with kind RoleOther.
func ParseRole(description string) Role {
	d := strings.TrimSpace(description)
	switch {
	case strings.EqualFold(d, RoleAdminDescription):
		return Role{Kind: RoleAdmin, Description: RoleAdminDescription}
	case strings.EqualFold(d, RoleManagerDescription):
		return Role{Kind: RoleManager, Description: RoleManagerDescription}
	case strings.EqualFold(d, RoleEmployeeDescription):
		return Role{Kind: RoleEmployee, Description: RoleEmployeeDescription}
	default:
		return Role{Kind: RoleOther, Description: d}
	}
}

func (r Role) String() string { return r.Description }

// Gender of a user.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// User is an identity-bearing record of the ticketing system.
//
// Username is unique among active (IsDeleted == false) users only. ID is
// assigned once on first persistence and never reused.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	Enabled      bool      `json:"enabled"`
	IsDeleted    bool      `json:"is_deleted"`
	Role         Role      `json:"role"`
	Gender       Gender    `json:"gender,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MarkDeleted soft-deletes the user and moves it out of the active username
// slot by suffixing the id. The rename is one-way.
func (u *User) MarkDeleted(now time.Time) {
	u.IsDeleted = true
	u.Username = DeletedUsername(u.Username, u.ID)
	u.UpdatedAt = now
}

// DeletedUsername returns the username a soft-deleted user is stored under.
func DeletedUsername(username string, id int64) string {
	return fmt.Sprintf("%s-%d", username, id)
}

// MirrorFailure records a user whose Identity Directory account could not be
// created after the local record was persisted.
type MirrorFailure struct {
	Username string    `json:"username"`
	Error    string    `json:"error"`
	FailedAt time.Time `json:"failed_at"`
}
