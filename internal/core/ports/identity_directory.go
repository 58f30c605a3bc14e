package ports

import "context"

// IdentityAccount is what the Identity Directory needs to create a login.
type IdentityAccount struct {
	Username  string
	FirstName string
	LastName  string
	Password  string // plaintext; the directory stores its own hash
	Enabled   bool
	Role      string
}

// IdentityDirectory is the external system of record for authentication
// identities.
type IdentityDirectory interface {
	CreateAccount(ctx context.Context, account IdentityAccount) error
	RemoveAccount(ctx context.Context, username string) error
}
