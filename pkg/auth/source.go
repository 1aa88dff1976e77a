package auth

import "context"

// Identity is the result of a successful credential verification, before a
// session has been issued for it.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Source  Source
	// Role is set only by sources that carry their own role assignment
	// (demo table, pinned super admin); provider identities resolve their
	// role from the profiles table instead.
	Role string
}

// CredentialSource verifies an identifier/secret pair. Sources are tried in
// the order they are registered with the Resolver; the first source that
// recognizes the identifier decides the outcome.
type CredentialSource interface {
	Name() string
	Authenticate(ctx context.Context, identifier, secret string) (*Identity, error)
}

// DemoAccount is one compiled-in demo credential record
type DemoAccount struct {
	Identifier string
	Secret     string
	Subject    string
	Name       string
	Role       string
}

// DemoAccounts is the fixed demo table. These accounts bypass the external
// provider entirely and exist so the portal can be exercised without one.
var DemoAccounts = []DemoAccount{
	{Identifier: "admin@example.com", Secret: "admin123", Subject: "1", Name: "Admin User", Role: "admin"},
	{Identifier: "staff@example.com", Secret: "staff123", Subject: "2", Name: "Staff User", Role: "staff"},
	{Identifier: "student@example.com", Secret: "student123", Subject: "3", Name: "Student User", Role: "student"},
}

// StaticSource authenticates against a fixed in-memory account table
type StaticSource struct {
	accounts []DemoAccount
}

// NewStaticSource creates a source over the given accounts. Pass DemoAccounts
// for the standard demo table.
func NewStaticSource(accounts []DemoAccount) *StaticSource {
	return &StaticSource{accounts: accounts}
}

// Name returns the source name
func (s *StaticSource) Name() string { return "static" }

// Authenticate matches the exact (identifier, secret) pair against the table.
// An identifier present in the table with a wrong secret still falls through
// to the next source; only an exact pair match short-circuits.
func (s *StaticSource) Authenticate(ctx context.Context, identifier, secret string) (*Identity, error) {
	for _, account := range s.accounts {
		if account.Identifier == identifier && account.Secret == secret {
			return &Identity{
				Subject: account.Subject,
				Email:   account.Identifier,
				Name:    account.Name,
				Source:  SourceDemo,
				Role:    account.Role,
			}, nil
		}
	}
	return nil, ErrInvalidCredentials
}
