package auth

import (
	"context"
	"errors"
)

// Default pinned super-admin credentials. Overridable via configuration;
// kept for compatibility with existing seeded deployments.
const (
	DefaultSuperAdminEmail  = "superadmin@example.com"
	DefaultSuperAdminSecret = "super123"
)

// Resolver authenticates identifier/secret pairs against an ordered list of
// credential sources and issues sessions through the registry.
type Resolver struct {
	sources  []CredentialSource
	registry *Registry

	// Legacy identity-pinned super admin. When the identifier equals
	// pinnedEmail, the secret is checked against pinnedSecret and no other
	// source is consulted.
	pinnedEmail  string
	pinnedSecret string
}

// Option configures a Resolver
type Option func(*Resolver)

// WithPinnedSuperAdmin overrides the pinned super-admin credentials.
// An empty email disables the pinned path entirely.
func WithPinnedSuperAdmin(email, secret string) Option {
	return func(r *Resolver) {
		r.pinnedEmail = email
		r.pinnedSecret = secret
	}
}

// NewResolver creates a resolver trying the given sources in order
func NewResolver(registry *Registry, sources []CredentialSource, opts ...Option) *Resolver {
	r := &Resolver{
		sources:      sources,
		registry:     registry,
		pinnedEmail:  DefaultSuperAdminEmail,
		pinnedSecret: DefaultSuperAdminSecret,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Registry returns the session registry the resolver issues into
func (r *Resolver) Registry() *Registry { return r.registry }

// Authenticate verifies the pair and issues a session.
//
// The pinned super-admin check runs first: a matching identifier with the
// wrong secret fails immediately with ErrInvalidCredentials, never reaching
// the provider. Otherwise sources run in order; the first success wins.
// ErrProviderUnavailable aborts the chain so a transient outage is not
// reported as bad credentials.
func (r *Resolver) Authenticate(ctx context.Context, identifier, secret string) (*Session, error) {
	if r.pinnedEmail != "" && identifier == r.pinnedEmail {
		if secret != r.pinnedSecret {
			return nil, ErrInvalidCredentials
		}
		return r.registry.Create(&Identity{
			Subject: "0",
			Email:   r.pinnedEmail,
			Name:    "Super Admin",
			Source:  SourcePinned,
			Role:    "super_admin",
		})
	}

	for _, source := range r.sources {
		identity, err := source.Authenticate(ctx, identifier, secret)
		if err != nil {
			if errors.Is(err, ErrProviderUnavailable) {
				return nil, err
			}
			continue
		}
		return r.registry.Create(identity)
	}
	return nil, ErrInvalidCredentials
}

// SignOut destroys the session for the given token
func (r *Resolver) SignOut(token string) {
	r.registry.Remove(token)
}
