package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// ProviderConfig holds the external OIDC verifier configuration
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// ProviderSource verifies credentials against an external OIDC provider using
// the resource-owner password grant, then reads the subject's profile from the
// userinfo endpoint.
type ProviderSource struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
}

// NewProviderSource discovers the OIDC provider and prepares the OAuth2 config
func NewProviderSource(ctx context.Context, config ProviderConfig) (*ProviderSource, error) {
	provider, err := oidc.NewProvider(ctx, config.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}

	scopes := config.Scopes
	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauth2Config := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}

	return &ProviderSource{
		provider:     provider,
		oauth2Config: oauth2Config,
	}, nil
}

// Name returns the source name
func (p *ProviderSource) Name() string { return "provider" }

// Authenticate exchanges the identifier/secret for a token and resolves the
// subject's identity from userinfo. Rejected credentials map to
// ErrInvalidCredentials; transport and provider-side failures map to
// ErrProviderUnavailable.
func (p *ProviderSource) Authenticate(ctx context.Context, identifier, secret string) (*Identity, error) {
	token, err := p.oauth2Config.PasswordCredentialsToken(ctx, identifier, secret)
	if err != nil {
		if retrieveErr, ok := err.(*oauth2.RetrieveError); ok {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return nil, ErrInvalidCredentials
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	userInfo, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo: %v", ErrProviderUnavailable, err)
	}

	var claims struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := userInfo.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: claims: %v", ErrProviderUnavailable, err)
	}

	email := claims.Email
	if email == "" {
		email = userInfo.Email
	}
	if email == "" {
		email = identifier
	}

	return &Identity{
		Subject: userInfo.Subject,
		Email:   email,
		Name:    claims.Name,
		Source:  SourceProvider,
	}, nil
}
