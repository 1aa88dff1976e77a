package api

// LoginRequest carries credentials for POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful authentication
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Session   *SessionInfo `json:"session"`
}

// SessionInfo is the client-visible view of a session
type SessionInfo struct {
	Subject string `json:"subject"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Source  string `json:"source"`
	Role    string `json:"role,omitempty"`
	Panel   string `json:"panel"`
}

// SignupRequest carries a self-service student registration. The secret is
// provisioned with the identity provider; the portal records the profile.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// CredentialsRequest updates the signed-in account's contact email
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserRequest creates a profile row for a provider-managed account
type UserRequest struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// CompanyRequest carries a company posting create/update
type CompanyRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Positions    []string `json:"positions"`
	Deadline     string   `json:"deadline"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location"`
}

// ReviewRequest carries a staff decision on a resume
type ReviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// RoleUpdateRequest changes a user's role
type RoleUpdateRequest struct {
	Role string `json:"role"`
}

// DemoCredential describes one demo account for the login screen
type DemoCredential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}
