package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
)

var (
	// ErrGoogleNotConfigured is returned when GOOGLE_CLIENT_ID is unset
	ErrGoogleNotConfigured = errors.New("google sign-in is not configured")
	// ErrEmailNotVerified is returned for Google accounts whose email is unverified
	ErrEmailNotVerified = errors.New("google email is not verified")
)

type tokenValidator func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// GoogleAuthService checks Google ID tokens against the app's client id
type GoogleAuthService struct {
	clientID string
	validate tokenValidator
}

// GoogleIdentity is the signed-in Google user
type GoogleIdentity struct {
	GoogleID string
	Email    string
	Name     string
}

// NewGoogleAuthService creates a verifier. Without GOOGLE_CLIENT_ID every
// verification fails with ErrGoogleNotConfigured.
func NewGoogleAuthService(cfg *config.Config) *GoogleAuthService {
	return &GoogleAuthService{clientID: cfg.GoogleClientID, validate: idtoken.Validate}
}

// VerifyIDToken validates idToken and extracts the identity. The email is
// lower-cased so it matches accounts registered with a password.
func (s *GoogleAuthService) VerifyIDToken(ctx context.Context, idToken string) (*GoogleIdentity, error) {
	if s.clientID == "" {
		return nil, ErrGoogleNotConfigured
	}

	payload, err := s.validate(ctx, idToken, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, ErrEmailNotVerified
	}

	email, _ := payload.Claims["email"].(string)
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email not found in token")
	}

	name, _ := payload.Claims["name"].(string)
	if name = strings.TrimSpace(name); name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	return &GoogleIdentity{GoogleID: payload.Subject, Email: email, Name: name}, nil
}

// Account builds the account first created for this identity
func (g *GoogleIdentity) Account() *models.Account {
	return &models.Account{
		Email:    g.Email,
		Name:     g.Name,
		Provider: models.ProviderGoogle,
		GoogleID: g.GoogleID,
	}
}
