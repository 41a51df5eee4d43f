package models

import "time"

// Account is the sign-in identity a session token is issued for
// @Description Account information
type Account struct {
	ID        string    `json:"id" firestore:"id" example:"3f0c1c1e-2f7a-4c52-9d7b-2f0e8d0a9a11"`
	Email     string    `json:"email" firestore:"email" example:"user@example.com"`
	Name      string    `json:"name" firestore:"name" example:"John Doe"`
	Password  string    `json:"-" firestore:"password"` // bcrypt hash, never sent to client
	Provider  string    `json:"provider" firestore:"provider" example:"email"`
	GoogleID  string    `json:"-" firestore:"googleId,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Provider constants
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// RegisterRequest represents registration request.
// Role may be "candidate" or "recruiter"; recruiters may add company details.
// @Description User registration request
type RegisterRequest struct {
	Email          string `json:"email" binding:"required,email" example:"user@example.com"`
	Password       string `json:"password" binding:"required,min=6" example:"password123"`
	Name           string `json:"name" binding:"required" example:"John Doe"`
	Role           string `json:"role,omitempty" example:"recruiter"`
	Phone          string `json:"phone,omitempty"`
	CompanyName    string `json:"companyName,omitempty" example:"Acme"`
	CompanyWebsite string `json:"companyWebsite,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty" example:"Talent Partner"`
}

// LoginRequest represents login request
// @Description User login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// GoogleAuthRequest represents Google SSO authentication request
// @Description Google SSO authentication request
type GoogleAuthRequest struct {
	IDToken string `json:"idToken" binding:"required" example:"eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// AuthResponse represents authentication response
// @Description Authentication response with JWT token
type AuthResponse struct {
	Token   string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	Account *Account `json:"account"`
	Message string   `json:"message,omitempty" example:"Login successful"`
}
