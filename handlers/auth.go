package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	accounts   storage.AccountStore
	profiles   storage.ProfileStore
	jwtService *auth.JWTService
	googleAuth *auth.GoogleAuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	accounts storage.AccountStore,
	profiles storage.ProfileStore,
	jwtService *auth.JWTService,
	googleAuth *auth.GoogleAuthService,
) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		profiles:   profiles,
		jwtService: jwtService,
		googleAuth: googleAuth,
	}
}

// Register handles user registration with email/password
// @Summary Register a new user
// @Description Register a candidate or recruiter account with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration request"
// @Success 201 {object} models.AuthResponse "Registration successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 409 {object} models.ErrorResponse "User already exists"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	role := models.RoleCandidate
	if req.Role != "" {
		role = models.ParseRole(req.Role)
		if role != models.RoleCandidate && role != models.RoleRecruiter {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid role",
				Code:    http.StatusBadRequest,
				Details: "role must be candidate or recruiter",
			})
			return
		}
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("[AuthHandler] Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to process registration",
			Code:  http.StatusInternalServerError,
		})
		return
	}

	account := &models.Account{
		Email:    strings.TrimSpace(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Password: hashedPassword,
		Provider: models.ProviderEmail,
	}

	if err := h.accounts.CreateAccount(c.Request.Context(), account); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error: "User already exists",
				Code:  http.StatusConflict,
			})
			return
		}
		respondError(c, "AuthHandler", "Registration failed", err)
		return
	}

	profile := &models.UserProfile{
		Name:      account.Name,
		Email:     account.Email,
		Phone:     req.Phone,
		Role:      role,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if role == models.RoleRecruiter {
		profile.CompanyName = req.CompanyName
		profile.CompanyWebsite = req.CompanyWebsite
		profile.JobTitle = req.JobTitle
	}
	if h.profiles != nil {
		if err := h.profiles.SaveProfile(c.Request.Context(), account.ID, profile); err != nil {
			// the resolver writes a default profile on first sign-in
			log.Printf("[AuthHandler] Failed to write profile for %s: %v", account.Email, err)
		}
	}

	h.respondWithToken(c, http.StatusCreated, account, "Registration successful")
	log.Printf("[AuthHandler] User registered: %s (%s)", account.Email, role)
}

// Login handles user login with email/password
// @Summary Login user
// @Description Login with email and password to get JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	account, err := h.accounts.GetAccountByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[AuthHandler] Failed to load account %s: %v", req.Email, err)
		}
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid email or password",
			Code:  http.StatusUnauthorized,
		})
		return
	}

	if account.Provider == models.ProviderGoogle && account.Password == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "This account uses Google Sign-In. Please login with Google.",
			Code:  http.StatusUnauthorized,
		})
		return
	}

	if !auth.CheckPassword(account.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid email or password",
			Code:  http.StatusUnauthorized,
		})
		return
	}

	h.respondWithToken(c, http.StatusOK, account, "Login successful")
	log.Printf("[AuthHandler] User logged in: %s", account.Email)
}

// GoogleLogin handles Google SSO authentication
// @Summary Login with Google
// @Description Login or register using Google SSO ID token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body models.GoogleAuthRequest true "Google auth request"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request body"
// @Failure 401 {object} models.ErrorResponse "Invalid Google token"
// @Failure 503 {object} models.ErrorResponse "Google sign-in not configured"
// @Router /auth/google [post]
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	googleUser, err := h.googleAuth.VerifyIDToken(c.Request.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error: "Google sign-in is not available",
				Code:  http.StatusServiceUnavailable,
			})
			return
		}
		log.Printf("[AuthHandler] Failed to verify Google token: %v", err)
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid Google token",
			Code:  http.StatusUnauthorized,
		})
		return
	}

	ctx := c.Request.Context()
	account, err := h.accounts.GetAccountByEmail(ctx, googleUser.Email)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		account = googleUser.Account()
		if err := h.accounts.CreateAccount(ctx, account); err != nil {
			respondError(c, "AuthHandler", "Failed to create account", err)
			return
		}
		log.Printf("[AuthHandler] New Google user created: %s", account.Email)
	case err != nil:
		respondError(c, "AuthHandler", "Failed to load account", err)
		return
	case account.GoogleID == "":
		if err := h.accounts.UpdateAccount(ctx, account.Email, map[string]interface{}{
			"googleId": googleUser.GoogleID,
		}); err != nil {
			log.Printf("[AuthHandler] Failed to link Google ID for %s: %v", account.Email, err)
		}
		account.GoogleID = googleUser.GoogleID
	}

	h.respondWithToken(c, http.StatusOK, account, "Login successful")
	log.Printf("[AuthHandler] Google user logged in: %s", account.Email)
}

// Refresh issues a new token for a still-valid one
// @Summary Refresh token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AuthResponse "New token"
// @Failure 401 {object} models.ErrorResponse "Invalid or expired token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := h.jwtService.RefreshToken(auth.GetToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error: "Invalid or expired token",
			Code:  http.StatusUnauthorized,
		})
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{Token: token, Message: "Token refreshed"})
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, account *models.Account, message string) {
	token, err := h.jwtService.GenerateToken(account)
	if err != nil {
		log.Printf("[AuthHandler] Failed to generate token: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "Failed to generate token",
			Code:  http.StatusInternalServerError,
		})
		return
	}
	c.JSON(status, models.AuthResponse{
		Token:   token,
		Account: account,
		Message: message,
	})
}
