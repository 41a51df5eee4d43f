package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/navigation"
	"github.com/careerverse/backend/session"
	"github.com/careerverse/backend/storage"
)

// NavigationResponse is the sidebar for the current caller
type NavigationResponse struct {
	Items   []navigation.Item `json:"items"`
	Role    models.Role       `json:"role" example:"candidate"`
	Loading bool              `json:"isLoadingRole"`
}

// AccessResponse reports whether a page may be opened
type AccessResponse struct {
	Path    string `json:"path" example:"/requisitions"`
	Allowed bool   `json:"allowed"`
}

// RecentViewsForgetter drops a user's recently viewed jobs
type RecentViewsForgetter interface {
	ForgetRecent(userID string)
}

// SessionHandler serves the resolved role, navigation, and profiles
type SessionHandler struct {
	sessions *session.Manager
	menu     *navigation.Menu
	profiles storage.ProfileStore
	recent   RecentViewsForgetter
}

// NewSessionHandler creates a session handler. profiles may be nil when the
// profile store failed to initialize.
func NewSessionHandler(sessions *session.Manager, menu *navigation.Menu, profiles storage.ProfileStore, recent RecentViewsForgetter) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		menu:     menu,
		profiles: profiles,
		recent:   recent,
	}
}

// GetSession resolves the caller's role
// @Summary Current session
// @Description Resolves the caller's role, creating a default candidate profile when none appears
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.SessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /session [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims := auth.GetAuthClaims(c)
	s, err := h.sessions.Get(c.Request.Context(), session.IdentityFromClaims(claims))
	if err != nil {
		respondError(c, "SessionHandler", "Failed to resolve session", err)
		return
	}
	c.JSON(http.StatusOK, s.Response())
}

// Logout discards the caller's session
// @Summary Sign out
// @Tags Session
// @Security BearerAuth
// @Success 204
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	claims := auth.GetAuthClaims(c)
	h.sessions.Invalidate(claims.UserID)
	if h.recent != nil {
		h.recent.ForgetRecent(claims.UserID)
	}
	c.Status(http.StatusNoContent)
}

// Navigation returns the sidebar entries visible to the caller. Anonymous
// callers get no entries; peek=true answers from the cached session without
// resolving.
// @Summary Sidebar navigation
// @Tags Session
// @Produce json
// @Param peek query bool false "Do not wait for role resolution"
// @Success 200 {object} NavigationResponse
// @Router /navigation [get]
func (h *SessionHandler) Navigation(c *gin.Context) {
	claims := auth.GetAuthClaims(c)
	if claims == nil {
		c.JSON(http.StatusOK, NavigationResponse{Items: h.menu.Visible(models.RoleNone, false)})
		return
	}

	id := session.IdentityFromClaims(claims)
	var s *session.Session
	if c.Query("peek") == "true" {
		s = h.sessions.Peek(id)
	} else {
		var err error
		if s, err = h.sessions.Get(c.Request.Context(), id); err != nil {
			respondError(c, "SessionHandler", "Failed to resolve session", err)
			return
		}
	}

	c.JSON(http.StatusOK, NavigationResponse{
		Items:   h.menu.Visible(s.Role, s.Loading),
		Role:    s.Role,
		Loading: s.Loading,
	})
}

// Access reports whether the caller's role may open a page
// @Summary Page access check
// @Tags Session
// @Produce json
// @Security BearerAuth
// @Param path query string true "Page path"
// @Success 200 {object} AccessResponse
// @Router /navigation/access [get]
func (h *SessionHandler) Access(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		badRequest(c, "path is required", nil)
		return
	}
	role := actorFrom(c).Role
	c.JSON(http.StatusOK, AccessResponse{Path: path, Allowed: h.menu.Allows(role, path)})
}

// GetProfile returns the caller's profile
// @Summary Get user profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ProfileResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /profile [get]
func (h *SessionHandler) GetProfile(c *gin.Context) {
	if !h.profilesAvailable(c) {
		return
	}
	actor := actorFrom(c)
	profile, err := h.profiles.GetProfile(c.Request.Context(), actor.UserID)
	if err != nil {
		respondError(c, "SessionHandler", "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{Profile: profile})
}

// UpdateProfile merges the given fields into the caller's profile
// @Summary Update user profile
// @Description Merge-writes personal and professional fields; the role cannot be changed here
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	if !h.profilesAvailable(c) {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	actor := actorFrom(c)
	ctx := c.Request.Context()
	update := &models.UserProfile{
		Name:           req.Name,
		Phone:          req.Phone,
		Skills:         req.Skills,
		Location:       req.Location,
		Education:      req.Education,
		Experience:     req.Experience,
		JobTitle:       req.JobTitle,
		CompanyName:    req.CompanyName,
		CompanyWebsite: req.CompanyWebsite,
		UpdatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.profiles.SaveProfile(ctx, actor.UserID, update); err != nil {
		respondError(c, "SessionHandler", "Failed to update profile", err)
		return
	}

	profile, err := h.profiles.GetProfile(ctx, actor.UserID)
	if err != nil {
		respondError(c, "SessionHandler", "Failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, models.ProfileResponse{Profile: profile, Message: "Profile updated successfully"})
}

// UpdateRole sets another user's role
// @Summary Set user role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Param request body models.UpdateRoleRequest true "New role"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/users/{userId}/role [put]
func (h *SessionHandler) UpdateRole(c *gin.Context) {
	if !h.profilesAvailable(c) {
		return
	}
	var req models.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	role := models.ParseRole(req.Role)
	if role == models.RoleNone {
		badRequest(c, "Invalid role", errors.New("role must be candidate, recruiter or admin"))
		return
	}

	userID := c.Param("userId")
	ctx := c.Request.Context()
	if err := h.profiles.SaveProfile(ctx, userID, &models.UserProfile{
		Role:      role,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		respondError(c, "SessionHandler", "Failed to update role", err)
		return
	}
	h.sessions.Invalidate(userID)

	profile, err := h.profiles.GetProfile(ctx, userID)
	if err != nil {
		respondError(c, "SessionHandler", "Failed to load profile", err)
		return
	}
	log.Printf("[SessionHandler] %s set role of %s to %s", actorFrom(c).UserID, userID, role)
	c.JSON(http.StatusOK, models.ProfileResponse{Profile: profile, Message: "Role updated"})
}

func (h *SessionHandler) profilesAvailable(c *gin.Context) bool {
	if h.profiles != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error: "Profile store is not available",
		Code:  http.StatusServiceUnavailable,
	})
	return false
}
