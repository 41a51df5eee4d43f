package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/applications"
	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/resume"
	"github.com/careerverse/backend/session"
	"github.com/careerverse/backend/storage"
)

// Version is reported by the health check
const Version = "1.0.0"

// HealthCheck returns server health status
// @Summary Health check
// @Description Check if the server is running and healthy
// @Tags System
// @Produce json
// @Success 200 {object} models.HealthResponse "Server is healthy"
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// actorFrom builds the caller from the token claims and the session set by
// session.RequireRole
func actorFrom(c *gin.Context) models.Actor {
	var actor models.Actor
	if claims := auth.GetAuthClaims(c); claims != nil {
		actor.UserID = claims.UserID
		actor.Email = claims.Email
		actor.Name = claims.Name
	}
	if s := session.FromContext(c); s != nil {
		actor.Role = s.Role
	}
	return actor
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Error: message, Code: http.StatusBadRequest}
	if err != nil {
		resp.Details = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// respondError maps a service error to a status code. Validation details
// are returned; anything unexpected is logged and answered generically.
func respondError(c *gin.Context, component, message string, err error) {
	var (
		vErr   *models.ValidationError
		fErr   *models.ForbiddenError
		svcErr *resume.ServiceError
	)

	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   message,
			Code:    http.StatusBadRequest,
			Details: vErr.Error(),
		})
	case errors.As(err, &fErr), errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:   "Access Denied",
			Code:    http.StatusForbidden,
			Details: err.Error(),
		})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "Not found",
			Code:  http.StatusNotFound,
		})
	case errors.Is(err, storage.ErrAlreadyExists):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error: "Already exists",
			Code:  http.StatusConflict,
		})
	case errors.Is(err, applications.ErrIllegalTransition),
		errors.Is(err, applications.ErrJobNotOpen),
		errors.Is(err, applications.ErrApplicantCapReached):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   message,
			Code:    http.StatusConflict,
			Details: err.Error(),
		})
	case errors.Is(err, storage.ErrUploadsDisabled):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "File uploads are not available",
			Code:  http.StatusServiceUnavailable,
		})
	case errors.As(err, &svcErr):
		log.Printf("[%s] %s: %v", component, message, err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   message,
			Code:    http.StatusBadGateway,
			Details: svcErr.Message,
		})
	default:
		log.Printf("[%s] %s: %v", component, message, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: message,
			Code:  http.StatusInternalServerError,
		})
	}
}
