package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/applications"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/resume"
	"github.com/careerverse/backend/storage"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		details string
	}{
		{"validation", &models.ValidationError{Fields: []string{"email"}, Message: "email is required"}, http.StatusBadRequest, "email is required"},
		{"forbidden", &models.ForbiddenError{Reason: "not yours"}, http.StatusForbidden, ""},
		{"not found", fmt.Errorf("job x: %w", storage.ErrNotFound), http.StatusNotFound, ""},
		{"already exists", storage.ErrAlreadyExists, http.StatusConflict, ""},
		{"illegal transition", &applications.IllegalTransitionError{From: models.StatusApplied, To: models.StatusHired}, http.StatusConflict, ""},
		{"cap reached", applications.ErrApplicantCapReached, http.StatusConflict, ""},
		{"uploads disabled", storage.ErrUploadsDisabled, http.StatusServiceUnavailable, ""},
		{"resume service", fmt.Errorf("failed: %w", &resume.ServiceError{StatusCode: 500, Message: "parser crashed"}), http.StatusBadGateway, "parser crashed"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, "Test", "Request failed", tt.err)

			assert.Equal(t, tt.status, w.Code)
			var resp models.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.status, resp.Code)
			if tt.details != "" {
				assert.Contains(t, resp.Details, tt.details)
			}
			if tt.status == http.StatusInternalServerError {
				assert.Empty(t, resp.Details, "internal errors are not leaked")
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HealthCheck(c)

	require.Equal(t, http.StatusOK, w.Code)
	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, Version, resp.Version)
}
