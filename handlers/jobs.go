package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/jobs"
	"github.com/careerverse/backend/models"
)

// JobsHandler serves job listings and the requisition editor
type JobsHandler struct {
	jobs *jobs.Service
}

// NewJobsHandler creates a jobs handler
func NewJobsHandler(svc *jobs.Service) *JobsHandler {
	return &JobsHandler{jobs: svc}
}

// ListJobs lists Published jobs
// @Summary Job listings
// @Description Published jobs, newest first. Set filters repeat or take comma-separated values.
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param q query string false "Keyword in title, company, description or skills"
// @Param company query string false "Company name contains"
// @Param location query string false "Location contains"
// @Param employmentType query []string false "Employment types"
// @Param experienceLevel query []string false "Experience levels"
// @Param workArrangement query []string false "Work arrangements"
// @Success 200 {object} models.JobListResponse
// @Router /jobs [get]
func (h *JobsHandler) ListJobs(c *gin.Context) {
	list, err := h.jobs.ListPublished(c.Request.Context(), jobs.FilterFromQuery(c.Request.URL.Query()))
	if err != nil {
		respondError(c, "JobsHandler", "Failed to list jobs", err)
		return
	}
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: list, Total: len(list)})
}

// RecentJobs lists the caller's recently viewed jobs
// @Summary Recently viewed jobs
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.JobListResponse
// @Router /jobs/recent [get]
func (h *JobsHandler) RecentJobs(c *gin.Context) {
	list := h.jobs.Recent(actorFrom(c))
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: list, Total: len(list)})
}

// GetJob returns one job and records the view
// @Summary Job details
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Success 200 {object} models.JobResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{jobId} [get]
func (h *JobsHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.View(c.Request.Context(), actorFrom(c), c.Param("jobId"))
	if err != nil {
		respondError(c, "JobsHandler", "Failed to load job", err)
		return
	}
	c.JSON(http.StatusOK, models.JobResponse{Job: job})
}

// ListRequisitions lists the caller's requisitions
// @Summary My requisitions
// @Tags Requisitions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Draft, Published or All"
// @Param q query string false "Search title, company and location"
// @Success 200 {object} models.JobListResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /requisitions [get]
func (h *JobsHandler) ListRequisitions(c *gin.Context) {
	filter, err := jobs.ParseRequisitionFilter(c.Query("status"), c.Query("q"))
	if err != nil {
		respondError(c, "JobsHandler", "Invalid filter", err)
		return
	}
	list, err := h.jobs.ListForRecruiter(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		respondError(c, "JobsHandler", "Failed to list requisitions", err)
		return
	}
	c.JSON(http.StatusOK, models.JobListResponse{Jobs: list, Total: len(list)})
}

// GetRequisition returns one requisition, including drafts
// @Summary Requisition details
// @Tags Requisitions
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Success 200 {object} models.JobResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /requisitions/{jobId} [get]
func (h *JobsHandler) GetRequisition(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), actorFrom(c), c.Param("jobId"))
	if err != nil {
		respondError(c, "JobsHandler", "Failed to load requisition", err)
		return
	}
	c.JSON(http.StatusOK, models.JobResponse{Job: job})
}

// CreateRequisition saves a new requisition as a draft or published job
// @Summary Create requisition
// @Tags Requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.JobRequest true "Requisition"
// @Success 201 {object} models.JobResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /requisitions [post]
func (h *JobsHandler) CreateRequisition(c *gin.Context) {
	h.saveRequisition(c, "", http.StatusCreated)
}

// UpdateRequisition replaces an existing requisition
// @Summary Update requisition
// @Tags Requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Param request body models.JobRequest true "Requisition"
// @Success 200 {object} models.JobResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /requisitions/{jobId} [put]
func (h *JobsHandler) UpdateRequisition(c *gin.Context) {
	h.saveRequisition(c, c.Param("jobId"), http.StatusOK)
}

func (h *JobsHandler) saveRequisition(c *gin.Context, jobID string, status int) {
	var req models.JobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	job, err := h.jobs.Save(c.Request.Context(), actorFrom(c), jobID, req)
	if err != nil {
		respondError(c, "JobsHandler", "Please fill in all required fields.", err)
		return
	}

	message := "Job saved as draft"
	if job.IsPublished() {
		message = "Job published"
	}
	c.JSON(status, models.JobResponse{Job: job, Message: message})
}

// DeleteRequisition removes a requisition
// @Summary Delete requisition
// @Tags Requisitions
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /requisitions/{jobId} [delete]
func (h *JobsHandler) DeleteRequisition(c *gin.Context) {
	if err := h.jobs.Delete(c.Request.Context(), actorFrom(c), c.Param("jobId")); err != nil {
		respondError(c, "JobsHandler", "Failed to delete requisition", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Suggest proposes description rewrites
// @Summary Description suggestions
// @Tags Requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.SuggestionRequest true "Current title and description"
// @Success 200 {object} models.SuggestionResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /requisitions/suggestions [post]
func (h *JobsHandler) Suggest(c *gin.Context) {
	var req models.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}

	suggestions, err := h.jobs.Suggest(c.Request.Context(), req.JobTitle, req.Description)
	if err != nil {
		respondError(c, "JobsHandler", "Failed to generate suggestions", err)
		return
	}
	c.JSON(http.StatusOK, models.SuggestionResponse{Suggestions: suggestions})
}

// UploadLogo stores a company logo
// @Summary Upload company logo
// @Tags Requisitions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param logo formData file true "Logo image (png, jpg, svg, webp)"
// @Success 201 {object} models.UploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /requisitions/logo [post]
func (h *JobsHandler) UploadLogo(c *gin.Context) {
	file, header, err := c.Request.FormFile("logo")
	if err != nil {
		badRequest(c, "Logo file is required", err)
		return
	}
	defer file.Close()

	url, err := h.jobs.UploadLogo(c.Request.Context(), actorFrom(c), header.Filename, header.Size, file)
	if err != nil {
		respondError(c, "JobsHandler", "Failed to upload logo", err)
		return
	}
	c.JSON(http.StatusCreated, models.UploadResponse{URL: url, FileName: header.Filename, Message: "Logo uploaded"})
}
