package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/applications"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/utils"
)

// ResumeParser turns an uploaded resume into structured data
type ResumeParser interface {
	Parse(ctx context.Context, fileName string, size int64, body io.Reader) (models.ResumeData, error)
}

// ApplicationsHandler serves the apply page and recruiter review
type ApplicationsHandler struct {
	apps   *applications.Service
	parser ResumeParser
}

// NewApplicationsHandler creates an applications handler. parser may be nil.
func NewApplicationsHandler(apps *applications.Service, parser ResumeParser) *ApplicationsHandler {
	return &ApplicationsHandler{apps: apps, parser: parser}
}

// GetApplication returns the caller's application for a job
// @Summary My application for a job
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Success 200 {object} models.ApplicationResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /jobs/{jobId}/application [get]
func (h *ApplicationsHandler) GetApplication(c *gin.Context) {
	app, err := h.apps.Get(c.Request.Context(), actorFrom(c), c.Param("jobId"))
	if err != nil {
		respondError(c, "ApplicationsHandler", "Failed to load application", err)
		return
	}
	c.JSON(http.StatusOK, models.ApplicationResponse{Application: app})
}

// SaveForLater stores a draft application
// @Summary Save application for later
// @Description Stores the form without validation under status "Started Application"
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Param fullName formData string false "Full name"
// @Param email formData string false "Email"
// @Param phone formData string false "Phone"
// @Param resume formData file false "Resume (pdf, doc, docx, txt)"
// @Param pitchVideo formData file false "Elevator pitch video"
// @Success 200 {object} models.ApplicationResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /jobs/{jobId}/application [put]
func (h *ApplicationsHandler) SaveForLater(c *gin.Context) {
	h.save(c, false)
}

// Submit sends the application
// @Summary Submit application
// @Description Validates the form and moves the application to "Applied"
// @Tags Applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param jobId path string true "Job ID"
// @Param fullName formData string true "Full name"
// @Param email formData string true "Email"
// @Param phone formData string true "Phone"
// @Param termsAccepted formData bool true "Terms accepted"
// @Param screeningAnswers formData []string false "Answers in question order"
// @Param resume formData file false "Resume (pdf, doc, docx, txt)"
// @Param pitchVideo formData file false "Elevator pitch video"
// @Param parseResume formData bool false "Attach parsed resume data"
// @Success 201 {object} models.ApplicationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /jobs/{jobId}/application [post]
func (h *ApplicationsHandler) Submit(c *gin.Context) {
	h.save(c, true)
}

func (h *ApplicationsHandler) save(c *gin.Context, submit bool) {
	var form models.ApplicationForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "Invalid form", err)
		return
	}

	files, err := h.attachments(c)
	if err != nil {
		badRequest(c, "Invalid attachment", err)
		return
	}

	ctx := c.Request.Context()
	actor := actorFrom(c)
	jobID := c.Param("jobId")

	var app *models.Application
	if submit {
		app, err = h.apps.Submit(ctx, actor, jobID, form, files)
	} else {
		app, err = h.apps.SaveForLater(ctx, actor, jobID, form, files)
	}
	if err != nil {
		message := "Failed to save application"
		var vErr *models.ValidationError
		if submit && errors.As(err, &vErr) {
			message = "Please fill in all required fields."
		} else if submit {
			message = "Failed to submit application"
		}
		respondError(c, "ApplicationsHandler", message, err)
		return
	}

	if submit {
		c.JSON(http.StatusCreated, models.ApplicationResponse{Application: app, Message: "Application submitted successfully!"})
		return
	}
	c.JSON(http.StatusOK, models.ApplicationResponse{Application: app, Message: "Application saved for later."})
}

// attachments reads the optional files of a multipart form
func (h *ApplicationsHandler) attachments(c *gin.Context) (applications.Attachments, error) {
	var files applications.Attachments
	files.RemovePitchVideo, _ = strconv.ParseBool(c.PostForm("removePitchVideo"))

	resumeFile, err := formFile(c, "resume")
	if err != nil {
		return files, err
	}
	video, err := formFile(c, "pitchVideo")
	if err != nil {
		return files, err
	}
	if video != nil {
		files.PitchVideo = &video.File
	}
	if resumeFile == nil {
		return files, nil
	}
	files.Resume = &resumeFile.File

	if parse, _ := strconv.ParseBool(c.PostForm("parseResume")); parse && h.parser != nil {
		parsed, err := h.parser.Parse(c.Request.Context(), resumeFile.Name, resumeFile.Size, bytes.NewReader(resumeFile.data))
		if err != nil {
			log.Printf("[ApplicationsHandler] Resume parsing skipped: %v", err)
		} else {
			files.ParsedResume = &parsed
		}
	}
	return files, nil
}

type bufferedFile struct {
	applications.File
	data []byte
}

// formFile reads an optional upload into memory. A missing field returns nil.
func formFile(c *gin.Context, field string) (*bufferedFile, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return readHeader(header)
}

func readHeader(header *multipart.FileHeader) (*bufferedFile, error) {
	if header.Size > utils.MaxUploadBytes {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", header.Size, utils.MaxUploadBytes)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}
	return &bufferedFile{
		File: applications.File{Name: header.Filename, Size: int64(len(data)), Body: bytes.NewReader(data)},
		data: data,
	}, nil
}

// ListMine lists the caller's applications
// @Summary My applications
// @Tags Applications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ApplicationListResponse
// @Router /applications [get]
func (h *ApplicationsHandler) ListMine(c *gin.Context) {
	apps, err := h.apps.ListForCandidate(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, "ApplicationsHandler", "Failed to list applications", err)
		return
	}
	c.JSON(http.StatusOK, models.ApplicationListResponse{Applications: apps, Total: len(apps)})
}

// ListCandidates lists applications to the caller's jobs with applicant profiles
// @Summary Applicants to my jobs
// @Tags Candidates
// @Produce json
// @Security BearerAuth
// @Param jobId query string false "Only this job"
// @Param status query string false "Application status or All"
// @Param q query string false "Search job title, company, applicant name, email, skills and location"
// @Success 200 {object} models.CandidateListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /candidates [get]
func (h *ApplicationsHandler) ListCandidates(c *gin.Context) {
	filter, err := applications.ParseReviewFilter(c.Query("status"), c.Query("q"))
	if err != nil {
		respondError(c, "ApplicationsHandler", "Invalid filter", err)
		return
	}
	apps, err := h.apps.Review(c.Request.Context(), actorFrom(c), c.Query("jobId"), filter)
	if err != nil {
		respondError(c, "ApplicationsHandler", "Failed to list candidates", err)
		return
	}
	c.JSON(http.StatusOK, models.CandidateListResponse{Applications: apps, Total: len(apps)})
}

// UpdateStatus moves an application along its lifecycle
// @Summary Change application status
// @Tags Candidates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param applicantId path string true "Applicant user ID"
// @Param applicationId path string true "Application ID"
// @Param request body models.StatusUpdateRequest true "New status"
// @Success 200 {object} models.ApplicationResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Illegal transition"
// @Router /candidates/{applicantId}/applications/{applicationId}/status [put]
func (h *ApplicationsHandler) UpdateStatus(c *gin.Context) {
	var req models.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	status, ok := models.ParseApplicationStatus(req.Status)
	if !ok {
		badRequest(c, "Invalid status", fmt.Errorf("unknown status %q", req.Status))
		return
	}

	app, err := h.apps.ChangeStatus(c.Request.Context(), actorFrom(c), c.Param("applicantId"), c.Param("applicationId"), status)
	if err != nil {
		respondError(c, "ApplicationsHandler", "Failed to update status", err)
		return
	}
	c.JSON(http.StatusOK, models.ApplicationResponse{
		Application:  app,
		NextStatuses: applications.Next(app.Status),
		Message:      "Status updated",
	})
}
