package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/resume"
)

// ResumeHandler serves the resume builder
type ResumeHandler struct {
	builder *resume.Builder
}

// NewResumeHandler creates a resume handler
func NewResumeHandler(builder *resume.Builder) *ResumeHandler {
	return &ResumeHandler{builder: builder}
}

func (h *ResumeHandler) respondState(c *gin.Context, state models.ResumeDraftResponse, err error, message string) {
	if err != nil {
		respondError(c, "ResumeHandler", message, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetResume returns the current resume
// @Summary Current resume
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ResumeDraftResponse
// @Router /resume [get]
func (h *ResumeHandler) GetResume(c *gin.Context) {
	state, err := h.builder.Load(c.Request.Context(), actorFrom(c).UserID)
	h.respondState(c, state, err, "Failed to load resume")
}

// UpdateResume records a new resume state
// @Summary Edit resume
// @Description Records a snapshot unless the resume is unchanged
// @Tags Resume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ResumeData true "Full resume"
// @Success 200 {object} models.ResumeDraftResponse
// @Router /resume [put]
func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	var data models.ResumeData
	if err := c.ShouldBindJSON(&data); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	state, err := h.builder.Edit(c.Request.Context(), actorFrom(c).UserID, data)
	h.respondState(c, state, err, "Failed to save resume")
}

// Undo restores the previous snapshot
// @Summary Undo
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ResumeDraftResponse
// @Router /resume/undo [post]
func (h *ResumeHandler) Undo(c *gin.Context) {
	state, err := h.builder.Undo(c.Request.Context(), actorFrom(c).UserID)
	h.respondState(c, state, err, "Failed to undo")
}

// Redo restores the next snapshot
// @Summary Redo
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ResumeDraftResponse
// @Router /resume/redo [post]
func (h *ResumeHandler) Redo(c *gin.Context) {
	state, err := h.builder.Redo(c.Request.Context(), actorFrom(c).UserID)
	h.respondState(c, state, err, "Failed to redo")
}

// Import parses an uploaded resume into the builder
// @Summary Import resume file
// @Tags Resume
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Resume (pdf, doc, docx, txt)"
// @Success 200 {object} models.ResumeDraftResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /resume/import [post]
func (h *ResumeHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		badRequest(c, "Resume file is required", err)
		return
	}
	defer file.Close()

	state, err := h.builder.Import(c.Request.Context(), actorFrom(c).UserID, header.Filename, header.Size, file)
	h.respondState(c, state, err, "Failed to parse resume")
}

// Enhance asks for rewordings of a section
// @Summary Enhance a section
// @Tags Resume
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EnhanceRequest true "Section and text"
// @Success 200 {object} models.EnhanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /resume/enhance [post]
func (h *ResumeHandler) Enhance(c *gin.Context) {
	var req models.EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	versions, err := h.builder.Enhance(c.Request.Context(), req.SectionName, req.TextToEnhance)
	if err != nil {
		respondError(c, "ResumeHandler", "Failed to enhance text", err)
		return
	}
	c.JSON(http.StatusOK, models.EnhanceResponse{EnhancedVersions: versions})
}

// ElevatorPitch generates a pitch from the current resume
// @Summary Generate elevator pitch
// @Tags Resume
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.ElevatorPitchResponse
// @Router /resume/elevator-pitch [post]
func (h *ResumeHandler) ElevatorPitch(c *gin.Context) {
	pitch, err := h.builder.Pitch(c.Request.Context(), actorFrom(c).UserID)
	if err != nil {
		respondError(c, "ResumeHandler", "Failed to generate elevator pitch", err)
		return
	}
	c.JSON(http.StatusOK, models.ElevatorPitchResponse{ElevatorPitch: pitch})
}

// Export renders the current resume
// @Summary Download resume
// @Tags Resume
// @Accept json
// @Produce application/pdf,application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param format path string true "pdf or docx"
// @Param request body models.ExportRequest false "Style options"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Router /resume/export/{format} [post]
func (h *ResumeHandler) Export(c *gin.Context) {
	var req models.ExportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request body", err)
			return
		}
	}

	doc, err := h.builder.Export(c.Request.Context(), actorFrom(c).UserID, c.Param("format"), req.Style)
	if err != nil {
		respondError(c, "ResumeHandler", "Failed to generate document", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

// UploadPitchVideo stores a recorded pitch video
// @Summary Upload pitch video
// @Tags Resume
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param video formData file true "Video (mp4, webm, mov)"
// @Success 201 {object} models.UploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /resume/pitch-video [post]
func (h *ResumeHandler) UploadPitchVideo(c *gin.Context) {
	file, header, err := c.Request.FormFile("video")
	if err != nil {
		badRequest(c, "Video file is required", err)
		return
	}
	defer file.Close()

	url, err := h.builder.UploadPitchVideo(c.Request.Context(), actorFrom(c), header.Filename, header.Size, file)
	if err != nil {
		respondError(c, "ResumeHandler", "Failed to upload video", err)
		return
	}
	c.JSON(http.StatusCreated, models.UploadResponse{URL: url, FileName: header.Filename, Message: "Video uploaded"})
}
