package jobs

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
	"github.com/careerverse/backend/utils"
)

// ErrUploadsDisabled is returned when no blob store is configured
var ErrUploadsDisabled = storage.ErrUploadsDisabled

// Service lists jobs for candidates and edits requisitions for recruiters
type Service struct {
	store     storage.JobStore
	blobs     storage.BlobStore
	suggester Suggester
	recent    *RecentTracker
	now       func() time.Time
}

// NewService creates a job service. blobs may be nil; suggester defaults to StaticSuggester.
func NewService(store storage.JobStore, blobs storage.BlobStore, suggester Suggester) *Service {
	if suggester == nil {
		suggester = StaticSuggester{}
	}
	return &Service{
		store:     store,
		blobs:     blobs,
		suggester: suggester,
		recent:    NewRecentTracker(MaxRecent),
		now:       time.Now,
	}
}

// ListPublished returns Published jobs matching filter, newest first
func (s *Service) ListPublished(ctx context.Context, filter Filter) ([]models.Job, error) {
	jobs, err := s.store.ListPublishedJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list published jobs: %w", err)
	}
	if filter.IsZero() {
		return jobs, nil
	}
	return Apply(jobs, filter), nil
}

// Get returns a job. Unpublished jobs are only visible to their owner and
// admins; anyone else gets storage.ErrNotFound.
func (s *Service) Get(ctx context.Context, actor models.Actor, jobID string) (*models.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsPublished() && !canEdit(actor, job) {
		return nil, storage.ErrNotFound
	}
	return job, nil
}

// View returns a job and records it in the actor's recently viewed list
func (s *Service) View(ctx context.Context, actor models.Actor, jobID string) (*models.Job, error) {
	job, err := s.Get(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCandidate {
		s.recent.Record(actor.UserID, *job)
	}
	return job, nil
}

// Recent lists the actor's recently viewed jobs
func (s *Service) Recent(actor models.Actor) []models.Job {
	return s.recent.List(actor.UserID)
}

// ForgetRecent clears the actor's recently viewed list
func (s *Service) ForgetRecent(userID string) {
	s.recent.Forget(userID)
}

// ListForRecruiter returns the actor's own requisitions matching filter,
// oldest first
func (s *Service) ListForRecruiter(ctx context.Context, actor models.Actor, filter RequisitionFilter) ([]models.Job, error) {
	if !actor.Role.IsStaff() {
		return nil, &models.ForbiddenError{Reason: "only recruiters have requisitions"}
	}
	jobs, err := s.store.ListJobsByRecruiter(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requisitions: %w", err)
	}
	out := make([]models.Job, 0, len(jobs))
	for i := range jobs {
		if filter.Matches(&jobs[i]) {
			out = append(out, jobs[i])
		}
	}
	return out, nil
}

// Save creates a requisition when jobID is empty, otherwise updates it.
// Publish selects Published over Draft.
func (s *Service) Save(ctx context.Context, actor models.Actor, jobID string, req models.JobRequest) (*models.Job, error) {
	if !actor.Role.IsStaff() {
		return nil, &models.ForbiddenError{Reason: "only recruiters can edit requisitions"}
	}
	if err := validateJob(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	job := &models.Job{RecruiterID: actor.UserID, PostedAt: now}
	if jobID != "" {
		existing, err := s.store.GetJob(ctx, jobID)
		if err != nil {
			return nil, err
		}
		if !canEdit(actor, existing) {
			return nil, &models.ForbiddenError{Reason: "requisition belongs to another recruiter"}
		}
		job = existing
	}

	applyRequest(job, req)
	job.UpdatedAt = now
	job.Status = models.JobStatusDraft
	if req.Publish {
		job.Status = models.JobStatusPublished
	}

	if jobID == "" {
		if err := s.store.CreateJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create requisition: %w", err)
		}
		log.Printf("[Jobs] Requisition %s created by %s (%s)", job.ID, actor.UserID, job.Status)
		return job, nil
	}

	if err := s.store.UpdateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to update requisition: %w", err)
	}
	log.Printf("[Jobs] Requisition %s updated by %s (%s)", job.ID, actor.UserID, job.Status)
	return job, nil
}

// Delete removes a requisition owned by the actor
func (s *Service) Delete(ctx context.Context, actor models.Actor, jobID string) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !canEdit(actor, job) {
		return &models.ForbiddenError{Reason: "requisition belongs to another recruiter"}
	}
	if err := s.store.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("failed to delete requisition: %w", err)
	}
	return nil
}

// Suggest proposes rewrites of a description. The HTML description is
// converted to markdown before it reaches the suggester.
func (s *Service) Suggest(ctx context.Context, jobTitle, description string) ([]string, error) {
	text := PlainDescription(description)
	if text == "" {
		return nil, &models.ValidationError{
			Fields:  []string{"description"},
			Message: "Please enter some text in the description to get AI suggestions.",
		}
	}

	suggestions, err := s.suggester.SuggestDescriptions(ctx, strings.TrimSpace(jobTitle), text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestions: %w", err)
	}
	return suggestions, nil
}

// UploadLogo stores a company logo and returns its URL
func (s *Service) UploadLogo(ctx context.Context, actor models.Actor, fileName string, size int64, body io.Reader) (string, error) {
	if !actor.Role.IsStaff() {
		return "", &models.ForbiddenError{Reason: "only recruiters can upload logos"}
	}
	if s.blobs == nil {
		return "", ErrUploadsDisabled
	}
	if err := utils.ValidateUpload(utils.UploadLogo, fileName, size); err != nil {
		return "", &models.ValidationError{Fields: []string{"logo"}, Message: err.Error()}
	}

	url, err := s.blobs.Upload(ctx, storage.Upload{
		Folder:      "logos",
		OwnerID:     actor.UserID,
		FileName:    fileName,
		ContentType: utils.ContentType(fileName),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload logo: %w", err)
	}
	return url, nil
}

// PlainDescription converts a rich-text description to trimmed markdown.
// Markup with no text converts to "".
func PlainDescription(description string) string {
	if strings.TrimSpace(description) == "" {
		return ""
	}
	md, err := htmltomarkdown.ConvertString(description)
	if err != nil {
		return strings.TrimSpace(description)
	}
	return strings.TrimSpace(md)
}

func validateJob(req models.JobRequest) error {
	var missing []string
	if strings.TrimSpace(req.JobTitle) == "" {
		missing = append(missing, "jobTitle")
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		missing = append(missing, "companyName")
	}
	if strings.TrimSpace(req.Location) == "" {
		missing = append(missing, "location")
	}
	if PlainDescription(req.Description) == "" {
		missing = append(missing, "description")
	}
	if err := models.Required("Please fill in all required fields (Job Title, Company, Location, Description).", missing...); err != nil {
		return err
	}

	if req.SalaryMin < 0 || req.SalaryMax < 0 || (req.SalaryMax > 0 && req.SalaryMin > req.SalaryMax) {
		return &models.ValidationError{Fields: []string{"salaryMin", "salaryMax"}, Message: "salary range is invalid"}
	}
	if req.ApplicantCap < 0 {
		return &models.ValidationError{Fields: []string{"applicantCap"}, Message: "applicant cap cannot be negative"}
	}
	return nil
}

func applyRequest(job *models.Job, req models.JobRequest) {
	job.JobTitle = strings.TrimSpace(req.JobTitle)
	job.CompanyName = strings.TrimSpace(req.CompanyName)
	job.Location = strings.TrimSpace(req.Location)
	job.Department = req.Department
	job.Description = req.Description
	job.Skills = cleanList(req.Skills)
	job.SalaryMin = req.SalaryMin
	job.SalaryMax = req.SalaryMax
	job.EmploymentType = req.EmploymentType
	job.ExperienceLevel = req.ExperienceLevel
	job.WorkArrangement = req.WorkArrangement
	job.Industry = req.Industry
	job.RelocationAssistance = req.RelocationAssistance
	job.Deadline = req.Deadline
	job.ScreeningQuestions = cleanList(req.ScreeningQuestions)
	job.ApplicantCap = req.ApplicantCap
	job.ResumeUploadRequired = req.ResumeUploadRequired
	job.CompanyLogoURL = req.CompanyLogoURL
	job.AboutCompany = req.AboutCompany
	job.CompanyWebsiteURL = req.CompanyWebsiteURL
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func canEdit(actor models.Actor, job *models.Job) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.Role == models.RoleRecruiter && job.RecruiterID == actor.UserID
}
