package applications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
	"github.com/careerverse/backend/utils"
)

var (
	// ErrJobNotOpen is returned for applications to a job that is not Published
	ErrJobNotOpen = errors.New("job is not accepting applications")
	// ErrApplicantCapReached is returned when a job already has its maximum number of applicants
	ErrApplicantCapReached = errors.New("job has reached its applicant limit")
	// ErrUploadsDisabled is returned when files are supplied but no blob store is configured
	ErrUploadsDisabled = storage.ErrUploadsDisabled
)

// Store is what the workflow needs from persistence
type Store interface {
	storage.JobStore
	storage.ApplicationStore
}

// File is an uploaded attachment
type File struct {
	Name string
	Size int64
	Body io.Reader
}

// Attachments are the files and parsed data sent with an application form
type Attachments struct {
	Resume       *File
	PitchVideo   *File
	ParsedResume *models.ResumeData
	// RemovePitchVideo clears a previously attached video
	RemovePitchVideo bool
}

// Service runs the candidate application workflow and recruiter review
type Service struct {
	store    Store
	blobs    storage.BlobStore
	profiles storage.ProfileStore
	now      func() time.Time
	// batchConcurrency bounds the concurrent "in" queries of ListForRecruiter
	// and the profile reads of Review
	batchConcurrency int
	signedURLTTL     time.Duration
}

// NewService creates the application service. blobs may be nil.
func NewService(store Store, blobs storage.BlobStore) *Service {
	return &Service{
		store:            store,
		blobs:            blobs,
		now:              time.Now,
		batchConcurrency: 4,
		signedURLTTL:     15 * time.Minute,
	}
}

// WithProfiles enables joining applicant profiles into the recruiter review
func (s *Service) WithProfiles(profiles storage.ProfileStore) *Service {
	s.profiles = profiles
	return s
}

// Get returns the candidate's application for a job
func (s *Service) Get(ctx context.Context, candidate models.Actor, jobID string) (*models.Application, error) {
	return s.store.FindApplication(ctx, candidate.UserID, jobID)
}

// SaveForLater stores the form as a draft. No fields are required.
func (s *Service) SaveForLater(ctx context.Context, candidate models.Actor, jobID string, form models.ApplicationForm, files Attachments) (*models.Application, error) {
	return s.save(ctx, candidate, jobID, form, files, false)
}

// Submit validates the form and stores it as Applied
func (s *Service) Submit(ctx context.Context, candidate models.Actor, jobID string, form models.ApplicationForm, files Attachments) (*models.Application, error) {
	return s.save(ctx, candidate, jobID, form, files, true)
}

func (s *Service) save(ctx context.Context, candidate models.Actor, jobID string, form models.ApplicationForm, files Attachments, submit bool) (*models.Application, error) {
	if candidate.Role != models.RoleCandidate {
		return nil, &models.ForbiddenError{Reason: "only candidates can apply to jobs"}
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !job.IsPublished() {
		return nil, ErrJobNotOpen
	}

	existing, err := s.store.FindApplication(ctx, candidate.UserID, jobID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		existing = nil
	case err != nil:
		return nil, fmt.Errorf("failed to load existing application: %w", err)
	}

	target := models.StatusStarted
	if submit {
		target = models.StatusApplied
	}
	from := models.StatusNone
	if existing != nil {
		from = existing.Status
	}
	if err := Transition(from, target); err != nil {
		return nil, err
	}

	if submit {
		if err := validateSubmission(job, existing, form, files); err != nil {
			return nil, err
		}
		if from != models.StatusApplied && job.ApplicantCap > 0 {
			count, err := s.store.CountApplicationsForJob(ctx, jobID)
			if err != nil {
				return nil, fmt.Errorf("failed to count applicants: %w", err)
			}
			if count >= job.ApplicantCap {
				return nil, ErrApplicantCapReached
			}
		}
	}
	if err := validateFiles(files); err != nil {
		return nil, err
	}
	if (files.Resume != nil || files.PitchVideo != nil) && s.blobs == nil {
		return nil, ErrUploadsDisabled
	}

	app := buildApplication(job, candidate, existing, form, files.ParsedResume)

	var uploaded, replaced []string
	if files.RemovePitchVideo && app.ElevatorPitchVideoURL != "" {
		replaced = append(replaced, app.ElevatorPitchVideoURL)
		app.ElevatorPitchVideoURL = ""
		app.ElevatorPitchVideoFileName = ""
	}
	if files.Resume != nil {
		url, err := s.upload(ctx, "resumes", candidate.UserID, jobID, files.Resume)
		if err != nil {
			return nil, err
		}
		uploaded = append(uploaded, url)
		if app.ResumeURL != "" {
			replaced = append(replaced, app.ResumeURL)
		}
		app.ResumeURL = url
		app.ResumeFileName = files.Resume.Name
	}
	if files.PitchVideo != nil {
		url, err := s.upload(ctx, "pitches", candidate.UserID, jobID, files.PitchVideo)
		if err != nil {
			s.cleanup(uploaded)
			return nil, err
		}
		uploaded = append(uploaded, url)
		if app.ElevatorPitchVideoURL != "" {
			replaced = append(replaced, app.ElevatorPitchVideoURL)
		}
		app.ElevatorPitchVideoURL = url
		app.ElevatorPitchVideoFileName = files.PitchVideo.Name
	}

	now := s.now().UTC()
	if submit {
		app.Status = models.StatusApplied
		app.AppliedAt = &now
		app.SubmittedAt = &now
	} else {
		app.Status = models.StatusStarted
		app.DraftedAt = &now
	}

	if err := s.store.SaveApplication(ctx, app); err != nil {
		s.cleanup(uploaded)
		return nil, fmt.Errorf("failed to save application: %w", err)
	}
	s.cleanup(replaced)

	log.Printf("[Applications] %s %s for job %s", candidate.UserID, app.Status, jobID)
	return app, nil
}

func (s *Service) upload(ctx context.Context, folder, ownerID, jobID string, f *File) (string, error) {
	url, err := s.blobs.Upload(ctx, storage.Upload{
		Folder:      folder,
		OwnerID:     ownerID,
		FileName:    jobID + "_" + f.Name,
		ContentType: utils.ContentType(f.Name),
		Body:        f.Body,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", folder, err)
	}
	return url, nil
}

// cleanup deletes blobs without the request context so a cancelled request
// still removes what it uploaded
func (s *Service) cleanup(urls []string) {
	if s.blobs == nil {
		if len(urls) > 0 {
			log.Printf("[Applications] Uploads disabled, leaving %d blob(s) in place", len(urls))
		}
		return
	}
	for _, url := range urls {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.blobs.Delete(ctx, url); err != nil {
			log.Printf("[Applications] Failed to delete blob %s: %v", url, err)
		}
		cancel()
	}
}

func buildApplication(job *models.Job, candidate models.Actor, existing *models.Application, form models.ApplicationForm, parsed *models.ResumeData) *models.Application {
	app := &models.Application{}
	if existing != nil {
		*app = *existing
	}

	app.ID = job.ID
	app.JobID = job.ID
	app.JobTitle = job.JobTitle
	app.CompanyName = job.CompanyName
	app.RecruiterID = job.RecruiterID
	app.ApplicantID = candidate.UserID
	app.ApplicantName = strings.TrimSpace(form.FullName)
	app.ApplicantEmail = strings.TrimSpace(form.Email)
	app.ApplicantPhone = strings.TrimSpace(form.Phone)
	app.CoverLetter = form.CoverLetter
	app.ElevatorPitchText = form.ElevatorPitchText
	app.ScreeningAnswers = append([]string(nil), form.ScreeningAnswers...)
	if parsed != nil {
		app.ParsedResume = parsed
	}
	return app
}

func validateSubmission(job *models.Job, existing *models.Application, form models.ApplicationForm, files Attachments) error {
	var missing []string
	if strings.TrimSpace(form.FullName) == "" {
		missing = append(missing, "fullName")
	}
	if strings.TrimSpace(form.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(form.Phone) == "" {
		missing = append(missing, "phone")
	}
	if err := models.Required("Full Name, Email, and Phone Number are required.", missing...); err != nil {
		return err
	}

	hasResume := files.Resume != nil ||
		(existing != nil && (existing.ResumeURL != "" || existing.ResumeFileName != ""))
	if job.RequiresResume() && !hasResume {
		return &models.ValidationError{Fields: []string{"resume"}, Message: "Please upload your resume."}
	}

	if !form.TermsAccepted {
		return &models.ValidationError{
			Fields:  []string{"termsAccepted"},
			Message: "You must agree to the Terms of Service and Privacy Policy.",
		}
	}
	return nil
}

func validateFiles(files Attachments) error {
	if files.Resume != nil {
		if err := utils.ValidateUpload(utils.UploadResume, files.Resume.Name, files.Resume.Size); err != nil {
			return &models.ValidationError{Fields: []string{"resume"}, Message: err.Error()}
		}
	}
	if files.PitchVideo != nil {
		if err := utils.ValidateUpload(utils.UploadVideo, files.PitchVideo.Name, files.PitchVideo.Size); err != nil {
			return &models.ValidationError{Fields: []string{"pitchVideo"}, Message: err.Error()}
		}
	}
	return nil
}

// ChangeStatus moves an application along its lifecycle. Only the status
// field is written. Recruiters may only act on applications to their own jobs.
func (s *Service) ChangeStatus(ctx context.Context, actor models.Actor, applicantID, applicationID string, status models.ApplicationStatus) (*models.Application, error) {
	if !actor.Role.IsStaff() {
		return nil, &models.ForbiddenError{Reason: "only recruiters can change application status"}
	}

	app, err := s.store.GetApplication(ctx, applicantID, applicationID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		owner := app.RecruiterID
		if job, err := s.store.GetJob(ctx, app.JobID); err == nil {
			owner = job.RecruiterID
		} else if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to load job: %w", err)
		}
		if owner != actor.UserID {
			return nil, &models.ForbiddenError{Reason: "application belongs to another recruiter's job"}
		}
	}

	if err := Transition(app.Status, status); err != nil {
		return nil, err
	}
	if app.Status == status {
		return app, nil
	}

	if err := s.store.UpdateApplicationStatus(ctx, applicantID, applicationID, status); err != nil {
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	log.Printf("[Applications] %s moved %s/%s from %s to %s", actor.UserID, applicantID, applicationID, app.Status, status)
	app.Status = status
	return app, nil
}

// ListForCandidate returns the candidate's applications, newest first
func (s *Service) ListForCandidate(ctx context.Context, candidate models.Actor) ([]models.Application, error) {
	apps, err := s.store.ListApplicationsByApplicant(ctx, candidate.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// ListForRecruiter returns applications to the actor's jobs, newest first.
// A non-empty jobID narrows the result to that job.
func (s *Service) ListForRecruiter(ctx context.Context, actor models.Actor, jobID string) ([]models.Application, error) {
	if !actor.Role.IsStaff() {
		return nil, &models.ForbiddenError{Reason: "only recruiters can review applications"}
	}

	jobs, err := s.store.ListJobsByRecruiter(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	var jobIDs []string
	for _, job := range jobs {
		if jobID == "" || job.ID == jobID {
			jobIDs = append(jobIDs, job.ID)
		}
	}
	if jobID != "" && len(jobIDs) == 0 {
		if !actor.IsAdmin() {
			return nil, &models.ForbiddenError{Reason: "job belongs to another recruiter"}
		}
		jobIDs = []string{jobID}
	}
	if len(jobIDs) == 0 {
		return []models.Application{}, nil
	}

	batches := Batch(jobIDs, storage.MaxInQueryValues)
	results := make([][]models.Application, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			apps, err := s.store.ListApplicationsByJobs(gctx, batch)
			if err != nil {
				return err
			}
			results[i] = apps
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list applications for jobs: %w", err)
	}

	merged := []models.Application{}
	for _, apps := range results {
		merged = append(merged, apps...)
	}
	storage.SortApplicationsNewestFirst(merged)
	return merged, nil
}

// Batch splits ids into chunks of at most size
func Batch(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
