package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/careerverse/backend/models"
)

var (
	// ErrNotFound is returned when a document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrAlreadyExists is returned when a create collides with an existing document
	ErrAlreadyExists = errors.New("document already exists")
	// ErrUploadsDisabled is returned when a file is supplied but no blob store is configured
	ErrUploadsDisabled = errors.New("file uploads are not configured")
)

// MaxInQueryValues is the "in" operator limit of the document store
const MaxInQueryValues = 10

// AccountStore persists sign-in identities
type AccountStore interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	UpdateAccount(ctx context.Context, email string, updates map[string]interface{}) error
}

// ProfileStore persists user profiles. Writes are merges, never overwrites.
type ProfileStore interface {
	// GetProfile returns ErrNotFound when the user has no profile yet
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error
}

// JobStore persists job requisitions
type JobStore interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, jobID string) (*models.Job, error)
	UpdateJob(ctx context.Context, job *models.Job) error
	DeleteJob(ctx context.Context, jobID string) error
	// ListPublishedJobs returns Published jobs ordered by postedAt descending
	ListPublishedJobs(ctx context.Context) ([]models.Job, error)
	// ListJobsByRecruiter returns a recruiter's jobs ordered by postedAt ascending
	ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error)
}

// ApplicationStore persists applications under each applicant
type ApplicationStore interface {
	// SaveApplication creates or replaces the applicant's document with app.ID
	SaveApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, applicantID, applicationID string) (*models.Application, error)
	// FindApplication returns the applicant's application for a job, or ErrNotFound
	FindApplication(ctx context.Context, applicantID, jobID string) (*models.Application, error)
	// UpdateApplicationStatus writes the status field only
	UpdateApplicationStatus(ctx context.Context, applicantID, applicationID string, status models.ApplicationStatus) error
	ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error)
	// ListApplicationsByJobs takes at most MaxInQueryValues job ids
	ListApplicationsByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error)
	CountApplicationsForJob(ctx context.Context, jobID string) (int, error)
}

// ResumeStore persists resume builder drafts
type ResumeStore interface {
	GetResumeDraft(ctx context.Context, userID string) (*models.ResumeDraft, error)
	SaveResumeDraft(ctx context.Context, draft *models.ResumeDraft) error
}

// Store bundles every document repository
type Store interface {
	AccountStore
	ProfileStore
	JobStore
	ApplicationStore
	ResumeStore
	Close() error
}

// Upload describes a file to put into blob storage
type Upload struct {
	// Folder is the top-level prefix, e.g. "resumes"
	Folder      string
	OwnerID     string
	FileName    string
	ContentType string
	Body        io.Reader
}

// BlobStore stores uploaded files and hands back their URL
type BlobStore interface {
	Upload(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, url string) error
}

// URLSigner is implemented by blob stores that can hand out time-limited
// read links for private objects
type URLSigner interface {
	SignedURL(url string, expiration time.Duration) (string, error)
}
