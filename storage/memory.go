package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/careerverse/backend/models"
)

// MemoryStore keeps every document in process memory.
// It backs tests and STORE_BACKEND=memory local runs.
type MemoryStore struct {
	mu           sync.RWMutex
	accounts     map[string]models.Account
	profiles     map[string]models.UserProfile
	jobs         map[string]models.Job
	applications map[string]map[string]models.Application // applicantID -> applicationID -> app
	drafts       map[string]models.ResumeDraft

	// ProfileReads counts GetProfile calls
	ProfileReads int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts:     make(map[string]models.Account),
		profiles:     make(map[string]models.UserProfile),
		jobs:         make(map[string]models.Job),
		applications: make(map[string]map[string]models.Application),
		drafts:       make(map[string]models.ResumeDraft),
	}
}

// Close is a no-op
func (m *MemoryStore) Close() error { return nil }

func accountKey(email string) string {
	return strings.ToLower(email)
}

// CreateAccount stores a new account keyed by email
func (m *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := accountKey(account.Email)
	if _, ok := m.accounts[key]; ok {
		return fmt.Errorf("account %s: %w", account.Email, ErrAlreadyExists)
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	m.accounts[key] = *account
	return nil
}

// GetAccountByEmail retrieves an account
func (m *MemoryStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[accountKey(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

// UpdateAccount applies the known account fields from updates
func (m *MemoryStore) UpdateAccount(ctx context.Context, email string, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := accountKey(email)
	account, ok := m.accounts[key]
	if !ok {
		return ErrNotFound
	}
	for field, value := range updates {
		s, _ := value.(string)
		switch field {
		case "name":
			account.Name = s
		case "provider":
			account.Provider = s
		case "googleId":
			account.GoogleID = s
		case "password":
			account.Password = s
		}
	}
	account.UpdatedAt = time.Now().UTC()
	m.accounts[key] = account
	return nil
}

// GetProfile retrieves a profile
func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ProfileReads++
	profile, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	profile.UserID = userID
	return &profile, nil
}

// SaveProfile merges the non-empty profile fields into the stored profile
func (m *MemoryStore) SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.profiles[userID]
	models.MergeProfile(&existing, *profile)
	m.profiles[userID] = existing
	return nil
}

// CreateJob stores a job, assigning an id when absent
func (m *MemoryStore) CreateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if _, ok := m.jobs[job.ID]; ok {
		return fmt.Errorf("job %s: %w", job.ID, ErrAlreadyExists)
	}
	m.jobs[job.ID] = cloneJob(*job)
	return nil
}

// GetJob retrieves a job
func (m *MemoryStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return nil, ErrNotFound
	}
	job = cloneJob(job)
	return &job, nil
}

// UpdateJob replaces a stored job
func (m *MemoryStore) UpdateJob(ctx context.Context, job *models.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[job.ID]; !ok {
		return ErrNotFound
	}
	m.jobs[job.ID] = cloneJob(*job)
	return nil
}

// DeleteJob removes a job
func (m *MemoryStore) DeleteJob(ctx context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.jobs[jobID]; !ok {
		return ErrNotFound
	}
	delete(m.jobs, jobID)
	return nil
}

// ListPublishedJobs returns Published jobs, newest first
func (m *MemoryStore) ListPublishedJobs(ctx context.Context) ([]models.Job, error) {
	return m.listJobs(func(j models.Job) bool { return j.Status == models.JobStatusPublished }, true), nil
}

// ListJobsByRecruiter returns a recruiter's jobs, oldest first
func (m *MemoryStore) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	return m.listJobs(func(j models.Job) bool { return j.RecruiterID == recruiterID }, false), nil
}

func (m *MemoryStore) listJobs(keep func(models.Job) bool, newestFirst bool) []models.Job {
	m.mu.RLock()
	defer m.mu.RUnlock()

	jobs := make([]models.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if keep(job) {
			jobs = append(jobs, cloneJob(job))
		}
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].PostedAt.Equal(jobs[j].PostedAt) {
			return jobs[i].ID < jobs[j].ID
		}
		if newestFirst {
			return jobs[i].PostedAt.After(jobs[j].PostedAt)
		}
		return jobs[i].PostedAt.Before(jobs[j].PostedAt)
	})
	return jobs
}

// SaveApplication creates or replaces an application document
func (m *MemoryStore) SaveApplication(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	byApplicant, ok := m.applications[app.ApplicantID]
	if !ok {
		byApplicant = make(map[string]models.Application)
		m.applications[app.ApplicantID] = byApplicant
	}
	byApplicant[app.ID] = cloneApplication(*app)
	return nil
}

// GetApplication retrieves one application
func (m *MemoryStore) GetApplication(ctx context.Context, applicantID, applicationID string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.applications[applicantID][applicationID]
	if !ok {
		return nil, ErrNotFound
	}
	app = cloneApplication(app)
	return &app, nil
}

// FindApplication returns the applicant's application for a job
func (m *MemoryStore) FindApplication(ctx context.Context, applicantID, jobID string) (*models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, app := range m.applications[applicantID] {
		if app.JobID == jobID {
			app = cloneApplication(app)
			return &app, nil
		}
	}
	return nil, ErrNotFound
}

// UpdateApplicationStatus sets the status field only
func (m *MemoryStore) UpdateApplicationStatus(ctx context.Context, applicantID, applicationID string, status models.ApplicationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.applications[applicantID][applicationID]
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	m.applications[applicantID][applicationID] = app
	return nil
}

// ListApplicationsByApplicant returns an applicant's applications, newest first
func (m *MemoryStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	apps := make([]models.Application, 0, len(m.applications[applicantID]))
	for _, app := range m.applications[applicantID] {
		apps = append(apps, cloneApplication(app))
	}
	SortApplicationsNewestFirst(apps)
	return apps, nil
}

// ListApplicationsByJobs returns applications to any of jobIDs
func (m *MemoryStore) ListApplicationsByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error) {
	if len(jobIDs) > MaxInQueryValues {
		return nil, fmt.Errorf("in query supports at most %d values, got %d", MaxInQueryValues, len(jobIDs))
	}
	wanted := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		wanted[id] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var apps []models.Application
	for _, byApplicant := range m.applications {
		for _, app := range byApplicant {
			if _, ok := wanted[app.JobID]; ok {
				apps = append(apps, cloneApplication(app))
			}
		}
	}
	SortApplicationsNewestFirst(apps)
	return apps, nil
}

// CountApplicationsForJob counts submitted applications for a job
func (m *MemoryStore) CountApplicationsForJob(ctx context.Context, jobID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, byApplicant := range m.applications {
		for _, app := range byApplicant {
			if app.JobID == jobID && app.Status != models.StatusStarted {
				count++
			}
		}
	}
	return count, nil
}

// GetResumeDraft retrieves a user's resume draft
func (m *MemoryStore) GetResumeDraft(ctx context.Context, userID string) (*models.ResumeDraft, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	draft, ok := m.drafts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	draft.Snapshots = append([]models.ResumeData(nil), draft.Snapshots...)
	return &draft, nil
}

// SaveResumeDraft replaces a user's resume draft
func (m *MemoryStore) SaveResumeDraft(ctx context.Context, draft *models.ResumeDraft) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *draft
	stored.Snapshots = append([]models.ResumeData(nil), draft.Snapshots...)
	m.drafts[draft.UserID] = stored
	return nil
}

// SortApplicationsNewestFirst orders by submittedAt (or draftedAt) descending
func SortApplicationsNewestFirst(apps []models.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		ti, tj := apps[i].SortTime(), apps[j].SortTime()
		if ti.Equal(tj) {
			return apps[i].ID < apps[j].ID
		}
		return ti.After(tj)
	})
}

func cloneJob(job models.Job) models.Job {
	job.Skills = append([]string(nil), job.Skills...)
	job.ScreeningQuestions = append([]string(nil), job.ScreeningQuestions...)
	if job.ResumeUploadRequired != nil {
		required := *job.ResumeUploadRequired
		job.ResumeUploadRequired = &required
	}
	return job
}

func cloneApplication(app models.Application) models.Application {
	app.ScreeningAnswers = append([]string(nil), app.ScreeningAnswers...)
	return app
}
