package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/careerverse/backend/models"
)

// SQLiteStore is the single-node Store backend.
// Queried fields are real columns; the rest of each document is a JSON column.
type SQLiteStore struct {
	db *gorm.DB
}

type accountRow struct {
	Email     string `gorm:"primaryKey"`
	ID        string `gorm:"uniqueIndex"`
	Name      string
	Password  string
	Provider  string
	GoogleID  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (accountRow) TableName() string { return "accounts" }

type profileRow struct {
	UserID         string `gorm:"primaryKey"`
	Name           string
	Email          string
	Phone          string
	Role           string
	Skills         string
	Location       string
	Education      string
	Experience     string
	JobTitle       string
	CompanyName    string
	CompanyWebsite string
	CreatedAt      string
	UpdatedAt      string
}

func (profileRow) TableName() string { return "profiles" }

type jobRow struct {
	ID          string    `gorm:"primaryKey"`
	RecruiterID string    `gorm:"index"`
	Status      string    `gorm:"index"`
	PostedAt    time.Time `gorm:"index"`
	Doc         datatypes.JSONType[models.Job]
}

func (jobRow) TableName() string { return "jobs" }

type applicationRow struct {
	ApplicantID string `gorm:"primaryKey"`
	ID          string `gorm:"primaryKey"`
	JobID       string `gorm:"index"`
	Status      string
	SortAt      time.Time `gorm:"index"`
	Doc         datatypes.JSONType[models.Application]
}

func (applicationRow) TableName() string { return "applications" }

type resumeDraftRow struct {
	UserID    string `gorm:"primaryKey"`
	Snapshots datatypes.JSONSlice[models.ResumeData]
	Cursor    int
	UpdatedAt time.Time
}

func (resumeDraftRow) TableName() string { return "resume_drafts" }

// NewSQLiteStore opens the database file and migrates the tables
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.AutoMigrate(&accountRow{}, &profileRow{}, &jobRow{}, &applicationRow{}, &resumeDraftRow{}); err != nil {
		return nil, fmt.Errorf("auto migrate models: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying connection
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get sql DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateAccount inserts a new account
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	row := accountRow{
		Email:     strings.ToLower(account.Email),
		ID:        account.ID,
		Name:      account.Name,
		Password:  account.Password,
		Provider:  account.Provider,
		GoogleID:  account.GoogleID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("create account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("account %s: %w", account.Email, ErrAlreadyExists)
	}
	return nil
}

// GetAccountByEmail retrieves an account
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var row accountRow
	if err := s.db.WithContext(ctx).First(&row, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, translate(err)
	}
	return &models.Account{
		ID:        row.ID,
		Email:     row.Email,
		Name:      row.Name,
		Password:  row.Password,
		Provider:  row.Provider,
		GoogleID:  row.GoogleID,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// UpdateAccount applies the known account fields from updates
func (s *SQLiteStore) UpdateAccount(ctx context.Context, email string, updates map[string]interface{}) error {
	columns := map[string]interface{}{"updated_at": time.Now().UTC()}
	for field, value := range updates {
		switch field {
		case "name":
			columns["name"] = value
		case "provider":
			columns["provider"] = value
		case "googleId":
			columns["google_id"] = value
		case "password":
			columns["password"] = value
		}
	}

	res := s.db.WithContext(ctx).Model(&accountRow{}).Where("email = ?", strings.ToLower(email)).Updates(columns)
	if res.Error != nil {
		return fmt.Errorf("update account: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetProfile retrieves a profile
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var row profileRow
	if err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &models.UserProfile{
		UserID:         row.UserID,
		Name:           row.Name,
		Email:          row.Email,
		Phone:          row.Phone,
		Role:           models.Role(row.Role),
		Skills:         row.Skills,
		Location:       row.Location,
		Education:      row.Education,
		Experience:     row.Experience,
		JobTitle:       row.JobTitle,
		CompanyName:    row.CompanyName,
		CompanyWebsite: row.CompanyWebsite,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

// SaveProfile merges the non-empty profile fields into the stored row
func (s *SQLiteStore) SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.UserProfile
		var row profileRow
		err := tx.First(&row, "user_id = ?", userID).Error
		switch {
		case err == nil:
			existing = models.UserProfile{
				Name: row.Name, Email: row.Email, Phone: row.Phone, Role: models.Role(row.Role),
				Skills: row.Skills, Location: row.Location, Education: row.Education, Experience: row.Experience,
				JobTitle: row.JobTitle, CompanyName: row.CompanyName, CompanyWebsite: row.CompanyWebsite,
				CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("load profile: %w", err)
		}

		models.MergeProfile(&existing, *profile)
		merged := profileRow{
			UserID:         userID,
			Name:           existing.Name,
			Email:          existing.Email,
			Phone:          existing.Phone,
			Role:           string(existing.Role),
			Skills:         existing.Skills,
			Location:       existing.Location,
			Education:      existing.Education,
			Experience:     existing.Experience,
			JobTitle:       existing.JobTitle,
			CompanyName:    existing.CompanyName,
			CompanyWebsite: existing.CompanyWebsite,
			CreatedAt:      existing.CreatedAt,
			UpdatedAt:      existing.UpdatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&merged).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	})
}

func newJobRow(job *models.Job) jobRow {
	return jobRow{
		ID:          job.ID,
		RecruiterID: job.RecruiterID,
		Status:      string(job.Status),
		PostedAt:    job.PostedAt,
		Doc:         datatypes.NewJSONType(*job),
	}
}

func (r jobRow) job() models.Job {
	job := r.Doc.Data()
	job.ID = r.ID
	return job
}

// CreateJob inserts a job, assigning an id when absent
func (s *SQLiteStore) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	row := newJobRow(job)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return fmt.Errorf("create job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("job %s: %w", job.ID, ErrAlreadyExists)
	}
	return nil
}

// GetJob retrieves a job
func (s *SQLiteStore) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var row jobRow
	if err := s.db.WithContext(ctx).First(&row, "id = ?", jobID).Error; err != nil {
		return nil, translate(err)
	}
	job := row.job()
	return &job, nil
}

// UpdateJob replaces a stored job
func (s *SQLiteStore) UpdateJob(ctx context.Context, job *models.Job) error {
	row := newJobRow(job)
	res := s.db.WithContext(ctx).Model(&jobRow{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"recruiter_id": row.RecruiterID,
		"status":       row.Status,
		"posted_at":    row.PostedAt,
		"doc":          row.Doc,
	})
	if res.Error != nil {
		return fmt.Errorf("update job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteJob removes a job
func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	res := s.db.WithContext(ctx).Delete(&jobRow{}, "id = ?", jobID)
	if res.Error != nil {
		return fmt.Errorf("delete job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPublishedJobs returns Published jobs, newest first
func (s *SQLiteStore) ListPublishedJobs(ctx context.Context) ([]models.Job, error) {
	return s.listJobs(ctx, "status = ?", string(models.JobStatusPublished), "posted_at desc, id")
}

// ListJobsByRecruiter returns a recruiter's jobs, oldest first
func (s *SQLiteStore) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	return s.listJobs(ctx, "recruiter_id = ?", recruiterID, "posted_at asc, id")
}

func (s *SQLiteStore) listJobs(ctx context.Context, where string, arg interface{}, order string) ([]models.Job, error) {
	var rows []jobRow
	if err := s.db.WithContext(ctx).Where(where, arg).Order(order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]models.Job, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, row.job())
	}
	return jobs, nil
}

func newApplicationRow(app *models.Application) applicationRow {
	return applicationRow{
		ApplicantID: app.ApplicantID,
		ID:          app.ID,
		JobID:       app.JobID,
		Status:      string(app.Status),
		SortAt:      app.SortTime(),
		Doc:         datatypes.NewJSONType(*app),
	}
}

func (r applicationRow) application() models.Application {
	app := r.Doc.Data()
	app.ID = r.ID
	app.Status = models.ApplicationStatus(r.Status)
	return app
}

// SaveApplication creates or replaces an application row
func (s *SQLiteStore) SaveApplication(ctx context.Context, app *models.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	row := newApplicationRow(app)
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save application: %w", err)
	}
	return nil
}

// GetApplication retrieves one application
func (s *SQLiteStore) GetApplication(ctx context.Context, applicantID, applicationID string) (*models.Application, error) {
	var row applicationRow
	err := s.db.WithContext(ctx).First(&row, "applicant_id = ? AND id = ?", applicantID, applicationID).Error
	if err != nil {
		return nil, translate(err)
	}
	app := row.application()
	return &app, nil
}

// FindApplication returns the applicant's application for a job
func (s *SQLiteStore) FindApplication(ctx context.Context, applicantID, jobID string) (*models.Application, error) {
	var row applicationRow
	err := s.db.WithContext(ctx).First(&row, "applicant_id = ? AND job_id = ?", applicantID, jobID).Error
	if err != nil {
		return nil, translate(err)
	}
	app := row.application()
	return &app, nil
}

// UpdateApplicationStatus sets the status only. The JSON document keeps its
// stored status; reads take the status column.
func (s *SQLiteStore) UpdateApplicationStatus(ctx context.Context, applicantID, applicationID string, status models.ApplicationStatus) error {
	res := s.db.WithContext(ctx).Model(&applicationRow{}).
		Where("applicant_id = ? AND id = ?", applicantID, applicationID).
		Update("status", string(status))
	if res.Error != nil {
		return fmt.Errorf("update application status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListApplicationsByApplicant returns an applicant's applications, newest first
func (s *SQLiteStore) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	return s.listApplications(s.db.WithContext(ctx).Where("applicant_id = ?", applicantID))
}

// ListApplicationsByJobs returns applications to any of jobIDs, newest first
func (s *SQLiteStore) ListApplicationsByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	if len(jobIDs) > MaxInQueryValues {
		return nil, fmt.Errorf("in query supports at most %d values, got %d", MaxInQueryValues, len(jobIDs))
	}
	return s.listApplications(s.db.WithContext(ctx).Where("job_id IN ?", jobIDs))
}

func (s *SQLiteStore) listApplications(q *gorm.DB) ([]models.Application, error) {
	var rows []applicationRow
	if err := q.Order("sort_at desc, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	apps := make([]models.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, row.application())
	}
	return apps, nil
}

// CountApplicationsForJob counts submitted applications for a job
func (s *SQLiteStore) CountApplicationsForJob(ctx context.Context, jobID string) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&applicationRow{}).
		Where("job_id = ? AND status <> ?", jobID, string(models.StatusStarted)).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return int(count), nil
}

// GetResumeDraft retrieves a user's resume draft
func (s *SQLiteStore) GetResumeDraft(ctx context.Context, userID string) (*models.ResumeDraft, error) {
	var row resumeDraftRow
	if err := s.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &models.ResumeDraft{
		UserID:    row.UserID,
		Snapshots: []models.ResumeData(row.Snapshots),
		Cursor:    row.Cursor,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

// SaveResumeDraft replaces a user's resume draft
func (s *SQLiteStore) SaveResumeDraft(ctx context.Context, draft *models.ResumeDraft) error {
	row := resumeDraftRow{
		UserID:    draft.UserID,
		Snapshots: datatypes.JSONSlice[models.ResumeData](draft.Snapshots),
		Cursor:    draft.Cursor,
		UpdatedAt: draft.UpdatedAt,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("save resume draft: %w", err)
	}
	return nil
}
