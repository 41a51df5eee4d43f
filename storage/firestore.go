package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/careerverse/backend/config"
	"github.com/careerverse/backend/models"
)

const (
	profileDocID        = "userProfile"
	resumeDraftDocID    = "builder"
	applicationsGroupID = "applications"
)

// FirestoreClient wraps Firestore operations.
// Every path is namespaced under artifacts/{appId}.
type FirestoreClient struct {
	client *firestore.Client
	appID  string
}

// NewFirestoreClient creates a new Firestore client
func NewFirestoreClient(ctx context.Context, cfg *config.Config) (*FirestoreClient, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return &FirestoreClient{client: client, appID: cfg.AppID}, nil
}

// Close closes the Firestore client
func (f *FirestoreClient) Close() error {
	return f.client.Close()
}

func (f *FirestoreClient) accounts() *firestore.CollectionRef {
	return f.client.Collection(fmt.Sprintf("artifacts/%s/accounts", f.appID))
}

func (f *FirestoreClient) profileDoc(userID string) *firestore.DocumentRef {
	return f.client.Doc(fmt.Sprintf("artifacts/%s/users/%s/profiles/%s", f.appID, userID, profileDocID))
}

func (f *FirestoreClient) jobs() *firestore.CollectionRef {
	return f.client.Collection(fmt.Sprintf("artifacts/%s/public/data/jobs", f.appID))
}

func (f *FirestoreClient) applications(applicantID string) *firestore.CollectionRef {
	return f.client.Collection(fmt.Sprintf("artifacts/%s/users/%s/%s", f.appID, applicantID, applicationsGroupID))
}

func (f *FirestoreClient) resumeDraftDoc(userID string) *firestore.DocumentRef {
	return f.client.Doc(fmt.Sprintf("artifacts/%s/users/%s/resumes/%s", f.appID, userID, resumeDraftDocID))
}

func notFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// CreateAccount creates a new account keyed by email
func (f *FirestoreClient) CreateAccount(ctx context.Context, account *models.Account) error {
	account.CreatedAt = time.Now().UTC()
	account.UpdatedAt = account.CreatedAt

	docRef := f.accounts().Doc(strings.ToLower(account.Email))
	if _, err := docRef.Create(ctx, account); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("account %s: %w", account.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByEmail retrieves an account by email
func (f *FirestoreClient) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	doc, err := f.accounts().Doc(strings.ToLower(email)).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := doc.DataTo(&account); err != nil {
		return nil, fmt.Errorf("failed to parse account data: %w", err)
	}
	return &account, nil
}

// UpdateAccount merges updates into the account document
func (f *FirestoreClient) UpdateAccount(ctx context.Context, email string, updates map[string]interface{}) error {
	updates["updatedAt"] = time.Now().UTC()

	if _, err := f.accounts().Doc(strings.ToLower(email)).Set(ctx, updates, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// GetProfile retrieves a user profile
func (f *FirestoreClient) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	doc, err := f.profileDoc(userID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var profile models.UserProfile
	if err := doc.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile data: %w", err)
	}
	profile.UserID = userID
	return &profile, nil
}

// SaveProfile merge-writes the non-empty profile fields
func (f *FirestoreClient) SaveProfile(ctx context.Context, userID string, profile *models.UserProfile) error {
	fields := profile.Fields()
	if len(fields) == 0 {
		return nil
	}

	if _, err := f.profileDoc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	log.Printf("[Firestore] Profile for %s saved", userID)
	return nil
}

// CreateJob adds a job document with a generated id
func (f *FirestoreClient) CreateJob(ctx context.Context, job *models.Job) error {
	docRef := f.jobs().NewDoc()
	if job.ID != "" {
		docRef = f.jobs().Doc(job.ID)
	}
	if _, err := docRef.Create(ctx, job); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("job %s: %w", job.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to add job: %w", err)
	}
	job.ID = docRef.ID
	return nil
}

// GetJob retrieves a job
func (f *FirestoreClient) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	doc, err := f.jobs().Doc(jobID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve job: %w", err)
	}
	return jobFromDoc(doc)
}

// UpdateJob replaces the job document in place
func (f *FirestoreClient) UpdateJob(ctx context.Context, job *models.Job) error {
	docRef := f.jobs().Doc(job.ID)
	if _, err := docRef.Get(ctx); err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update job: %w", err)
	}
	if _, err := docRef.Set(ctx, job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// DeleteJob deletes a job
func (f *FirestoreClient) DeleteJob(ctx context.Context, jobID string) error {
	if _, err := f.jobs().Doc(jobID).Delete(ctx, firestore.Exists); err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// ListPublishedJobs returns Published jobs ordered by postedAt descending
func (f *FirestoreClient) ListPublishedJobs(ctx context.Context) ([]models.Job, error) {
	q := f.jobs().Where("status", "==", string(models.JobStatusPublished)).OrderBy("postedAt", firestore.Desc)
	jobs, err := collectJobs(q.Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve public jobs: %w", err)
	}
	return jobs, nil
}

// ListJobsByRecruiter returns a recruiter's jobs ordered by postedAt ascending
func (f *FirestoreClient) ListJobsByRecruiter(ctx context.Context, recruiterID string) ([]models.Job, error) {
	q := f.jobs().Where("recruiterId", "==", recruiterID).OrderBy("postedAt", firestore.Asc)
	jobs, err := collectJobs(q.Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve jobs for recruiter: %w", err)
	}
	return jobs, nil
}

// SaveApplication writes the application document with app.ID as document id
func (f *FirestoreClient) SaveApplication(ctx context.Context, app *models.Application) error {
	docRef := f.applications(app.ApplicantID).NewDoc()
	if app.ID != "" {
		docRef = f.applications(app.ApplicantID).Doc(app.ID)
	}
	if _, err := docRef.Set(ctx, app); err != nil {
		return fmt.Errorf("failed to save job application: %w", err)
	}
	app.ID = docRef.ID
	return nil
}

// GetApplication retrieves one application
func (f *FirestoreClient) GetApplication(ctx context.Context, applicantID, applicationID string) (*models.Application, error) {
	doc, err := f.applications(applicantID).Doc(applicationID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve job application: %w", err)
	}
	return applicationFromDoc(doc)
}

// FindApplication returns the applicant's application for a job
func (f *FirestoreClient) FindApplication(ctx context.Context, applicantID, jobID string) (*models.Application, error) {
	iter := f.applications(applicantID).Where("jobId", "==", jobID).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve job application: %w", err)
	}
	return applicationFromDoc(doc)
}

// UpdateApplicationStatus updates only the status field
func (f *FirestoreClient) UpdateApplicationStatus(ctx context.Context, applicantID, applicationID string, newStatus models.ApplicationStatus) error {
	_, err := f.applications(applicantID).Doc(applicationID).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(newStatus)},
	})
	if err != nil {
		if notFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update application status: %w", err)
	}
	log.Printf("[Firestore] Application %s status updated to %s", applicationID, newStatus)
	return nil
}

// ListApplicationsByApplicant returns an applicant's applications
func (f *FirestoreClient) ListApplicationsByApplicant(ctx context.Context, applicantID string) ([]models.Application, error) {
	apps, err := collectApplications(f.applications(applicantID).Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve applications: %w", err)
	}
	SortApplicationsNewestFirst(apps)
	return apps, nil
}

// ListApplicationsByJobs queries the applications collection group with an "in" filter
func (f *FirestoreClient) ListApplicationsByJobs(ctx context.Context, jobIDs []string) ([]models.Application, error) {
	if len(jobIDs) == 0 {
		return nil, nil
	}
	if len(jobIDs) > MaxInQueryValues {
		return nil, fmt.Errorf("in query supports at most %d values, got %d", MaxInQueryValues, len(jobIDs))
	}

	q := f.client.CollectionGroup(applicationsGroupID).
		Where("jobId", "in", jobIDs).
		OrderBy("submittedAt", firestore.Desc)
	apps, err := collectApplications(q.Documents(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve applications for jobs: %w", err)
	}
	return apps, nil
}

// CountApplicationsForJob counts submitted applications for a job
func (f *FirestoreClient) CountApplicationsForJob(ctx context.Context, jobID string) (int, error) {
	q := f.client.CollectionGroup(applicationsGroupID).
		Where("jobId", "==", jobID).
		Where("status", "!=", string(models.StatusStarted))
	results, err := q.NewAggregationQuery().WithCount("count").Get(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	count, ok := results["count"]
	if !ok {
		return 0, errors.New("count aggregation missing from response")
	}
	if v, ok := count.(*firestorepb.Value); ok {
		return int(v.GetIntegerValue()), nil
	}
	return 0, fmt.Errorf("unexpected count type %T", count)
}

// GetResumeDraft retrieves a user's resume draft
func (f *FirestoreClient) GetResumeDraft(ctx context.Context, userID string) (*models.ResumeDraft, error) {
	doc, err := f.resumeDraftDoc(userID).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resume draft: %w", err)
	}

	var draft models.ResumeDraft
	if err := doc.DataTo(&draft); err != nil {
		return nil, fmt.Errorf("failed to parse resume draft: %w", err)
	}
	draft.UserID = userID
	return &draft, nil
}

// SaveResumeDraft overwrites a user's resume draft
func (f *FirestoreClient) SaveResumeDraft(ctx context.Context, draft *models.ResumeDraft) error {
	if _, err := f.resumeDraftDoc(draft.UserID).Set(ctx, draft); err != nil {
		return fmt.Errorf("failed to save resume draft: %w", err)
	}
	return nil
}

func jobFromDoc(doc *firestore.DocumentSnapshot) (*models.Job, error) {
	var job models.Job
	if err := doc.DataTo(&job); err != nil {
		return nil, fmt.Errorf("failed to parse job data: %w", err)
	}
	job.ID = doc.Ref.ID
	return &job, nil
}

func applicationFromDoc(doc *firestore.DocumentSnapshot) (*models.Application, error) {
	var app models.Application
	if err := doc.DataTo(&app); err != nil {
		return nil, fmt.Errorf("failed to parse application data: %w", err)
	}
	app.ID = doc.Ref.ID
	return &app, nil
}

func collectJobs(iter *firestore.DocumentIterator) ([]models.Job, error) {
	defer iter.Stop()

	var jobs []models.Job
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return jobs, nil
		}
		if err != nil {
			return nil, err
		}
		job, err := jobFromDoc(doc)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
}

func collectApplications(iter *firestore.DocumentIterator) ([]models.Application, error) {
	defer iter.Stop()

	var apps []models.Application
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return apps, nil
		}
		if err != nil {
			return nil, err
		}
		app, err := applicationFromDoc(doc)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
}
