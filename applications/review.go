package applications

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

// StatusAll is the filter value that matches every status
const StatusAll = "All"

// ReviewFilter narrows the recruiter review list
type ReviewFilter struct {
	// Status matches exactly. Empty matches every status.
	Status models.ApplicationStatus
	// Query is a case-insensitive substring of job title, company, applicant
	// name, email, or the applicant's profile skills and location
	Query string
}

// ParseReviewFilter reads the status and query parameters of a review request
func ParseReviewFilter(status, query string) (ReviewFilter, error) {
	filter := ReviewFilter{Query: strings.TrimSpace(query)}
	status = strings.TrimSpace(status)
	if status == "" || strings.EqualFold(status, StatusAll) {
		return filter, nil
	}
	parsed, ok := models.ParseApplicationStatus(status)
	if !ok {
		return ReviewFilter{}, &models.ValidationError{
			Fields:  []string{"status"},
			Message: fmt.Sprintf("unknown application status %q", status),
		}
	}
	filter.Status = parsed
	return filter, nil
}

// Matches reports whether app passes the filter
func (f ReviewFilter) Matches(app *models.CandidateApplication) bool {
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	fields := []string{app.JobTitle, app.CompanyName, app.ApplicantName, app.ApplicantEmail}
	if p := app.CandidateProfile; p != nil {
		fields = append(fields, p.Skills, p.Location)
	}
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Review lists applications to the actor's jobs joined with applicant
// profiles and their allowed next statuses, then applies filter. Attachment
// links are signed when the blob store supports it.
func (s *Service) Review(ctx context.Context, actor models.Actor, jobID string, filter ReviewFilter) ([]models.CandidateApplication, error) {
	apps, err := s.ListForRecruiter(ctx, actor, jobID)
	if err != nil {
		return nil, err
	}

	profiles, err := s.loadProfiles(ctx, apps)
	if err != nil {
		return nil, err
	}

	out := []models.CandidateApplication{}
	for _, app := range apps {
		entry := models.CandidateApplication{
			Application:      app,
			CandidateProfile: profiles[app.ApplicantID],
			NextStatuses:     Next(app.Status),
		}
		if !filter.Matches(&entry) {
			continue
		}
		entry.ResumeURL = s.sign(entry.ResumeURL)
		entry.ElevatorPitchVideoURL = s.sign(entry.ElevatorPitchVideoURL)
		out = append(out, entry)
	}
	return out, nil
}

// loadProfiles reads each distinct applicant's profile. Applicants without
// a profile are left out of the map.
func (s *Service) loadProfiles(ctx context.Context, apps []models.Application) (map[string]*models.UserProfile, error) {
	profiles := map[string]*models.UserProfile{}
	if s.profiles == nil {
		return profiles, nil
	}

	var ids []string
	seen := map[string]bool{}
	for _, app := range apps {
		if app.ApplicantID != "" && !seen[app.ApplicantID] {
			seen[app.ApplicantID] = true
			ids = append(ids, app.ApplicantID)
		}
	}

	results := make([]*models.UserProfile, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			profile, err := s.profiles.GetProfile(gctx, id)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				return nil
			case err != nil:
				return fmt.Errorf("failed to load profile %s: %w", id, err)
			}
			results[i] = profile
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if results[i] != nil {
			profiles[id] = results[i]
		}
	}
	return profiles, nil
}

func (s *Service) sign(url string) string {
	signer, ok := s.blobs.(storage.URLSigner)
	if !ok || url == "" {
		return url
	}
	signed, err := signer.SignedURL(url, s.signedURLTTL)
	if err != nil {
		log.Printf("[Applications] Failed to sign %s: %v", url, err)
		return url
	}
	return signed
}
