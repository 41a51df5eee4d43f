package jobs

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/careerverse/backend/models"
)

// Filter narrows a job listing. Every non-empty field must match.
type Filter struct {
	Keywords         string
	Company          string
	Location         string
	EmploymentTypes  []string
	ExperienceLevels []string
	WorkArrangements []string
}

// FilterFromQuery reads a Filter from query parameters. Set parameters may be
// repeated or comma-separated.
func FilterFromQuery(q url.Values) Filter {
	return Filter{
		Keywords:         strings.TrimSpace(q.Get("q")),
		Company:          strings.TrimSpace(q.Get("company")),
		Location:         strings.TrimSpace(q.Get("location")),
		EmploymentTypes:  splitValues(q["employmentType"]),
		ExperienceLevels: splitValues(q["experienceLevel"]),
		WorkArrangements: splitValues(q["workArrangement"]),
	}
}

func splitValues(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// IsZero reports whether the filter matches everything
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Keywords) == "" &&
		strings.TrimSpace(f.Company) == "" &&
		strings.TrimSpace(f.Location) == "" &&
		len(f.EmploymentTypes) == 0 &&
		len(f.ExperienceLevels) == 0 &&
		len(f.WorkArrangements) == 0
}

// Matches reports whether job satisfies every active predicate
func (f Filter) Matches(job *models.Job) bool {
	if kw := strings.ToLower(strings.TrimSpace(f.Keywords)); kw != "" && !matchesKeyword(job, kw) {
		return false
	}
	if !containsFold(job.CompanyName, f.Company) {
		return false
	}
	if !containsFold(job.Location, f.Location) {
		return false
	}
	return inSet(job.EmploymentType, f.EmploymentTypes) &&
		inSet(job.ExperienceLevel, f.ExperienceLevels) &&
		inSet(job.WorkArrangement, f.WorkArrangements)
}

// Apply returns the jobs matching f in their original order. The input is
// not modified.
func Apply(jobs []models.Job, f Filter) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for i := range jobs {
		if f.Matches(&jobs[i]) {
			out = append(out, jobs[i])
		}
	}
	return out
}

func matchesKeyword(job *models.Job, kw string) bool {
	if strings.Contains(strings.ToLower(job.JobTitle), kw) ||
		strings.Contains(strings.ToLower(job.Description), kw) ||
		strings.Contains(strings.ToLower(job.CompanyName), kw) {
		return true
	}
	for _, skill := range job.Skills {
		if strings.Contains(strings.ToLower(skill), kw) {
			return true
		}
	}
	return false
}

func containsFold(value, needle string) bool {
	needle = strings.TrimSpace(needle)
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}

func inSet(value string, set []string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

// RequisitionFilter narrows a recruiter's requisition list
type RequisitionFilter struct {
	// Status matches exactly. Empty matches drafts and published jobs.
	Status models.JobStatus
	// Query is a case-insensitive substring of title, company or location
	Query string
}

// ParseRequisitionFilter reads the status and q parameters. "All" or an
// empty status matches every requisition.
func ParseRequisitionFilter(status, query string) (RequisitionFilter, error) {
	filter := RequisitionFilter{Query: strings.TrimSpace(query)}
	switch status = strings.TrimSpace(status); {
	case status == "" || strings.EqualFold(status, "All"):
	case strings.EqualFold(status, string(models.JobStatusDraft)):
		filter.Status = models.JobStatusDraft
	case strings.EqualFold(status, string(models.JobStatusPublished)):
		filter.Status = models.JobStatusPublished
	default:
		return RequisitionFilter{}, &models.ValidationError{
			Fields:  []string{"status"},
			Message: fmt.Sprintf("unknown requisition status %q", status),
		}
	}
	return filter, nil
}

// Matches reports whether job passes the filter
func (f RequisitionFilter) Matches(job *models.Job) bool {
	if f.Status != "" && job.Status != f.Status {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(job.JobTitle), q) ||
		strings.Contains(strings.ToLower(job.CompanyName), q) ||
		strings.Contains(strings.ToLower(job.Location), q)
}
