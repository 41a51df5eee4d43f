package tools

import (
	"context"
	"encoding/json"

	"github.com/careerverse/backend/jobs"
	"github.com/careerverse/backend/models"
)

// JobLister lists Published jobs
type JobLister interface {
	ListPublished(ctx context.Context, filter jobs.Filter) ([]models.Job, error)
}

// SearchJobsTool searches the Published job listings
type SearchJobsTool struct {
	jobs JobLister
}

// NewSearchJobsTool creates a search_jobs tool
func NewSearchJobsTool(lister JobLister) *SearchJobsTool {
	return &SearchJobsTool{jobs: lister}
}

// SearchJobsInput is the input of search_jobs
type SearchJobsInput struct {
	Query            string   `json:"query"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	EmploymentTypes  []string `json:"employmentTypes"`
	ExperienceLevels []string `json:"experienceLevels"`
	WorkArrangements []string `json:"workArrangements"`
	Limit            int      `json:"limit"`
}

// SearchJobsOutput is the output of search_jobs
type SearchJobsOutput struct {
	Jobs  []models.Job `json:"jobs"`
	Total int          `json:"total"`
}

// Roles limits job search to candidates, like the job board itself
func (t *SearchJobsTool) Roles() []models.Role {
	return []models.Role{models.RoleCandidate}
}

func (t *SearchJobsTool) Name() string {
	return "search_jobs"
}

func (t *SearchJobsTool) Description() string {
	return "Search Published job listings. All filters are optional and combine with AND; text filters are case-insensitive substring matches."
}

func (t *SearchJobsTool) InputSchema() map[string]interface{} {
	list := func(desc string) map[string]interface{} {
		return map[string]interface{}{
			"type":        "array",
			"items":       map[string]interface{}{"type": "string"},
			"description": desc,
		}
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "Free text matched against title, company, description and skills",
			},
			"company":          map[string]interface{}{"type": "string"},
			"location":         map[string]interface{}{"type": "string"},
			"employmentTypes":  list("e.g. Full-time, Contract"),
			"experienceLevels": list("e.g. Senior, Mid-Level"),
			"workArrangements": list("e.g. Hybrid, Remote (Global)"),
			"limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum number of jobs to return (default 20)",
			},
		},
	}
}

func (t *SearchJobsTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in SearchJobsInput
	if err := decodeInput(input, &in); err != nil {
		return NewErrorResult(err.Error())
	}

	found, err := t.jobs.ListPublished(ctx, jobs.Filter{
		Keywords:         in.Query,
		Company:          in.Company,
		Location:         in.Location,
		EmploymentTypes:  in.EmploymentTypes,
		ExperienceLevels: in.ExperienceLevels,
		WorkArrangements: in.WorkArrangements,
	})
	if err != nil {
		return nil, err
	}

	total := len(found)
	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if len(found) > limit {
		found = found[:limit]
	}

	return NewSuccessResult(SearchJobsOutput{Jobs: found, Total: total})
}
