package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerverse/backend/jobs"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/storage"
)

func decodeResult(t *testing.T, raw json.RawMessage, data interface{}) ToolResult {
	t.Helper()
	var result ToolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	if result.Success && data != nil {
		require.NoError(t, json.Unmarshal(result.Data, data))
	}
	return result
}

func newJobService(t *testing.T) *jobs.Service {
	t.Helper()
	store := storage.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Backend Engineer", "Frontend Engineer", "Designer"} {
		require.NoError(t, store.CreateJob(ctx, &models.Job{
			JobTitle:    title,
			CompanyName: "Acme",
			Location:    "Berlin",
			Description: "Work on the product",
			Status:      models.JobStatusPublished,
			PostedAt:    base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, store.CreateJob(ctx, &models.Job{JobTitle: "Secret Engineer", Status: models.JobStatusDraft}))
	return jobs.NewService(store, nil, nil)
}

func TestRegistry(t *testing.T) {
	registry := NewToolRegistry()
	registry.Register(NewSearchJobsTool(newJobService(t)))
	registry.Register(NewNormalizeResumeTool())

	defs := registry.Definitions(models.RoleCandidate)
	require.Len(t, defs, 2)
	assert.Equal(t, "normalize_resume", defs[0].Name, "definitions are sorted by name")
	assert.Equal(t, "search_jobs", defs[1].Name)

	_, ok := registry.Get("search_web", models.RoleCandidate)
	assert.False(t, ok)
}

func TestRegistry_RoleRestrictions(t *testing.T) {
	svc := newJobService(t)
	registry := NewToolRegistry()
	registry.Register(NewSearchJobsTool(svc))
	registry.Register(NewNormalizeResumeTool())
	registry.Register(NewSuggestDescriptionTool(svc))

	names := func(role models.Role) []string {
		var out []string
		for _, def := range registry.Definitions(role) {
			out = append(out, def.Name)
		}
		return out
	}

	tests := []struct {
		role models.Role
		want []string
	}{
		{models.RoleCandidate, []string{"normalize_resume", "search_jobs"}},
		{models.RoleRecruiter, []string{"normalize_resume", "suggest_job_description"}},
		{models.RoleAdmin, []string{"normalize_resume", "suggest_job_description"}},
		{models.RoleNone, []string{"normalize_resume"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.want, names(tt.role))
		})
	}

	_, ok := registry.Get("suggest_job_description", models.RoleCandidate)
	assert.False(t, ok)
	tool, ok := registry.Get("suggest_job_description", models.RoleRecruiter)
	require.True(t, ok)
	assert.False(t, Allowed(tool, models.RoleCandidate))
}

func TestSearchJobsTool(t *testing.T) {
	tool := NewSearchJobsTool(newJobService(t))

	raw, err := tool.Execute(context.Background(), json.RawMessage(`{"query": "engineer", "limit": 1}`))
	require.NoError(t, err)

	var out SearchJobsOutput
	result := decodeResult(t, raw, &out)
	require.True(t, result.Success)
	assert.Equal(t, 2, out.Total, "drafts are never listed")
	require.Len(t, out.Jobs, 1)
	assert.Equal(t, "Frontend Engineer", out.Jobs[0].JobTitle, "newest first")

	raw, err = tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	decodeResult(t, raw, &out)
	assert.Equal(t, 3, out.Total)

	raw, err = tool.Execute(context.Background(), json.RawMessage(`{"query": 7}`))
	require.NoError(t, err)
	assert.False(t, decodeResult(t, raw, nil).Success)
}

func TestNormalizeResumeTool(t *testing.T) {
	tool := NewNormalizeResumeTool()

	raw, err := tool.Execute(context.Background(), json.RawMessage(`{"resume": {"personal": {"name": "Ada"}, "skills": {"category": "Lang"}}}`))
	require.NoError(t, err)

	var out models.ResumeData
	require.True(t, decodeResult(t, raw, &out).Success)
	assert.Equal(t, "Ada", out.Personal.Name)
	require.Len(t, out.Skills, 1)
	assert.NotEmpty(t, out.Skills[0].ID)

	raw, err = tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.False(t, decodeResult(t, raw, nil).Success)
}

func TestSuggestDescriptionTool(t *testing.T) {
	tool := NewSuggestDescriptionTool(newJobService(t))

	raw, err := tool.Execute(context.Background(), json.RawMessage(`{"jobTitle": "Engineer", "description": "<p>Build things</p>"}`))
	require.NoError(t, err)
	var out models.SuggestionResponse
	require.True(t, decodeResult(t, raw, &out).Success)
	assert.NotEmpty(t, out.Suggestions)

	raw, err = tool.Execute(context.Background(), json.RawMessage(`{"description": "   "}`))
	require.NoError(t, err)
	assert.False(t, decodeResult(t, raw, nil).Success)
}
