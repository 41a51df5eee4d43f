package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/careerverse/backend/models"
)

// DescriptionSuggester proposes job description rewrites
type DescriptionSuggester interface {
	Suggest(ctx context.Context, jobTitle, description string) ([]string, error)
}

// SuggestDescriptionTool asks for job description rewrites
type SuggestDescriptionTool struct {
	suggester DescriptionSuggester
}

// NewSuggestDescriptionTool creates a suggest_job_description tool
func NewSuggestDescriptionTool(suggester DescriptionSuggester) *SuggestDescriptionTool {
	return &SuggestDescriptionTool{suggester: suggester}
}

func (t *SuggestDescriptionTool) Roles() []models.Role {
	return []models.Role{models.RoleRecruiter, models.RoleAdmin}
}

func (t *SuggestDescriptionTool) Name() string {
	return "suggest_job_description"
}

func (t *SuggestDescriptionTool) Description() string {
	return "Suggest improved versions of a job description. The description may be HTML or plain text."
}

func (t *SuggestDescriptionTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"jobTitle": map[string]interface{}{
				"type": "string",
			},
			"description": map[string]interface{}{
				"type":        "string",
				"description": "Current description text",
			},
		},
		"required": []string{"description"},
	}
}

func (t *SuggestDescriptionTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in models.SuggestionRequest
	if err := decodeInput(input, &in); err != nil {
		return NewErrorResult(err.Error())
	}

	suggestions, err := t.suggester.Suggest(ctx, in.JobTitle, in.Description)
	if err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			return NewErrorResult(vErr.Error())
		}
		return nil, err
	}
	return NewSuccessResult(models.SuggestionResponse{Suggestions: suggestions})
}
