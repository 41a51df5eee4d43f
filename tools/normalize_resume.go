package tools

import (
	"context"
	"encoding/json"

	"github.com/careerverse/backend/resume"
)

// NormalizeResumeTool coerces loosely-shaped resume JSON into the builder document
type NormalizeResumeTool struct{}

// NewNormalizeResumeTool creates a normalize_resume tool
func NewNormalizeResumeTool() *NormalizeResumeTool {
	return &NormalizeResumeTool{}
}

func (t *NormalizeResumeTool) Name() string {
	return "normalize_resume"
}

func (t *NormalizeResumeTool) Description() string {
	return "Normalize parsed resume JSON: lists are always arrays, text fields are always strings, and every entry has an id."
}

func (t *NormalizeResumeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"resume": map[string]interface{}{
				"type":        "object",
				"description": "Resume data in the shape returned by the resume parser",
			},
		},
		"required": []string{"resume"},
	}
}

func (t *NormalizeResumeTool) Execute(ctx context.Context, input json.RawMessage) (json.RawMessage, error) {
	var in struct {
		Resume json.RawMessage `json:"resume"`
	}
	if err := decodeInput(input, &in); err != nil {
		return NewErrorResult(err.Error())
	}
	if len(in.Resume) == 0 {
		return NewErrorResult("resume is required")
	}
	return NewSuccessResult(resume.Normalize(in.Resume))
}
