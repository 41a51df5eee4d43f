package gemini

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain array", `["a", "b"]`, []string{"a", "b"}},
		{"fenced", "```json\n[\"a\"]\n```", []string{"a"}},
		{"wrapped", `{"suggestions": ["x", " ", "y"]}`, []string{"x", "y"}},
		{"capped", `["1","2","3","4","5"]`, []string{"1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSuggestions(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSuggestions_Errors(t *testing.T) {
	_, err := parseSuggestions("")
	assert.Error(t, err)

	_, err = parseSuggestions("Sure! Here are some ideas")
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "", extractText(nil))
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("[\"a\""), genai.Text(", \"b\"]")}},
		}},
	}
	assert.Equal(t, `["a", "b"]`, extractText(resp))
}
