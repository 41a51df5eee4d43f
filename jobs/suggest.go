package jobs

import "context"

// Suggester proposes rewrites of a job description
type Suggester interface {
	SuggestDescriptions(ctx context.Context, jobTitle, description string) ([]string, error)
}

// StaticSuggester returns a fixed set of suggestions. It is used when no
// model backend is configured.
type StaticSuggester struct{}

var staticSuggestions = []string{
	"We are seeking a highly motivated and experienced **Senior Product Designer** to lead UX/UI initiatives for our next-generation consumer applications.",
	"Design and develop intuitive, user-centered interfaces, collaborating closely with cross-functional engineering and product teams.",
	"Proven ability to translate complex user needs into elegant design solutions, with expertise in wireframing, prototyping, and user testing.",
}

// SuggestDescriptions ignores its input
func (StaticSuggester) SuggestDescriptions(ctx context.Context, jobTitle, description string) ([]string, error) {
	return append([]string(nil), staticSuggestions...), nil
}
