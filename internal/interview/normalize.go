package interview

import "fmt"

// SessionLength is the fixed number of questions in every session.
const SessionLength = 15

// Normalize returns exactly target questions. Short sources are repeated
// cyclically; each clone gets the ID "<base>-x<n>" and a prompt suffix,
// where n is the clone's 1-based position in the output. An empty source
// yields an empty result.
func Normalize(source []Question, target int) []Question {
	if len(source) == 0 || target <= 0 {
		return []Question{}
	}
	if len(source) >= target {
		out := make([]Question, target)
		copy(out, source[:target])
		return out
	}

	out := make([]Question, 0, target)
	out = append(out, source...)
	for idx := 0; len(out) < target; idx++ {
		base := source[idx%len(source)]
		n := len(out) + 1

		clone := base
		clone.ID = fmt.Sprintf("%s-x%d", base.ID, n)
		clone.Prompt = variantPrompt(base, n)
		out = append(out, clone)
	}
	return out
}

func variantPrompt(base Question, n int) string {
	if base.Kind == KindMultipleChoice {
		return fmt.Sprintf("%s (variant %d)", base.Prompt, n)
	}
	return fmt.Sprintf("%s (v%d)", base.Prompt, n)
}
