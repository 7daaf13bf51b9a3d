package interview

import (
	"math"
	"strings"
)

const (
	// StrengthThreshold is the minimum score for a dimension to count as a strength.
	StrengthThreshold = 75
	// MaxResources caps the resources attached to a report.
	MaxResources = 4

	mcqClarity   = 70
	mcqStructure = 65
	minStructure = 60
)

var resourcesByDimension = map[Dimension][]Resource{
	DimensionCorrectness: {
		{Title: "LeetCode Patterns", URL: "https://seanprashad.com/leetcode-patterns/"},
		{Title: "NeetCode Roadmap", URL: "https://neetcode.io/roadmap"},
	},
	DimensionClarity: {
		{Title: "STAR Method Guide", URL: "https://www.themuse.com/advice/star-interview-method"},
		{Title: "Technical Communication Tips", URL: "https://www.khanacademy.org/college-careers-more/career-content"},
	},
	DimensionStructure: {
		{Title: "System Design Primer", URL: "https://github.com/donnemartin/system-design-primer"},
		{Title: "Grokking the System Design", URL: "https://www.designgurus.io/course/grokking-the-system-design-interview"},
	},
}

// round matches half-up rounding of non-negative scores.
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}

// ClarityScore grades free text by trimmed length.
func ClarityScore(text string) int {
	if text == "" {
		return 0
	}
	n := len([]rune(strings.TrimSpace(text)))
	switch {
	case n < 40:
		return 40
	case n < 120:
		return 65
	case n < 300:
		return 80
	default:
		return 90
	}
}

// StructureScore counts keywords whose first word appears in text,
// case-insensitively. The result is clamped to [60, 100].
func StructureScore(text string, keywords []string) int {
	if text == "" || len(keywords) == 0 {
		return minStructure
	}
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range keywords {
		token := strings.ToLower(kw)
		if i := strings.IndexByte(token, ' '); i >= 0 {
			token = token[:i]
		}
		if strings.Contains(lower, token) {
			hits++
		}
	}
	score := round(float64(hits) / float64(len(keywords)) * 100)
	return max(minStructure, min(100, score))
}

// MCQPercent is the share of questions whose recorded choice matches the
// correct display position. Unanswered questions count as wrong.
func MCQPercent(questions []Question, answers Answers, options OptionMap) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		choice, ok := answers[q.ID].Choice()
		if ok && choice == options.CorrectIndex(q) {
			correct++
		}
	}
	return round(float64(correct) / float64(len(questions)) * 100)
}

// ReportInput carries everything BuildReport reads.
type ReportInput struct {
	Type       Type
	Mode       Mode
	Questions  []Question
	Answers    Answers
	MCQPercent *int
}

// BuildReport derives scores, strengths, weaknesses and resources for a
// finished session.
func BuildReport(in ReportInput) Report {
	var clarity, structure int
	if in.Mode.FreeText() {
		clarity, structure = freeTextScores(in.Questions, in.Answers)
	} else {
		clarity, structure = mcqClarity, mcqStructure
	}

	correctness := 0
	if in.MCQPercent != nil {
		correctness = *in.MCQPercent
	}

	scores := Scores{Correctness: correctness, Clarity: clarity, Structure: structure}
	strengths := make([]Dimension, 0, len(Dimensions))
	weaknesses := make([]Dimension, 0, len(Dimensions))
	for _, d := range Dimensions {
		if scores.Of(d) >= StrengthThreshold {
			strengths = append(strengths, d)
		} else {
			weaknesses = append(weaknesses, d)
		}
	}

	return Report{
		Type:       in.Type,
		Mode:       in.Mode,
		Scores:     scores,
		Strengths:  strengths,
		Weaknesses: weaknesses,
		Resources:  ResourcesFor(in.Type, weaknesses),
	}
}

// freeTextScores averages clarity and structure over text answers only.
// With no text answers both are 0.
func freeTextScores(questions []Question, answers Answers) (int, int) {
	var claritySum, structureSum, count int
	for _, q := range questions {
		text, ok := answers[q.ID].Text()
		if !ok {
			continue
		}
		claritySum += ClarityScore(text)
		structureSum += StructureScore(text, q.Keywords())
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return round(float64(claritySum) / float64(count)), round(float64(structureSum) / float64(count))
}

// ResourcesFor concatenates the resources of each weakness in order and
// keeps the first MaxResources. The interview type does not change the
// selection today.
func ResourcesFor(_ Type, weaknesses []Dimension) []Resource {
	out := make([]Resource, 0, MaxResources)
	for _, w := range weaknesses {
		for _, r := range resourcesByDimension[w] {
			if len(out) == MaxResources {
				return out
			}
			out = append(out, r)
		}
	}
	return out
}
