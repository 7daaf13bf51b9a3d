package interview

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the interview track a session is drawn from.
type Type string

const (
	TypeTechnical    Type = "technical"
	TypeBehavioral   Type = "behavioral"
	TypeSystemDesign Type = "system-design"
)

// ParseType lowercases the raw value and falls back to technical for
// unknown tracks.
func ParseType(raw string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if t.Valid() {
		return t
	}
	return TypeTechnical
}

func (t Type) Valid() bool {
	switch t {
	case TypeTechnical, TypeBehavioral, TypeSystemDesign:
		return true
	}
	return false
}

// Mode selects how questions are answered.
type Mode string

const (
	ModeMCQ    Mode = "mcq"
	ModeCoding Mode = "coding"
	ModeQuiz   Mode = "quiz"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeMCQ, ModeCoding, ModeQuiz:
		return true
	}
	return false
}

// FreeText reports whether answers in this mode are typed text.
func (m Mode) FreeText() bool {
	return m == ModeCoding || m == ModeQuiz
}

// QuestionKind identifies which payload a Question carries.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindCoding         QuestionKind = "coding"
	KindQuiz           QuestionKind = "quiz"
)

// Question is immutable once generated. Padded clones share the Options,
// Rubric and Checklist slices of their base question.
type Question struct {
	ID     string       `json:"id"`
	Prompt string       `json:"prompt"`
	Kind   QuestionKind `json:"kind"`

	// multiple choice
	Options     []string `json:"options,omitempty"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation,omitempty"`

	// coding
	Starter string   `json:"starter,omitempty"`
	Rubric  []string `json:"rubric,omitempty"`

	// quiz
	Placeholder string   `json:"placeholder,omitempty"`
	Checklist   []string `json:"checklist,omitempty"`
}

// Keywords returns the checklist when present, otherwise the rubric.
func (q Question) Keywords() []string {
	if q.Checklist != nil {
		return q.Checklist
	}
	return q.Rubric
}

// Answer is either a selected option index or free text.
type Answer struct {
	choice *int
	text   *string
}

func ChoiceAnswer(index int) Answer { return Answer{choice: &index} }

func TextAnswer(text string) Answer { return Answer{text: &text} }

// Choice returns the selected option index, if this is a choice answer.
func (a Answer) Choice() (int, bool) {
	if a.choice == nil {
		return 0, false
	}
	return *a.choice, true
}

// Text returns the typed text, if this is a free-text answer.
func (a Answer) Text() (string, bool) {
	if a.text == nil {
		return "", false
	}
	return *a.text, true
}

func (a Answer) IsZero() bool {
	return a.choice == nil && a.text == nil
}

func (a Answer) MarshalJSON() ([]byte, error) {
	switch {
	case a.choice != nil:
		return json.Marshal(*a.choice)
	case a.text != nil:
		return json.Marshal(*a.text)
	default:
		return []byte("null"), nil
	}
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	*a = Answer{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.text = &s
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer must be a number or a string: %w", err)
	}
	i := int(n)
	if float64(i) != n {
		return fmt.Errorf("answer index must be an integer, got %v", n)
	}
	a.choice = &i
	return nil
}

// Answers maps question IDs to the recorded answer.
type Answers map[string]Answer

// Dimension is one of the three fixed scoring labels.
type Dimension string

const (
	DimensionCorrectness Dimension = "Correctness"
	DimensionClarity     Dimension = "Clarity"
	DimensionStructure   Dimension = "Structure"
)

// Dimensions lists the scoring labels in report order.
var Dimensions = []Dimension{DimensionCorrectness, DimensionClarity, DimensionStructure}

type Scores struct {
	Correctness int `json:"correctness"`
	Clarity     int `json:"clarity"`
	Structure   int `json:"structure"`
}

// Of returns the score for a dimension.
func (s Scores) Of(d Dimension) int {
	switch d {
	case DimensionCorrectness:
		return s.Correctness
	case DimensionClarity:
		return s.Clarity
	case DimensionStructure:
		return s.Structure
	}
	return 0
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Report is a read-only snapshot derived once per completed session.
type Report struct {
	Type       Type        `json:"type"`
	Mode       Mode        `json:"mode"`
	Scores     Scores      `json:"scores"`
	Strengths  []Dimension `json:"strengths"`
	Weaknesses []Dimension `json:"weaknesses"`
	Resources  []Resource  `json:"resources"`
	Timestamp  int64       `json:"timestamp,omitempty"`
}

type PlanEntry struct {
	Topic Dimension `json:"topic"`
	Due   [3]int64  `json:"due"`
}

// PracticePlan is the spaced-repetition schedule built from a report.
type PracticePlan struct {
	GeneratedAt int64       `json:"generatedAt"`
	Entries     []PlanEntry `json:"entries"`
}
