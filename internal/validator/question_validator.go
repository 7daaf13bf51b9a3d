package validator

import (
	"fmt"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/interview"
)

const (
	minOptions = 2
	maxOptions = 10
)

// QuestionValidator checks question bank content
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion checks that the payload matches the question kind
func (v *QuestionValidator) ValidateQuestion(q interview.Question) error {
	if strings.TrimSpace(q.ID) == "" {
		return fmt.Errorf("question id is required")
	}
	if strings.TrimSpace(q.Prompt) == "" {
		return fmt.Errorf("question %s: prompt is required", q.ID)
	}

	switch q.Kind {
	case interview.KindMultipleChoice:
		return v.validateMultipleChoice(q)
	case interview.KindCoding:
		if len(q.Rubric) == 0 {
			return fmt.Errorf("question %s: coding questions need a rubric", q.ID)
		}
	case interview.KindQuiz:
		if len(q.Checklist) == 0 {
			return fmt.Errorf("question %s: quiz questions need a checklist", q.ID)
		}
	default:
		return fmt.Errorf("question %s: unsupported kind %q", q.ID, q.Kind)
	}
	return nil
}

func (v *QuestionValidator) validateMultipleChoice(q interview.Question) error {
	if len(q.Options) < minOptions {
		return fmt.Errorf("question %s: must have at least %d options", q.ID, minOptions)
	}
	if len(q.Options) > maxOptions {
		return fmt.Errorf("question %s: cannot have more than %d options", q.ID, maxOptions)
	}
	for i, option := range q.Options {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("question %s: option %d text cannot be empty", q.ID, i)
		}
	}
	if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Options) {
		return fmt.Errorf("question %s: answer index %d does not match any option", q.ID, q.AnswerIndex)
	}
	return nil
}

// ValidateBank checks every track and mode has questions of the matching
// kind and that IDs are unique within a list.
func (v *QuestionValidator) ValidateBank(bank interview.Bank) error {
	expected := map[interview.Mode]interview.QuestionKind{
		interview.ModeMCQ:    interview.KindMultipleChoice,
		interview.ModeCoding: interview.KindCoding,
		interview.ModeQuiz:   interview.KindQuiz,
	}

	for _, t := range []interview.Type{interview.TypeTechnical, interview.TypeBehavioral, interview.TypeSystemDesign} {
		for mode, kind := range expected {
			questions := bank[t][mode]
			if len(questions) == 0 {
				return fmt.Errorf("bank %s/%s is empty", t, mode)
			}
			seen := make(map[string]bool, len(questions))
			for _, q := range questions {
				if seen[q.ID] {
					return fmt.Errorf("bank %s/%s: duplicate question id %s", t, mode, q.ID)
				}
				seen[q.ID] = true
				if q.Kind != kind {
					return fmt.Errorf("bank %s/%s: question %s has kind %s", t, mode, q.ID, q.Kind)
				}
				if err := v.ValidateQuestion(q); err != nil {
					return fmt.Errorf("bank %s/%s: %w", t, mode, err)
				}
			}
		}
	}
	return nil
}
