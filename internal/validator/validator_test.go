package validator

import (
	"testing"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attemptPayload struct {
	Type         string `json:"type" validate:"required,interview_type"`
	Mode         string `json:"mode" validate:"required,interview_mode"`
	ScorePercent *int   `json:"scorePercent" validate:"omitempty,min=0,max=100"`
}

func TestValidator_InterviewTags(t *testing.T) {
	v := New()
	score := 80
	assert.NoError(t, v.Validate(attemptPayload{Type: "system-design", Mode: "quiz", ScorePercent: &score}))

	bad := 101
	err := v.Validate(attemptPayload{Type: "astrology", Mode: "essay", ScorePercent: &bad})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)
	fields := map[string]string{}
	for _, e := range errs {
		fields[e.Field] = e.Rule
	}
	assert.Equal(t, map[string]string{"type": "interview_type", "mode": "interview_mode", "scorePercent": "max"}, fields)
}

func TestQuestionValidator_DefaultBank(t *testing.T) {
	assert.NoError(t, NewQuestionValidator().ValidateBank(interview.DefaultBank))
}

func TestQuestionValidator_Rejects(t *testing.T) {
	v := NewQuestionValidator()

	assert.Error(t, v.ValidateQuestion(interview.Question{ID: "q", Prompt: "p", Kind: interview.KindMultipleChoice, Options: []string{"a"}}))
	assert.Error(t, v.ValidateQuestion(interview.Question{ID: "q", Prompt: "p", Kind: interview.KindMultipleChoice, Options: []string{"a", "b"}, AnswerIndex: 2}))
	assert.Error(t, v.ValidateQuestion(interview.Question{ID: "q", Prompt: "p", Kind: interview.KindCoding}))
	assert.Error(t, v.ValidateQuestion(interview.Question{ID: "q", Prompt: " ", Kind: interview.KindQuiz, Checklist: []string{"x"}}))

	bank := interview.Bank{interview.TypeTechnical: {interview.ModeMCQ: nil}}
	assert.Error(t, v.ValidateBank(bank))
}
