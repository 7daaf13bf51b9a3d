package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSession_MCQ(t *testing.T) {
	questions := []interview.Question{
		{ID: "a", Kind: interview.KindMultipleChoice, Options: []string{"x", "y"}, AnswerIndex: 1},
		{ID: "b", Kind: interview.KindMultipleChoice, Options: []string{"x", "y"}, AnswerIndex: 0},
	}
	now := time.UnixMilli(1_700_000_000_000)

	out, err := scoreSession(scoreInput{
		Type:      interview.TypeTechnical,
		Mode:      interview.ModeMCQ,
		Questions: questions,
		Answers:   interview.Answers{"a": interview.ChoiceAnswer(1), "b": interview.ChoiceAnswer(1)},
	}, now)
	require.NoError(t, err)

	require.NotNil(t, out.ScorePercent)
	assert.Equal(t, 50, *out.ScorePercent)
	assert.Equal(t, 50, out.Report.Scores.Correctness)
	assert.Equal(t, now.UnixMilli(), out.Report.Timestamp)
	assert.Equal(t, now.UnixMilli(), out.Plan.GeneratedAt)
}

func TestScoreSession_RejectsUnknownMode(t *testing.T) {
	_, err := scoreSession(scoreInput{Type: interview.TypeTechnical, Mode: "essay"}, time.Now())
	assert.ErrorIs(t, err, interview.ErrInvalidMode)
}

func TestScoreCommand_ReadsStdin(t *testing.T) {
	var stdout bytes.Buffer
	scoreCmd.SetIn(strings.NewReader(`{"type": "behavioral", "mode": "quiz", "answers": {}}`))
	scoreCmd.SetOut(&stdout)
	t.Cleanup(func() {
		scoreCmd.SetIn(nil)
		scoreCmd.SetOut(nil)
	})

	require.NoError(t, scoreCmd.RunE(scoreCmd, nil))

	var out scoreOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	assert.Nil(t, out.ScorePercent)
	assert.Equal(t, interview.ModeQuiz, out.Report.Mode)
	assert.Equal(t, 0, out.Report.Scores.Clarity)
}
