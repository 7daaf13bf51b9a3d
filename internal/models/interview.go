package models

import (
	"time"

	"gorm.io/datatypes"
)

// InterviewAttempt is one completed interview session as saved by the user.
type InterviewAttempt struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	UserID       string `json:"user_id" gorm:"not null;size:255;index:idx_attempts_user_time,priority:1"`
	Type         string `json:"type" gorm:"not null;size:32"`
	Mode         string `json:"mode" gorm:"not null;size:16"`
	ScorePercent *int   `json:"scorePercent"`

	// Raw client payloads, stored as-is
	Answers datatypes.JSON `json:"answers" gorm:"type:jsonb"` // interview.Answers
	Report  datatypes.JSON `json:"report" gorm:"type:jsonb"`  // interview.Report
	Plan    datatypes.JSON `json:"plan" gorm:"type:jsonb"`    // interview.PracticePlan

	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_attempts_user_time,priority:2,sort:desc"`
	CreatedAt time.Time `json:"created_at"`
}

func (InterviewAttempt) TableName() string {
	return "interview_attempts"
}

// UserProgress holds the running interview statistics for one user.
type UserProgress struct {
	UserID              string    `json:"user_id" gorm:"primaryKey;size:255"`
	InterviewsCompleted int       `json:"interviewsCompleted" gorm:"not null;default:0"`
	AverageScore        int       `json:"averageScore" gorm:"not null;default:0"`
	LastActivity        time.Time `json:"lastActivity"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// RecordAttempt bumps the completed count and folds a score into the
// running average. Attempts without a score only bump the count.
func (p *UserProgress) RecordAttempt(scorePercent *int, at time.Time) {
	p.InterviewsCompleted++
	p.LastActivity = at
	if scorePercent == nil {
		return
	}
	n := float64(p.InterviewsCompleted)
	oldTotal := float64(p.AverageScore) * (n - 1)
	p.AverageScore = int(roundHalfUp((oldTotal + float64(*scorePercent)) / n))
}

func roundHalfUp(x float64) float64 {
	if x < 0 {
		return -roundHalfUp(-x)
	}
	return float64(int64(x + 0.5))
}

// InterviewFeedback is the AI (or fallback) review of a finished session.
type InterviewFeedback struct {
	OverallScore        int      `json:"overallScore"`
	OverallSummary      string   `json:"overallSummary"`
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areasForImprovement"`
	Recommendations     []string `json:"recommendations"`
}

// FallbackFeedback is returned whenever no model output is usable.
func FallbackFeedback() InterviewFeedback {
	return InterviewFeedback{
		OverallScore:        75,
		OverallSummary:      "Good effort. Focus on more details.",
		Strengths:           []string{"Completed questions"},
		AreasForImprovement: []string{"Elaborate answers"},
		Recommendations:     []string{"Practice STAR method"},
	}
}

// ProgressStats summarizes a user's interview history.
type ProgressStats struct {
	InterviewsCompleted int            `json:"interviewsCompleted"`
	AverageScore        int            `json:"averageScore"`
	AttemptsByMode      map[string]int `json:"attemptsByMode"`
	AttemptsByType      map[string]int `json:"attemptsByType"`
	TopWeaknesses       []string       `json:"topWeaknesses"`
	LastActivity        *time.Time     `json:"lastActivity,omitempty"`
}
