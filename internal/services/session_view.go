package services

import (
	"time"

	"github.com/SAP-F-2025/interview-service/internal/interview"
)

// SessionView is the client-facing snapshot of a live session. Options are
// listed in display order and answers refer to display positions. Correct
// answers are only revealed once every question is submitted.
type SessionView struct {
	ID               string         `json:"id"`
	Type             interview.Type `json:"type"`
	Mode             interview.Mode `json:"mode,omitempty"`
	State            string         `json:"state"`
	CurrentIndex     int            `json:"currentIndex"`
	Questions        []QuestionView `json:"questions"`
	AnsweredCount    int            `json:"answeredCount"`
	SubmittedCount   int            `json:"submittedCount"`
	TimeLimitSeconds int            `json:"timeLimitSeconds,omitempty"`

	Report      *interview.Report       `json:"report,omitempty"`
	Plan        *interview.PracticePlan `json:"plan,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
}

type QuestionView struct {
	ID          string                 `json:"id"`
	Prompt      string                 `json:"prompt"`
	Kind        interview.QuestionKind `json:"kind"`
	Options     []string               `json:"options,omitempty"`
	Starter     string                 `json:"starter,omitempty"`
	Placeholder string                 `json:"placeholder,omitempty"`
	Answer      *interview.Answer      `json:"answer,omitempty"`
	Submitted   bool                   `json:"submitted"`

	CorrectIndex *int   `json:"correctIndex,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
}

// view snapshots s. Caller holds the session lock.
func (r *roomService) view(s *interview.Session) *SessionView {
	v := &SessionView{
		ID:           s.ID,
		Type:         s.Type,
		Mode:         s.Mode,
		State:        s.State().Name(),
		CurrentIndex: s.CurrentIndex(),
		Questions:    make([]QuestionView, 0, len(s.Questions)),
		CreatedAt:    s.CreatedAt,
	}
	if r.config.QuestionTime > 0 {
		v.TimeLimitSeconds = int(r.config.QuestionTime / time.Second)
	}

	done, completed := s.State().(interview.AllSubmitted)
	if completed {
		report, plan, at := done.Report, done.Plan, done.CompletedAt
		v.Report = &report
		v.Plan = &plan
		v.CompletedAt = &at
	}

	for _, q := range s.Questions {
		qv := QuestionView{
			ID:          q.ID,
			Prompt:      q.Prompt,
			Kind:        q.Kind,
			Options:     displayOptions(q, s.Options),
			Starter:     q.Starter,
			Placeholder: q.Placeholder,
			Submitted:   s.Submitted[q.ID],
		}
		if a, ok := s.Answers[q.ID]; ok && !a.IsZero() {
			answer := a
			qv.Answer = &answer
			v.AnsweredCount++
		}
		if qv.Submitted {
			v.SubmittedCount++
		}
		if completed && q.Kind == interview.KindMultipleChoice {
			correct := s.Options.CorrectIndex(q)
			qv.CorrectIndex = &correct
			qv.Explanation = q.Explanation
		}
		v.Questions = append(v.Questions, qv)
	}

	return v
}

func displayOptions(q interview.Question, options interview.OptionMap) []string {
	order, ok := options[q.ID]
	if !ok || len(order.Order) != len(q.Options) {
		return q.Options
	}
	out := make([]string, len(order.Order))
	for pos, orig := range order.Order {
		out[pos] = q.Options[orig]
	}
	return out
}
