package interview

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

var (
	ErrNoQuestions       = errors.New("no questions available for this mode")
	ErrInvalidMode       = errors.New("invalid interview mode")
	ErrInvalidTransition = errors.New("action not allowed in current session state")
	ErrUnknownQuestion   = errors.New("question is not part of this session")
	ErrQuestionSubmitted = errors.New("question already submitted")
	ErrInvalidAnswer     = errors.New("answer does not fit question kind")
	ErrIndexOutOfRange   = errors.New("question index out of range")
)

// State is one of SelectingMode, Answering or AllSubmitted.
type State interface {
	Name() string
	sealed()
}

type SelectingMode struct{}

type Answering struct {
	Index int
}

type AllSubmitted struct {
	Index       int
	Report      Report
	Plan        PracticePlan
	CompletedAt time.Time
}

func (SelectingMode) Name() string { return "selecting_mode" }
func (Answering) Name() string     { return "answering" }
func (AllSubmitted) Name() string  { return "all_submitted" }

func (SelectingMode) sealed() {}
func (Answering) sealed()     {}
func (AllSubmitted) sealed()  {}

// Completion is produced exactly once when the last question is submitted.
// It carries everything the persistence step needs.
type Completion struct {
	SessionID    string
	UserID       string
	Type         Type
	Mode         Mode
	Questions    []Question
	Answers      Answers
	ScorePercent *int
	Report       Report
	Plan         PracticePlan
	CompletedAt  time.Time
}

// Session is one user's pass through a question set. It is not safe for
// concurrent use; callers serialize access.
type Session struct {
	ID        string
	UserID    string
	Type      Type
	Mode      Mode
	Questions []Question
	Options   OptionMap
	Answers   Answers
	Submitted map[string]bool
	CreatedAt time.Time

	state State
}

// NewSession starts a session waiting for a mode choice.
func NewSession(id, userID string, t Type, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		Type:      t,
		Answers:   Answers{},
		Submitted: map[string]bool{},
		CreatedAt: now,
		state:     SelectingMode{},
	}
}

func (s *Session) State() State { return s.state }

// CurrentIndex returns the index of the displayed question, or -1 before a
// mode is chosen.
func (s *Session) CurrentIndex() int {
	switch st := s.state.(type) {
	case Answering:
		return st.Index
	case AllSubmitted:
		return st.Index
	}
	return -1
}

// Current returns the displayed question.
func (s *Session) Current() (Question, bool) {
	i := s.CurrentIndex()
	if i < 0 || i >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[i], true
}

func (s *Session) Completed() bool {
	_, ok := s.state.(AllSubmitted)
	return ok
}

// SelectMode loads and pads the question set and shuffles multiple-choice
// options. An empty bank entry leaves the session in SelectingMode.
func (s *Session) SelectMode(m Mode, bank Bank, shuffler Shuffler) error {
	if _, ok := s.state.(SelectingMode); !ok {
		return ErrInvalidTransition
	}
	if !m.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, m)
	}
	questions := Normalize(bank.Questions(s.Type, m), SessionLength)
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	s.Mode = m
	s.Questions = questions
	s.Options = OptionMap{}
	if m == ModeMCQ {
		s.Options = ShuffleOptions(questions, shuffler)
	}
	s.Answers = Answers{}
	s.Submitted = map[string]bool{}
	s.state = Answering{Index: 0}
	return nil
}

// Answer records or replaces the answer for an unsubmitted question.
func (s *Session) Answer(questionID string, a Answer) error {
	if _, ok := s.state.(Answering); !ok {
		return ErrInvalidTransition
	}
	q, ok := s.question(questionID)
	if !ok {
		return ErrUnknownQuestion
	}
	if s.Submitted[questionID] {
		return ErrQuestionSubmitted
	}
	if q.Kind == KindMultipleChoice {
		choice, ok := a.Choice()
		if !ok || choice < 0 || choice >= len(q.Options) {
			return ErrInvalidAnswer
		}
	} else if _, ok := a.Text(); !ok {
		return ErrInvalidAnswer
	}
	s.Answers[questionID] = a
	return nil
}

// Goto moves to question i. Navigation stays available after completion so
// results can be reviewed.
func (s *Session) Goto(i int) error {
	if i < 0 || i >= len(s.Questions) {
		return ErrIndexOutOfRange
	}
	switch st := s.state.(type) {
	case Answering:
		s.state = Answering{Index: i}
	case AllSubmitted:
		st.Index = i
		s.state = st
	default:
		return ErrInvalidTransition
	}
	return nil
}

// Next submits the current question if needed, then advances when a next
// question exists.
func (s *Session) Next(now time.Time) (*Completion, error) {
	i := s.CurrentIndex()
	if i < 0 {
		return nil, ErrInvalidTransition
	}
	completion := s.SubmitCurrent(now)
	if i+1 < len(s.Questions) {
		if err := s.Goto(i + 1); err != nil {
			return completion, err
		}
	}
	return completion, nil
}

func (s *Session) Prev() error {
	i := s.CurrentIndex()
	if i < 0 {
		return ErrInvalidTransition
	}
	if i == 0 {
		return ErrIndexOutOfRange
	}
	return s.Goto(i - 1)
}

// SubmitCurrent marks the displayed question submitted. It returns a
// Completion only on the call that covers the last question.
func (s *Session) SubmitCurrent(now time.Time) *Completion {
	st, ok := s.state.(Answering)
	if !ok {
		return nil
	}
	s.Submitted[s.Questions[st.Index].ID] = true
	return s.completeIfFinished(now)
}

// Expire handles a per-question timeout for the question at index. Stale
// timers for a question that is no longer displayed are ignored. The
// question is submitted with whatever answer it already has and the session
// moves on when a next question exists.
func (s *Session) Expire(index int, now time.Time) *Completion {
	st, ok := s.state.(Answering)
	if !ok || st.Index != index {
		return nil
	}
	s.Submitted[s.Questions[index].ID] = true
	completion := s.completeIfFinished(now)
	if completion == nil && index+1 < len(s.Questions) {
		s.state = Answering{Index: index + 1}
	}
	return completion
}

// Restart clears answers and submissions and keeps the question set and
// option order.
func (s *Session) Restart() error {
	if _, ok := s.state.(SelectingMode); ok {
		return ErrInvalidTransition
	}
	s.Answers = Answers{}
	s.Submitted = map[string]bool{}
	s.state = Answering{Index: 0}
	return nil
}

func (s *Session) question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

func (s *Session) allSubmitted() bool {
	if len(s.Questions) == 0 {
		return false
	}
	for _, q := range s.Questions {
		if !s.Submitted[q.ID] {
			return false
		}
	}
	return true
}

func (s *Session) completeIfFinished(now time.Time) *Completion {
	st, ok := s.state.(Answering)
	if !ok || !s.allSubmitted() {
		return nil
	}

	var percent *int
	if s.Mode == ModeMCQ {
		p := MCQPercent(s.Questions, s.Answers, s.Options)
		percent = &p
	}
	report := BuildReport(ReportInput{
		Type:       s.Type,
		Mode:       s.Mode,
		Questions:  s.Questions,
		Answers:    s.Answers,
		MCQPercent: percent,
	})
	plan := BuildPracticePlan(report, now)

	s.state = AllSubmitted{Index: st.Index, Report: report, Plan: plan, CompletedAt: now}
	return &Completion{
		SessionID:    s.ID,
		UserID:       s.UserID,
		Type:         s.Type,
		Mode:         s.Mode,
		Questions:    s.Questions,
		Answers:      maps.Clone(s.Answers),
		ScorePercent: percent,
		Report:       report,
		Plan:         plan,
		CompletedAt:  now,
	}
}
