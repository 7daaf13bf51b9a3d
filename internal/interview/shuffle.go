package interview

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Shuffler produces option permutations for multiple-choice display.
type Shuffler interface {
	// Perm returns a permutation of [0, n).
	Perm(n int) []int
}

type seededShuffler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededShuffler returns a deterministic Shuffler for a given seed.
func NewSeededShuffler(seed uint64) Shuffler {
	return &seededShuffler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewClockShuffler seeds from the current time.
func NewClockShuffler() Shuffler {
	return NewSeededShuffler(uint64(time.Now().UnixNano()))
}

func (s *seededShuffler) Perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}

// OptionOrder is the display order of one question's options.
// Order[i] is the original option index shown at position i; AnswerIndex
// is the display position of the correct option.
type OptionOrder struct {
	Order       []int `json:"order"`
	AnswerIndex int   `json:"answerIndex"`
}

// OptionMap holds one OptionOrder per multiple-choice question ID.
type OptionMap map[string]OptionOrder

// ShuffleOptions builds display orders for every multiple-choice question.
func ShuffleOptions(questions []Question, s Shuffler) OptionMap {
	out := make(OptionMap, len(questions))
	for _, q := range questions {
		if q.Kind != KindMultipleChoice {
			continue
		}
		order := s.Perm(len(q.Options))
		answer := -1
		for pos, orig := range order {
			if orig == q.AnswerIndex {
				answer = pos
				break
			}
		}
		out[q.ID] = OptionOrder{Order: order, AnswerIndex: answer}
	}
	return out
}

// CorrectIndex returns the display position of the correct option for q.
func (m OptionMap) CorrectIndex(q Question) int {
	if o, ok := m[q.ID]; ok {
		return o.AnswerIndex
	}
	return q.AnswerIndex
}
