package framework

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultProblemID      = "default-problem"
	DefaultBusinessImpact = 5
	ImportedTitle         = "Imported Hypothesis"
)

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// DefaultTitle is the title given to the hypothesis at the given index.
func DefaultTitle(index int) string {
	return fmt.Sprintf("Гипотеза %d", index+1)
}

// NewProblem creates an empty hypothesis with default scores.
func NewProblem(index int) ProblemEntry {
	return ProblemEntry{
		ID:             NewID(),
		Title:          DefaultTitle(index),
		Step2:          DefaultScorecard(),
		BusinessImpact: DefaultBusinessImpact,
		Research:       []ResearchItem{},
	}
}

// DefaultState is the state of a fresh workbench.
func DefaultState() State {
	p := NewProblem(0)
	p.ID = DefaultProblemID
	return State{
		Problems:            []ProblemEntry{p},
		ValidationQuestions: []ValidationItem{},
		ActiveProblemID:     p.ID,
		Chats:               []ChatSession{},
	}
}

// IsPristine reports whether s still holds only the untouched default
// hypothesis.
func (s State) IsPristine() bool {
	return len(s.Problems) == 1 &&
		strings.TrimSpace(s.Problems[0].UserProblem) == "" &&
		s.Problems[0].Title == DefaultTitle(0)
}

// Score returns the AI Score of a hypothesis.
func Score(p ProblemEntry) int {
	return p.Step2.Total()
}

// Verdict is a human label for an AI Score band.
type Verdict struct {
	Text string
	Band string
}

// VerdictFor maps an AI Score onto its band.
func VerdictFor(score int) Verdict {
	switch {
	case score >= 30:
		return Verdict{Text: "Отличный кейс", Band: "excellent"}
	case score >= 20:
		return Verdict{Text: "Потенциал есть", Band: "promising"}
	case score >= 10:
		return Verdict{Text: "Слабый кейс", Band: "weak"}
	default:
		return Verdict{Text: "Не подходит", Band: "unfit"}
	}
}

// Normalize repairs a loaded state so every invariant the UI relies on holds.
func Normalize(s *State) {
	if len(s.Problems) == 0 {
		s.Problems = DefaultState().Problems
	}
	for i := range s.Problems {
		p := &s.Problems[i]
		if p.ID == "" {
			p.ID = NewID()
		}
		p.Step2.Backfill()
		if p.BusinessImpact == 0 {
			p.BusinessImpact = DefaultBusinessImpact
		}
		if p.Research == nil {
			p.Research = []ResearchItem{}
		}
		for j := range p.Research {
			if p.Research[j].Sources == nil {
				p.Research[j].Sources = []Source{}
			}
		}
	}
	if s.ValidationQuestions == nil {
		s.ValidationQuestions = []ValidationItem{}
	}
	if _, ok := s.Problem(s.ActiveProblemID); !ok {
		s.ActiveProblemID = s.Problems[0].ID
	}

	if s.Chats == nil {
		s.Chats = []ChatSession{}
	}
	for i := range s.Chats {
		c := &s.Chats[i]
		if c.ID == "" {
			c.ID = NewID()
		}
		if c.Title == "" {
			c.Title = DefaultChatTitle
		}
		if c.Messages == nil {
			c.Messages = []ChatMessage{}
		}
	}
	if _, ok := s.Chat(s.ActiveChatID); !ok {
		s.ActiveChatID = ""
		if len(s.Chats) > 0 {
			s.ActiveChatID = s.Chats[0].ID
		}
	}
}

// storedState mirrors State but keeps validationQuestions raw so older
// payloads that stored plain question strings still load.
type storedState struct {
	State
	ValidationQuestions json.RawMessage `json:"validationQuestions"`
}

// DecodeState parses a persisted state and normalizes it.
func DecodeState(data []byte) (State, error) {
	var raw storedState
	if err := json.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("decode state: %w", err)
	}
	s := raw.State
	if len(raw.ValidationQuestions) > 0 && string(raw.ValidationQuestions) != "null" {
		var items []ValidationItem
		if err := json.Unmarshal(raw.ValidationQuestions, &items); err != nil {
			var legacy []string
			if lerr := json.Unmarshal(raw.ValidationQuestions, &legacy); lerr != nil {
				return State{}, fmt.Errorf("decode validation questions: %w", err)
			}
			// A failed decode still leaves one zero item per string behind.
			items = make([]ValidationItem, 0, len(legacy))
			for _, q := range legacy {
				items = append(items, ValidationItem{ID: NewID(), Question: q})
			}
		}
		s.ValidationQuestions = items
	}
	Normalize(&s)
	return s, nil
}
