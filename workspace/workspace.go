// Package workspace owns the workbench state: it applies edits, imports and
// AI results and persists every change through a store.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/framework"
	"github.com/esporykhin/ai-product-framework/generator"
	"github.com/esporykhin/ai-product-framework/markdown"
	"github.com/esporykhin/ai-product-framework/metrics"
	"github.com/esporykhin/ai-product-framework/store"
)

var (
	ErrNoHypotheses    = errors.New("no hypotheses found in markdown")
	ErrImportFailed    = errors.New("markdown import failed")
	ErrProblemNotFound = errors.New("hypothesis not found")
	ErrNoAgent         = errors.New("ai actions are not configured")
	ErrQuestionMissing = errors.New("validation question not found")
	ErrChatNotFound    = errors.New("chat not found")
)

// Service is safe for concurrent use.
type Service struct {
	mu       sync.Mutex
	state    framework.State
	store    store.Store
	agent    *generator.Agent
	importer *markdown.Importer
	log      *zap.Logger
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithAgent(a *generator.Agent) Option { return func(s *Service) { s.agent = a } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithImporter replaces the Markdown importer, mostly to pin ids in tests.
func WithImporter(im *markdown.Importer) Option { return func(s *Service) { s.importer = im } }

// New loads the saved state from st.
func New(ctx context.Context, st store.Store, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("store is required")
	}
	s := &Service{store: st, importer: &markdown.Importer{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	state, err := st.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	s.state = state
	s.metrics.SetHypotheses(len(state.Problems))
	return s, nil
}

// Agent returns the configured AI agent or nil.
func (s *Service) Agent() *generator.Agent { return s.agent }

// State returns a deep copy of the current state.
func (s *Service) State() framework.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// commit persists next and makes it current. Callers hold s.mu.
func (s *Service) commit(ctx context.Context, next framework.State) error {
	framework.Normalize(&next)
	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	s.state = next
	s.metrics.SetHypotheses(len(next.Problems))
	return nil
}

// update applies fn to a copy of the state and commits it.
func (s *Service) update(ctx context.Context, fn func(*framework.State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	return s.commit(ctx, next)
}

// Replace swaps in a whole state, as a client that edits locally would.
func (s *Service) Replace(ctx context.Context, state framework.State) error {
	return s.update(ctx, func(st *framework.State) error {
		*st = state.Clone()
		return nil
	})
}

// Reset drops everything back to the fresh workbench.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.state = framework.DefaultState()
	s.metrics.SetHypotheses(len(s.state.Problems))
	s.log.Info("workspace reset")
	return nil
}

func (s *Service) SetProjectContext(ctx context.Context, text string) error {
	return s.update(ctx, func(st *framework.State) error {
		st.ProjectContext = text
		return nil
	})
}

// AddProblem appends a fresh hypothesis and makes it active.
func (s *Service) AddProblem(ctx context.Context) (framework.ProblemEntry, error) {
	var p framework.ProblemEntry
	err := s.update(ctx, func(st *framework.State) error {
		p = framework.NewProblem(len(st.Problems))
		st.Problems = append(st.Problems, p)
		st.ActiveProblemID = p.ID
		return nil
	})
	return p, err
}

// UpdateProblem overwrites the hypothesis with the same id.
func (s *Service) UpdateProblem(ctx context.Context, p framework.ProblemEntry) error {
	return s.update(ctx, func(st *framework.State) error {
		cur, ok := st.Problem(p.ID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProblemNotFound, p.ID)
		}
		*cur = p
		return nil
	})
}

// DeleteProblem removes a hypothesis. The last one is never removed; it is
// replaced by a blank one instead. Deleting the active hypothesis activates
// its predecessor.
func (s *Service) DeleteProblem(ctx context.Context, id string) error {
	return s.update(ctx, func(st *framework.State) error {
		idx := slices.IndexFunc(st.Problems, func(p framework.ProblemEntry) bool { return p.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrProblemNotFound, id)
		}
		if len(st.Problems) == 1 {
			fresh := framework.NewProblem(0)
			st.Problems = []framework.ProblemEntry{fresh}
			st.ActiveProblemID = fresh.ID
			return nil
		}
		st.Problems = slices.Delete(st.Problems, idx, idx+1)
		if st.ActiveProblemID == id {
			st.ActiveProblemID = st.Problems[max(idx-1, 0)].ID
		}
		return nil
	})
}

func (s *Service) SetActive(ctx context.Context, id string) error {
	return s.update(ctx, func(st *framework.State) error {
		if _, ok := st.Problem(id); !ok {
			return fmt.Errorf("%w: %s", ErrProblemNotFound, id)
		}
		st.ActiveProblemID = id
		return nil
	})
}

// AnswerValidation records the defense for one validation question.
func (s *Service) AnswerValidation(ctx context.Context, id, answer string) error {
	return s.update(ctx, func(st *framework.State) error {
		for i := range st.ValidationQuestions {
			if st.ValidationQuestions[i].ID == id {
				st.ValidationQuestions[i].Answer = answer
				return nil
			}
		}
		return fmt.Errorf("%w: %s", ErrQuestionMissing, id)
	})
}

func (s *Service) DeleteResearch(ctx context.Context, problemID, researchID string) error {
	return s.update(ctx, func(st *framework.State) error {
		p, ok := st.Problem(problemID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProblemNotFound, problemID)
		}
		p.Research = slices.DeleteFunc(p.Research, func(r framework.ResearchItem) bool { return r.ID == researchID })
		return nil
	})
}
