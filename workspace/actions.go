package workspace

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/framework"
)

// The AI actions snapshot the state under the lock, call the model without
// it and write the result back under the lock. A hypothesis deleted while
// the model was working yields ErrProblemNotFound.

func (s *Service) snapshotProblem(id string) (framework.ProblemEntry, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.state.ActiveProblemID
	}
	p, ok := s.state.Problem(id)
	if !ok {
		return framework.ProblemEntry{}, "", fmt.Errorf("%w: %s", ErrProblemNotFound, id)
	}
	return *p, s.state.ProjectContext, nil
}

func (s *Service) observe(action string, start time.Time, err error) {
	s.metrics.ObserveLLM(action, err, time.Since(start))
	if err != nil {
		s.log.Warn("ai action failed", zap.String("action", action), zap.Error(err))
		return
	}
	s.log.Info("ai action done", zap.String("action", action), zap.Duration("took", time.Since(start)))
}

// SynthesizeFocus drafts and stores the strategic focus of a hypothesis. An
// empty id means the active one.
func (s *Service) SynthesizeFocus(ctx context.Context, id string) (string, error) {
	if s.agent == nil {
		return "", ErrNoAgent
	}
	p, projectContext, err := s.snapshotProblem(id)
	if err != nil {
		return "", err
	}
	start := time.Now()
	text, err := s.agent.StrategicFocus(ctx, p, projectContext)
	s.observe("focus", start, err)
	if err != nil {
		return "", err
	}
	return text, s.setProblemField(ctx, p.ID, func(cur *framework.ProblemEntry) { cur.StrategicFocus = text })
}

// GenerateGTM drafts and stores the GTM plan of a hypothesis.
func (s *Service) GenerateGTM(ctx context.Context, id string) (string, error) {
	if s.agent == nil {
		return "", ErrNoAgent
	}
	p, projectContext, err := s.snapshotProblem(id)
	if err != nil {
		return "", err
	}
	start := time.Now()
	text, err := s.agent.GTMPlan(ctx, p, projectContext)
	s.observe("gtm", start, err)
	if err != nil {
		return "", err
	}
	return text, s.setProblemField(ctx, p.ID, func(cur *framework.ProblemEntry) { cur.GTMPlan = text })
}

// Research runs a query for a hypothesis; the newest item goes first.
func (s *Service) Research(ctx context.Context, id, query, model string) (framework.ResearchItem, error) {
	if s.agent == nil {
		return framework.ResearchItem{}, ErrNoAgent
	}
	p, projectContext, err := s.snapshotProblem(id)
	if err != nil {
		return framework.ResearchItem{}, err
	}
	start := time.Now()
	item, err := s.agent.Research(ctx, query, model, projectContext)
	s.observe("research", start, err)
	if err != nil {
		return framework.ResearchItem{}, err
	}
	err = s.setProblemField(ctx, p.ID, func(cur *framework.ProblemEntry) {
		cur.Research = append([]framework.ResearchItem{item}, cur.Research...)
	})
	return item, err
}

func (s *Service) setProblemField(ctx context.Context, id string, fn func(*framework.ProblemEntry)) error {
	return s.update(ctx, func(st *framework.State) error {
		cur, ok := st.Problem(id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrProblemNotFound, id)
		}
		fn(cur)
		return nil
	})
}

// GenerateStrategy drafts the global strategy from all hypotheses.
func (s *Service) GenerateStrategy(ctx context.Context) (string, error) {
	if s.agent == nil {
		return "", ErrNoAgent
	}
	start := time.Now()
	text, err := s.agent.GlobalStrategy(ctx, s.State())
	s.observe("strategy", start, err)
	if err != nil {
		return "", err
	}
	return text, s.update(ctx, func(st *framework.State) error {
		st.FinalStrategyText = text
		return nil
	})
}

// GenerateValidation replaces the validation questions with fresh ones.
func (s *Service) GenerateValidation(ctx context.Context) ([]framework.ValidationItem, error) {
	if s.agent == nil {
		return nil, ErrNoAgent
	}
	start := time.Now()
	items, err := s.agent.ValidationQuestions(ctx, s.State())
	s.observe("validation", start, err)
	if err != nil {
		return nil, err
	}
	return items, s.update(ctx, func(st *framework.State) error {
		st.ValidationQuestions = items
		return nil
	})
}
