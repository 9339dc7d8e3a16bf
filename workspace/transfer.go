package workspace

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/esporykhin/ai-product-framework/framework"
	"github.com/esporykhin/ai-product-framework/markdown"
)

// ImportResult summarizes an applied import.
type ImportResult struct {
	Imported        int    `json:"imported"`
	Replaced        bool   `json:"replaced"`
	ActiveProblemID string `json:"activeProblemId"`
}

// Merge folds an imported document into current. Hypotheses are appended,
// or replace the untouched default hypothesis. Whole-document sections only
// overwrite when the import carried a non-empty value. The first imported
// hypothesis becomes active.
func Merge(current framework.State, doc *markdown.Document) framework.State {
	out := current.Clone()
	if current.IsPristine() {
		out.Problems = slices.Clone(doc.Problems)
	} else {
		out.Problems = append(out.Problems, doc.Problems...)
	}
	if doc.ProjectContext != nil && *doc.ProjectContext != "" {
		out.ProjectContext = *doc.ProjectContext
	}
	if doc.FinalStrategy != nil && *doc.FinalStrategy != "" {
		out.FinalStrategyText = *doc.FinalStrategy
	}
	if len(doc.Validation) > 0 {
		out.ValidationQuestions = doc.Validation
	}
	if len(doc.Problems) > 0 {
		out.ActiveProblemID = doc.Problems[0].ID
	}
	framework.Normalize(&out)
	return out
}

// parse runs the importer; a panic inside it is reported as ErrImportFailed.
func (s *Service) parse(md string) (doc *markdown.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrImportFailed, r)
		}
	}()
	return s.importer.Parse(md), nil
}

// ImportMarkdown parses md and merges it into the workbench.
func (s *Service) ImportMarkdown(ctx context.Context, md string) (ImportResult, error) {
	doc, err := s.parse(md)
	if err != nil {
		s.metrics.ObserveImport("failed")
		s.log.Error("markdown import failed", zap.Error(err))
		return ImportResult{}, err
	}
	if len(doc.Problems) == 0 {
		s.metrics.ObserveImport("no_hypotheses")
		return ImportResult{}, ErrNoHypotheses
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := s.state.IsPristine()
	next := Merge(s.state, doc)
	if err := s.commit(ctx, next); err != nil {
		s.metrics.ObserveImport("failed")
		return ImportResult{}, err
	}
	s.metrics.ObserveImport("ok")
	s.log.Info("markdown imported",
		zap.Int("hypotheses", len(doc.Problems)),
		zap.Bool("replaced", replaced),
		zap.Bool("context", doc.ProjectContext != nil),
		zap.Bool("strategy", doc.FinalStrategy != nil),
		zap.Int("validation", len(doc.Validation)),
	)
	return ImportResult{Imported: len(doc.Problems), Replaced: replaced, ActiveProblemID: next.ActiveProblemID}, nil
}

// ExportMarkdown renders the current state.
func (s *Service) ExportMarkdown() string {
	return markdown.Export(s.State())
}

// ExportFile is ExportMarkdown with a byte-order mark, for downloads.
func (s *Service) ExportFile() []byte {
	return markdown.ExportFile(s.State())
}

func (s *Service) ExportCSV() string {
	return markdown.ExportCSV(s.State().Problems)
}

// ExportHTML renders the Markdown export as an HTML fragment.
func (s *Service) ExportHTML() (string, error) {
	return markdown.RenderHTML(s.ExportMarkdown())
}
