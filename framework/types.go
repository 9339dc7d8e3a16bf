package framework

// Source is a cited link attached to a research result. Two sources are the
// same source when their URLs match.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ResearchItem is one answered research query.
type ResearchItem struct {
	ID        string   `json:"id"`
	Query     string   `json:"query"`
	Result    string   `json:"result"`
	Sources   []Source `json:"sources"`
	Model     string   `json:"model"`
	Timestamp int64    `json:"timestamp"` // unix millis
}

// ValidationItem is a stakeholder challenge and the written defense.
type ValidationItem struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ProblemEntry is a single hypothesis under evaluation.
type ProblemEntry struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	UserProblem       string         `json:"userProblem"`
	CurrentSolution   string         `json:"currentSolution"`
	BrokenAspects     string         `json:"brokenAspects"`
	SuccessDefinition string         `json:"successDefinition"`
	StrategicFocus    string         `json:"strategicFocus"`
	Step2             Scorecard      `json:"step2"`
	BusinessImpact    int            `json:"businessImpact"`
	SelectedApproach  *string        `json:"selectedApproach"`
	GTMPlan           string         `json:"gtmPlan"`
	Research          []ResearchItem `json:"research"`
	Step6             Ethics         `json:"step6"`
}

// Approach returns the selected approach id or "" when nothing is selected.
func (p ProblemEntry) Approach() string {
	if p.SelectedApproach == nil {
		return ""
	}
	return *p.SelectedApproach
}

// State is the root aggregate persisted by the workbench.
type State struct {
	Problems            []ProblemEntry   `json:"problems"`
	ProjectContext      string           `json:"projectContext"`
	FinalStrategyText   string           `json:"finalStrategyText"`
	ValidationQuestions []ValidationItem `json:"validationQuestions"`
	ActiveProblemID     string           `json:"activeProblemId"`
	Chats               []ChatSession    `json:"chats"`
	ActiveChatID        string           `json:"activeChatId"`
}

// Problem returns the hypothesis with the given id.
func (s *State) Problem(id string) (*ProblemEntry, bool) {
	for i := range s.Problems {
		if s.Problems[i].ID == id {
			return &s.Problems[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy so callers can hand state out without sharing
// nested slices.
func (s State) Clone() State {
	out := s
	out.Problems = make([]ProblemEntry, len(s.Problems))
	for i, p := range s.Problems {
		if p.SelectedApproach != nil {
			a := *p.SelectedApproach
			p.SelectedApproach = &a
		}
		research := make([]ResearchItem, len(p.Research))
		for j, r := range p.Research {
			r.Sources = cloneSlice(r.Sources)
			research[j] = r
		}
		p.Research = research
		out.Problems[i] = p
	}
	out.ValidationQuestions = cloneSlice(s.ValidationQuestions)
	out.Chats = cloneChats(s.Chats)
	return out
}

// cloneSlice copies s, keeping nil and empty distinct.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
