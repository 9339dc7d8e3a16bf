package framework

// Factor names one of the eight scorecard criteria.
type Factor int

const (
	PatternRecognition Factor = iota
	RepetitiveTasks
	Scalability
	DataAvailability
	PredictionValue
	Personalization
	ContentGeneration
	DecisionComplexity
)

// Factors lists every factor in display order.
var Factors = []Factor{
	PatternRecognition,
	RepetitiveTasks,
	Scalability,
	DataAvailability,
	PredictionValue,
	Personalization,
	ContentGeneration,
	DecisionComplexity,
}

const (
	MinFactor = 1
	MaxFactor = 5
	MaxScore  = MaxFactor * 8
)

// Scorecard is the 8-factor AI applicability assessment (step 2).
type Scorecard struct {
	PatternRecognition int `json:"patternRecognition"`
	RepetitiveTasks    int `json:"repetitiveTasks"`
	Scalability        int `json:"scalability"`
	DataAvailability   int `json:"dataAvailability"`
	PredictionValue    int `json:"predictionValue"`
	Personalization    int `json:"personalization"`
	ContentGeneration  int `json:"contentGeneration"`
	DecisionComplexity int `json:"decisionComplexity"`
}

// DefaultScorecard has every factor at the minimum.
func DefaultScorecard() Scorecard {
	var s Scorecard
	s.Backfill()
	return s
}

func (s *Scorecard) ref(f Factor) *int {
	switch f {
	case PatternRecognition:
		return &s.PatternRecognition
	case RepetitiveTasks:
		return &s.RepetitiveTasks
	case Scalability:
		return &s.Scalability
	case DataAvailability:
		return &s.DataAvailability
	case PredictionValue:
		return &s.PredictionValue
	case Personalization:
		return &s.Personalization
	case ContentGeneration:
		return &s.ContentGeneration
	case DecisionComplexity:
		return &s.DecisionComplexity
	}
	return nil
}

func (s Scorecard) Get(f Factor) int {
	if p := s.ref(f); p != nil {
		return *p
	}
	return 0
}

func (s *Scorecard) Set(f Factor, v int) {
	if p := s.ref(f); p != nil {
		*p = v
	}
}

// Total is the AI Score: the plain sum of all factors.
func (s Scorecard) Total() int {
	total := 0
	for _, f := range Factors {
		total += s.Get(f)
	}
	return total
}

// Backfill sets unset factors to the minimum.
func (s *Scorecard) Backfill() {
	for _, f := range Factors {
		if s.Get(f) == 0 {
			s.Set(f, MinFactor)
		}
	}
}

// Risk names one of the ethics narratives (step 6).
type Risk int

const (
	Privacy Risk = iota
	Fairness
	Transparency
	Safety
	HumanOversight
)

// Risks lists the ethics fields in export order.
var Risks = []Risk{Privacy, Fairness, Transparency, Safety, HumanOversight}

// Ethics holds the five free-text risk narratives.
type Ethics struct {
	Fairness       string `json:"fairness"`
	Transparency   string `json:"transparency"`
	Privacy        string `json:"privacy"`
	Safety         string `json:"safety"`
	HumanOversight string `json:"humanOversight"`
}

func (e *Ethics) ref(r Risk) *string {
	switch r {
	case Privacy:
		return &e.Privacy
	case Fairness:
		return &e.Fairness
	case Transparency:
		return &e.Transparency
	case Safety:
		return &e.Safety
	case HumanOversight:
		return &e.HumanOversight
	}
	return nil
}

func (e Ethics) Get(r Risk) string {
	if p := e.ref(r); p != nil {
		return *p
	}
	return ""
}

func (e *Ethics) Set(r Risk, v string) {
	if p := e.ref(r); p != nil {
		*p = v
	}
}
