package markdown

import "github.com/esporykhin/ai-product-framework/framework"

// Section markers. Export writes them verbatim and Parse keys off them, so
// any change here changes the document format in both directions.
const (
	DocumentTitle     = "# AI Product Framework Export"
	ContextHeader     = "## 🌍 Project Context"
	StrategyHeader    = "## 🏆 Global Strategy"
	ValidationHeader  = "## 👮‍♂️ Business Validation Q&A"
	HypothesisHeader  = "## 💡 Hypothesis: "
	DefinitionHeader  = "### 1. Definition"
	AssessmentHeader  = "### 2. Assessment & Score"
	ApproachHeader    = "### 3. Approach"
	GTMHeader         = "### 4. GTM Strategy"
	ResearchHeader    = "### 🔬 Research"
	RisksHeader       = "### 5. Risks (Ethics)"
	HorizontalRule    = "---"
	QueryPrefix       = "#### Query:"
	ModelPrefix       = "> Model:"
	SourcesMarker     = "> Sources:"
	SourcePrefix      = "> - ["
	ResultMarker      = "> Result:"
	AnswerPrefix      = "Answer:"
	TotalScoreLabel   = "**Total Score:**"
	ImpactLabel       = "**Business Impact:**"
	FactorsLabel      = "**Detailed Factors:**"
	TechnologyLabel   = "**Technology:**"
	risksHeaderPrefix = "### 5. Risks"
)

// Placeholders written for empty values.
const (
	PlaceholderEmpty      = "N/A"
	PlaceholderGTM        = "Not defined"
	PlaceholderApproach   = "Not selected"
	PlaceholderRisk       = "-"
	PlaceholderNoAnswer   = "(No answer)"
	importedResearchModel = "imported"
	maxSources            = 10
)

// textField identifies a free-text hypothesis field that can span lines.
type textField int

const (
	fieldNone textField = iota
	fieldUserProblem
	fieldCurrentSolution
	fieldBrokenAspects
	fieldSuccessDefinition
	fieldStrategicFocus
	fieldGTMPlan
)

func (f textField) ref(p *framework.ProblemEntry) *string {
	switch f {
	case fieldUserProblem:
		return &p.UserProblem
	case fieldCurrentSolution:
		return &p.CurrentSolution
	case fieldBrokenAspects:
		return &p.BrokenAspects
	case fieldSuccessDefinition:
		return &p.SuccessDefinition
	case fieldStrategicFocus:
		return &p.StrategicFocus
	case fieldGTMPlan:
		return &p.GTMPlan
	}
	return nil
}

type definitionLabel struct {
	field textField
	label string
}

// definitionLabels are the "- **Label:** value" bullets of section 1.
var definitionLabels = []definitionLabel{
	{fieldUserProblem, "Problem"},
	{fieldCurrentSolution, "Current Solution"},
	{fieldBrokenAspects, "Broken Aspects"},
	{fieldSuccessDefinition, "Success Criteria"},
	{fieldStrategicFocus, "Strategic Focus"},
}

type factorLabel struct {
	factor framework.Factor
	label  string
}

// factorLabels are the "- Label: n" bullets of section 2.
var factorLabels = []factorLabel{
	{framework.PatternRecognition, "Pattern Recognition"},
	{framework.RepetitiveTasks, "Repetitive Tasks"},
	{framework.Scalability, "Scalability"},
	{framework.DataAvailability, "Data Availability"},
	{framework.PredictionValue, "Prediction Value"},
	{framework.Personalization, "Personalization"},
	{framework.ContentGeneration, "Content Generation"},
	{framework.DecisionComplexity, "Decision Complexity"},
}

type riskLabel struct {
	risk  framework.Risk
	label string
}

// riskLabels are the "- Label: text" bullets of section 5.
var riskLabels = []riskLabel{
	{framework.Privacy, "Privacy"},
	{framework.Fairness, "Fairness"},
	{framework.Transparency, "Transparency"},
	{framework.Safety, "Safety"},
	{framework.HumanOversight, "Human Oversight"},
}

func definitionBullet(label string) string { return "- **" + label + ":** " }

func plainBullet(label string) string { return "- " + label + ":" }
