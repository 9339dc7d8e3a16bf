package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/esporykhin/ai-product-framework/framework"
)

const pristineExport = `# AI Product Framework Export

## 💡 Hypothesis: Гипотеза 1
### 1. Definition
- **Problem:** N/A
- **Current Solution:** N/A
- **Broken Aspects:** N/A
- **Success Criteria:** N/A
- **Strategic Focus:** N/A

### 2. Assessment & Score
**Total Score:** 8/40
**Business Impact:** 5

**Detailed Factors:**
- Pattern Recognition: 1
- Repetitive Tasks: 1
- Scalability: 1
- Data Availability: 1
- Prediction Value: 1
- Personalization: 1
- Content Generation: 1
- Decision Complexity: 1

### 3. Approach
- **Technology:** Not selected

### 4. GTM Strategy
Not defined

### 5. Risks (Ethics)
- Privacy: -
- Fairness: -
- Transparency: -
- Safety: -
- Human Oversight: -

---

`

func TestExportPristineLayout(t *testing.T) {
	assert.Equal(t, pristineExport, Export(framework.DefaultState()))
}

func scenarioState() framework.State {
	p := framework.NewProblem(0)
	p.UserProblem = "Низкая конверсия"
	for _, f := range framework.Factors {
		p.Step2.Set(f, 3)
	}
	p.BusinessImpact = 7
	p.Research = []framework.ResearchItem{{
		ID:      "r1",
		Query:   "Конкуренты",
		Model:   "x",
		Sources: []framework.Source{{Title: "A", URL: "http://a.com"}},
		Result:  "Текст",
	}}
	return framework.State{Problems: []framework.ProblemEntry{p}, ActiveProblemID: p.ID}
}

func TestExportScenario(t *testing.T) {
	md := Export(scenarioState())

	assert.Contains(t, md, "**Total Score:** 24/40")
	assert.Contains(t, md, "**Business Impact:** 7")
	assert.Contains(t, md, "#### Query: Конкуренты")
	assert.Contains(t, md, "> - [A](http://a.com)")
	assert.Contains(t, md, "> Model: x\n> Sources:\n")
	assert.Contains(t, md, "> Result:\n\nТекст\n\n### 5. Risks (Ethics)")

	doc := Parse(md)
	require.Len(t, doc.Problems, 1)
	p := doc.Problems[0]
	assert.Equal(t, "Гипотеза 1", p.Title)
	assert.Equal(t, "Низкая конверсия", p.UserProblem)
	assert.Equal(t, 24, framework.Score(p))
	for _, f := range framework.Factors {
		assert.Equal(t, 3, p.Step2.Get(f))
	}
	assert.Equal(t, 7, p.BusinessImpact)
	require.Len(t, p.Research, 1)
	r := p.Research[0]
	assert.Equal(t, "Конкуренты", r.Query)
	assert.Equal(t, "x", r.Model)
	assert.Equal(t, []framework.Source{{Title: "A", URL: "http://a.com"}}, r.Sources)
	assert.Equal(t, "Текст", r.Result)
}

func TestExportOptionalSections(t *testing.T) {
	s := framework.DefaultState()
	s.ProjectContext = "  B2B SaaS for clinics \n"
	s.FinalStrategyText = "Start with triage."
	s.ValidationQuestions = []framework.ValidationItem{
		{ID: "1", Question: "Who pays?", Answer: "Clinics"},
		{ID: "2", Question: "Why now?"},
	}
	md := Export(s)

	assert.True(t, strings.HasPrefix(md, DocumentTitle+"\n\n"+ContextHeader+"\nB2B SaaS for clinics\n\n---\n\n"+StrategyHeader))
	assert.Contains(t, md, "## 🏆 Global Strategy\nStart with triage.\n\n---\n\n")
	assert.Contains(t, md, "**Q1: Who pays?**\nAnswer: Clinics\n\n")
	assert.Contains(t, md, "**Q2: Why now?**\nAnswer: (No answer)\n\n---\n\n## 💡 Hypothesis")

	ctx := strings.Index(md, ContextHeader)
	strategy := strings.Index(md, StrategyHeader)
	validation := strings.Index(md, ValidationHeader)
	hypothesis := strings.Index(md, HypothesisHeader)
	assert.True(t, ctx < strategy && strategy < validation && validation < hypothesis)
}

func TestExportOmitsEmptySections(t *testing.T) {
	md := Export(framework.DefaultState())
	assert.NotContains(t, md, ContextHeader)
	assert.NotContains(t, md, StrategyHeader)
	assert.NotContains(t, md, ValidationHeader)
	assert.NotContains(t, md, ResearchHeader)
}

func TestExportZeroImpactFallsBack(t *testing.T) {
	s := framework.DefaultState()
	s.Problems[0].BusinessImpact = 0
	assert.Contains(t, Export(s), "**Business Impact:** 5\n")
}

func TestExportFileHasBOM(t *testing.T) {
	data := ExportFile(framework.DefaultState())
	assert.True(t, strings.HasPrefix(string(data), BOM+"# AI Product Framework Export"))

	doc := Parse(string(data))
	assert.Len(t, doc.Problems, 1)
}

func TestExportCSV(t *testing.T) {
	approach := "nlu"
	p := framework.NewProblem(0)
	p.Title = `Bot "Max"`
	p.UserProblem = "Slow support"
	p.SelectedApproach = &approach
	p.Step6.Privacy = "PII"
	p.Step6.Safety = "low"
	blank := framework.ProblemEntry{Title: "Empty"}

	csv := ExportCSV([]framework.ProblemEntry{p, blank})
	lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, BOM+"Title;Problem;Current Solution;Strategic Focus;AI Score;Business Impact;Approach;GTM Plan;Risks", lines[0])
	assert.Equal(t, `"Bot ""Max""";"Slow support";"";"";"8";"5";"nlu";"";"Privacy: PII | Safety: low"`, lines[1])
	assert.Equal(t, `"Empty";"";"";"";"";"";"";"";"Privacy:  | Safety: "`, lines[2])
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(Export(scenarioState()))
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>AI Product Framework Export</h1>")
	assert.Contains(t, html, "<h2>💡 Hypothesis: Гипотеза 1</h2>")
	assert.Contains(t, html, "<strong>Total Score:</strong> 24/40")
	assert.Contains(t, html, `<a href="http://a.com">A</a>`)
}
