package markdown

import (
	"fmt"
	"strings"

	"github.com/esporykhin/ai-product-framework/framework"
)

// BOM is prepended to exports written out as downloadable files.
const BOM = "\uFEFF"

// Export renders the whole state as a single Markdown document. It never
// fails: empty values are written as placeholders so every hypothesis
// section keeps the same shape.
func Export(state framework.State) string {
	var sb strings.Builder
	sb.WriteString(DocumentTitle + "\n\n")

	if state.ProjectContext != "" {
		writeSection(&sb, ContextHeader, strings.TrimSpace(state.ProjectContext))
	}
	if state.FinalStrategyText != "" {
		writeSection(&sb, StrategyHeader, strings.TrimSpace(state.FinalStrategyText))
	}
	if len(state.ValidationQuestions) > 0 {
		sb.WriteString(ValidationHeader + "\n")
		for i, q := range state.ValidationQuestions {
			fmt.Fprintf(&sb, "**Q%d: %s**\n", i+1, q.Question)
			sb.WriteString(AnswerPrefix + " " + orDefault(q.Answer, PlaceholderNoAnswer) + "\n\n")
		}
		sb.WriteString(HorizontalRule + "\n\n")
	}

	for _, p := range state.Problems {
		writeProblem(&sb, p)
	}
	return sb.String()
}

// ExportFile is Export prefixed with a byte-order mark.
func ExportFile(state framework.State) []byte {
	return []byte(BOM + Export(state))
}

func writeSection(sb *strings.Builder, header, body string) {
	sb.WriteString(header + "\n")
	sb.WriteString(body + "\n\n")
	sb.WriteString(HorizontalRule + "\n\n")
}

func writeProblem(sb *strings.Builder, p framework.ProblemEntry) {
	sb.WriteString(HypothesisHeader + p.Title + "\n")

	sb.WriteString(DefinitionHeader + "\n")
	for i, d := range definitionLabels {
		sb.WriteString(definitionBullet(d.label) + orDefault(*d.field.ref(&p), PlaceholderEmpty) + "\n")
		if i == len(definitionLabels)-1 {
			sb.WriteString("\n")
		}
	}

	impact := p.BusinessImpact
	if impact == 0 {
		impact = framework.DefaultBusinessImpact
	}
	sb.WriteString(AssessmentHeader + "\n")
	fmt.Fprintf(sb, "%s %d/%d\n", TotalScoreLabel, framework.Score(p), framework.MaxScore)
	fmt.Fprintf(sb, "%s %d\n\n", ImpactLabel, impact)
	sb.WriteString(FactorsLabel + "\n")
	for _, f := range factorLabels {
		fmt.Fprintf(sb, "%s %d\n", plainBullet(f.label), p.Step2.Get(f.factor))
	}
	sb.WriteString("\n")

	sb.WriteString(ApproachHeader + "\n")
	sb.WriteString("- " + TechnologyLabel + " " + orDefault(p.Approach(), PlaceholderApproach) + "\n\n")

	sb.WriteString(GTMHeader + "\n")
	sb.WriteString(orDefault(p.GTMPlan, PlaceholderGTM) + "\n\n")

	if len(p.Research) > 0 {
		sb.WriteString(ResearchHeader + "\n")
		for _, r := range p.Research {
			sb.WriteString(QueryPrefix + " " + r.Query + "\n")
			sb.WriteString(ModelPrefix + " " + r.Model + "\n")
			if len(r.Sources) > 0 {
				sb.WriteString(SourcesMarker + "\n")
				for _, s := range r.Sources {
					fmt.Fprintf(sb, "> - [%s](%s)\n", s.Title, s.URL)
				}
			}
			sb.WriteString(ResultMarker + "\n\n" + r.Result + "\n\n")
		}
	}

	sb.WriteString(RisksHeader + "\n")
	for _, r := range riskLabels {
		sb.WriteString(plainBullet(r.label) + " " + orDefault(p.Step6.Get(r.risk), PlaceholderRisk) + "\n")
	}
	sb.WriteString("\n" + HorizontalRule + "\n\n")
}

func orDefault(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}
