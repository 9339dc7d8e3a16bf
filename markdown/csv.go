package markdown

import (
	"strconv"
	"strings"

	"github.com/esporykhin/ai-product-framework/framework"
)

var csvHeaders = []string{
	"Title",
	"Problem",
	"Current Solution",
	"Strategic Focus",
	"AI Score",
	"Business Impact",
	"Approach",
	"GTM Plan",
	"Risks",
}

// ExportCSV writes one semicolon-separated row per hypothesis. Every cell
// is quoted and the text starts with a BOM so spreadsheet tools pick UTF-8.
func ExportCSV(problems []framework.ProblemEntry) string {
	var sb strings.Builder
	sb.WriteString(BOM)
	sb.WriteString(strings.Join(csvHeaders, ";") + "\n")

	for _, p := range problems {
		row := []string{
			p.Title,
			p.UserProblem,
			p.CurrentSolution,
			p.StrategicFocus,
			intCell(framework.Score(p)),
			intCell(p.BusinessImpact),
			p.Approach(),
			p.GTMPlan,
			"Privacy: " + p.Step6.Privacy + " | Safety: " + p.Step6.Safety,
		}
		for i, cell := range row {
			row[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
		}
		sb.WriteString(strings.Join(row, ";") + "\n")
	}
	return sb.String()
}

func intCell(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
