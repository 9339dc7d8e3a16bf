package markdown

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/esporykhin/ai-product-framework/framework"
)

// Document is everything Parse recovered from a Markdown text. A nil
// pointer or nil slice means the section was not found; a non-nil empty
// value means it was found but had no content.
type Document struct {
	Problems       []framework.ProblemEntry
	ProjectContext *string
	FinalStrategy  *string
	Validation     []framework.ValidationItem
}

// Importer turns Markdown back into framework values. The zero value is
// ready to use.
type Importer struct {
	NewID func() string
	Now   func() time.Time
}

// Parse reads md with a default Importer.
func Parse(md string) *Document {
	return (&Importer{}).Parse(md)
}

// Parse extracts whatever it recognizes from md and skips the rest. It does
// not fail on malformed input; a text without hypothesis headers yields an
// empty Problems list.
func (im *Importer) Parse(md string) *Document {
	lines := splitLines(md)
	doc := &Document{Problems: []framework.ProblemEntry{}}

	if body, ok := findSection(lines, "Context"); ok {
		doc.ProjectContext = &body
	}
	if body, ok := findSection(lines, "Strategy"); ok {
		doc.FinalStrategy = &body
	}
	if body, ok := findSection(lines, "Business Validation Q&A"); ok {
		doc.Validation = im.parseValidation(body)
	}

	p := &parser{im: im}
	for _, line := range lines {
		p.feed(line)
	}
	p.commit()
	doc.Problems = append(doc.Problems, p.problems...)
	return doc
}

func (im *Importer) newID() string {
	if im.NewID != nil {
		return im.NewID()
	}
	return framework.NewID()
}

func (im *Importer) now() time.Time {
	if im.Now != nil {
		return im.Now()
	}
	return time.Now()
}

func splitLines(md string) []string {
	md = strings.TrimPrefix(md, BOM)
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

var (
	hypothesisRe = regexp.MustCompile(`(?i)^##\s+(?:💡\s*)?Hypothesis:?\s*(.*)$`)
	impactRe     = regexp.MustCompile(`\*\*(?:Business )?Impact:\*\*`)
	questionRe   = regexp.MustCompile(`^\*\*Q\d+:\s*`)
	leadingIntRe = regexp.MustCompile(`^[+-]?\d+`)
	digitsRe     = regexp.MustCompile(`\d+`)
	definitionRe = compileDefinitionPatterns()
)

func compileDefinitionPatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(definitionLabels))
	for i, d := range definitionLabels {
		out[i] = regexp.MustCompile(`^-\s*\*\*` + regexp.QuoteMeta(d.label) + `:\*\*(.*)$`)
	}
	return out
}

func hypothesisTitle(line string) (string, bool) {
	m := hypothesisRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// findSection locates the first level-2 header mentioning keyword and
// returns the text up to the next horizontal rule. Headings inside the body
// are kept; only a hypothesis header or the end of the document also ends it.
func findSection(lines []string, keyword string) (string, bool) {
	keyword = strings.ToLower(keyword)
	for i, line := range lines {
		if !strings.HasPrefix(line, "## ") || hypothesisRe.MatchString(line) {
			continue
		}
		if !strings.Contains(strings.ToLower(line), keyword) {
			continue
		}
		var body []string
		for _, l := range lines[i+1:] {
			if strings.HasPrefix(l, "--") || hypothesisRe.MatchString(l) {
				break
			}
			body = append(body, l)
		}
		return strings.TrimSpace(strings.Join(body, "\n")), true
	}
	return "", false
}

func (im *Importer) parseValidation(body string) []framework.ValidationItem {
	items := []framework.ValidationItem{}
	var (
		question string
		answer   []string
		answered bool
	)
	flush := func() {
		if answered {
			a := strings.TrimSpace(strings.Join(answer, "\n"))
			if a == PlaceholderNoAnswer {
				a = ""
			}
			items = append(items, framework.ValidationItem{ID: im.newID(), Question: question, Answer: a})
		}
		question, answer, answered = "", nil, false
	}
	for _, line := range strings.Split(body, "\n") {
		if loc := questionRe.FindStringIndex(line); loc != nil {
			flush()
			q := strings.TrimSuffix(strings.TrimSpace(line[loc[1]:]), "**")
			question = strings.TrimSpace(q)
			continue
		}
		if !answered && question != "" && strings.HasPrefix(line, AnswerPrefix) {
			answered = true
			answer = []string{strings.TrimPrefix(line, AnswerPrefix)}
			continue
		}
		if answered {
			answer = append(answer, line)
		}
	}
	flush()
	return items
}

type modeKind int

const (
	modeIdle modeKind = iota
	modeCapturing
	modeResearch
)

type researchStage int

const (
	stageAwaitQuery researchStage = iota // inside the block, before the first query
	stageHeader                          // after "#### Query:", before "> Result:"
	stageResult                          // raw result text
)

// parseMode is the scanner state: idle, capturing one free-text field, or
// walking a research block. Only the member matching kind is meaningful.
type parseMode struct {
	kind  modeKind
	field textField
	stage researchStage
}

type parser struct {
	im       *Importer
	mode     parseMode
	cur      *framework.ProblemEntry
	capture  []string
	item     *framework.ResearchItem
	result   []string
	problems []framework.ProblemEntry
}

func (p *parser) feed(line string) {
	if title, ok := hypothesisTitle(line); ok {
		p.commit()
		p.begin(title)
		return
	}
	if p.cur == nil {
		return
	}
	if p.mode.kind == modeResearch && p.research(line) {
		return
	}
	p.body(line)
}

func (p *parser) begin(title string) {
	p.cur = &framework.ProblemEntry{
		ID:             p.im.newID(),
		Title:          title,
		Step2:          framework.DefaultScorecard(),
		BusinessImpact: framework.DefaultBusinessImpact,
		Research:       []framework.ResearchItem{},
	}
	p.mode = parseMode{}
}

// setMode switches state, writing out a field that was being captured.
func (p *parser) setMode(m parseMode) {
	if p.mode.kind == modeCapturing && p.cur != nil {
		if ref := p.mode.field.ref(p.cur); ref != nil {
			*ref = strings.Join(p.capture, "\n")
		}
		p.capture = nil
	}
	p.mode = m
}

// research handles a line inside the research block. It reports false when
// the line has to go through normal field handling as well.
func (p *parser) research(line string) bool {
	switch {
	case strings.HasPrefix(line, risksHeaderPrefix):
		p.finishItem()
		p.setMode(parseMode{kind: modeIdle})
		return false
	case strings.HasPrefix(line, ResearchHeader):
		return true
	case strings.HasPrefix(line, QueryPrefix):
		p.finishItem()
		p.item = &framework.ResearchItem{
			ID:        p.im.newID(),
			Query:     strings.TrimSpace(strings.TrimPrefix(line, QueryPrefix)),
			Sources:   []framework.Source{},
			Model:     importedResearchModel,
			Timestamp: p.im.now().UnixMilli(),
		}
		p.mode.stage = stageHeader
		return true
	}
	if p.item == nil {
		return true
	}

	if p.mode.stage == stageResult {
		if !strings.HasPrefix(line, "### ") {
			p.result = append(p.result, line)
		}
		return true
	}

	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, ModelPrefix):
		p.item.Model = strings.TrimSpace(strings.TrimPrefix(line, ModelPrefix))
	case strings.HasPrefix(line, SourcesMarker):
	case strings.HasPrefix(trimmed, SourcePrefix):
		if src, ok := parseSourceLine(trimmed); ok {
			p.item.Sources = append(p.item.Sources, src)
		}
	case strings.HasPrefix(line, ResultMarker):
		p.mode.stage = stageResult
	case trimmed == "":
	default:
		p.result = append(p.result, line)
	}
	return true
}

func (p *parser) finishItem() {
	if p.item == nil {
		return
	}
	p.item.Result = strings.TrimSpace(strings.Join(p.result, "\n"))
	p.cur.Research = append(p.cur.Research, *p.item)
	p.item, p.result = nil, nil
}

func (p *parser) body(line string) {
	for i, re := range definitionRe {
		if m := re.FindStringSubmatch(line); m != nil {
			p.setMode(parseMode{kind: modeCapturing, field: definitionLabels[i].field})
			p.capture = []string{strings.TrimSpace(m[1])}
			return
		}
	}
	if strings.HasPrefix(line, ResearchHeader) {
		p.setMode(parseMode{kind: modeResearch, stage: stageAwaitQuery})
		return
	}
	if strings.HasPrefix(line, GTMHeader) {
		p.setMode(parseMode{kind: modeCapturing, field: fieldGTMPlan})
		return
	}

	if isStopLine(line) {
		p.setMode(parseMode{kind: modeIdle})
	}
	if p.mode.kind == modeCapturing {
		p.capture = append(p.capture, strings.TrimRight(line, " \t"))
		return
	}
	p.assign(line)
}

// isStopLine reports whether line ends a multi-line field.
func isStopLine(line string) bool {
	if strings.HasPrefix(line, "###") || impactRe.MatchString(line) || strings.Contains(line, TechnologyLabel) {
		return true
	}
	trimmed := strings.TrimSpace(line)
	if _, _, ok := matchFactor(trimmed); ok {
		return true
	}
	_, _, ok := matchRisk(trimmed)
	return ok
}

func matchFactor(trimmed string) (framework.Factor, string, bool) {
	for _, f := range factorLabels {
		if rest, ok := strings.CutPrefix(trimmed, plainBullet(f.label)); ok {
			return f.factor, rest, true
		}
	}
	return 0, "", false
}

func matchRisk(trimmed string) (framework.Risk, string, bool) {
	for _, r := range riskLabels {
		if rest, ok := strings.CutPrefix(trimmed, plainBullet(r.label)); ok {
			return r.risk, rest, true
		}
	}
	return 0, "", false
}

// assign handles the single-line fields. Values that do not parse leave the
// field at its default.
func (p *parser) assign(line string) {
	trimmed := strings.TrimSpace(line)

	if loc := impactRe.FindStringIndex(line); loc != nil {
		if n, err := strconv.Atoi(digitsRe.FindString(line[loc[1]:])); err == nil {
			p.cur.BusinessImpact = n
		}
		return
	}
	if f, rest, ok := matchFactor(trimmed); ok {
		if n, err := strconv.Atoi(leadingIntRe.FindString(strings.TrimSpace(rest))); err == nil &&
			n >= framework.MinFactor && n <= framework.MaxFactor {
			p.cur.Step2.Set(f, n)
		}
		return
	}
	if r, rest, ok := matchRisk(trimmed); ok {
		p.cur.Step6.Set(r, strings.TrimSpace(rest))
		return
	}
	if _, tech, ok := strings.Cut(line, TechnologyLabel); ok {
		tech = strings.TrimSpace(tech)
		if tech == "" || tech == PlaceholderApproach {
			p.cur.SelectedApproach = nil
			return
		}
		id := framework.MatchApproach(tech)
		p.cur.SelectedApproach = &id
	}
}

// commit finalizes the current hypothesis and appends it to the output.
func (p *parser) commit() {
	if p.cur == nil {
		return
	}
	p.finishItem()
	p.setMode(parseMode{kind: modeIdle})

	cur := p.cur
	for _, d := range definitionLabels {
		ref := d.field.ref(cur)
		*ref = decodePlaceholder(*ref, PlaceholderEmpty)
	}
	cur.GTMPlan = decodePlaceholder(cur.GTMPlan, PlaceholderGTM)
	for _, r := range riskLabels {
		cur.Step6.Set(r.risk, decodePlaceholder(cur.Step6.Get(r.risk), PlaceholderRisk))
	}
	if cur.Title == "" {
		cur.Title = framework.ImportedTitle
	}

	p.problems = append(p.problems, *cur)
	p.cur = nil
}

func decodePlaceholder(v, placeholder string) string {
	v = strings.TrimSpace(v)
	if v == placeholder {
		return ""
	}
	return v
}
