package markdown

import (
	"iter"
	"regexp"

	"github.com/esporykhin/ai-product-framework/framework"
)

// Link is one inline Markdown link.
type Link struct {
	Title string
	URL   string
}

var (
	httpLinkRe = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)]+)\)`)
	anyLinkRe  = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Links yields every non-overlapping [title](http(s)://url) link in text,
// left to right. The sequence holds no cursor between calls, so ranging over
// it again starts from the beginning.
func Links(text string) iter.Seq[Link] {
	return func(yield func(Link) bool) {
		rest := text
		for {
			m := httpLinkRe.FindStringSubmatchIndex(rest)
			if m == nil {
				return
			}
			if !yield(Link{Title: rest[m[2]:m[3]], URL: rest[m[4]:m[5]]}) {
				return
			}
			rest = rest[m[1]:]
		}
	}
}

// ExtractSources collects the cited links of a research answer. Links are
// deduplicated by URL (a later title replaces an earlier one in place) and at
// most ten are kept.
func ExtractSources(text string) []framework.Source {
	sources := []framework.Source{}
	index := make(map[string]int)
	for l := range Links(text) {
		if i, ok := index[l.URL]; ok {
			sources[i].Title = l.Title
			continue
		}
		index[l.URL] = len(sources)
		sources = append(sources, framework.Source{Title: l.Title, URL: l.URL})
	}
	if len(sources) > maxSources {
		sources = sources[:maxSources]
	}
	return sources
}

// parseSourceLine reads a "> - [title](url)" line of an exported research
// item.
func parseSourceLine(line string) (framework.Source, bool) {
	m := anyLinkRe.FindStringSubmatch(line)
	if len(m) < 3 {
		return framework.Source{}, false
	}
	return framework.Source{Title: m[1], URL: m[2]}, true
}
