package generator

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrEmptyOutput is returned when the model answered with nothing usable.
var ErrEmptyOutput = errors.New("model returned empty output")

// PostProcess trims the model answer and rejects an empty one.
func PostProcess(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyOutput
	}
	return text, nil
}

var questionPrefixRe = regexp.MustCompile(`^[-\d.]+\s*`)

// SplitQuestions turns a one-question-per-line answer into questions. Lines
// of five runes or fewer are noise; list markers and numbering are stripped.
func SplitQuestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if utf8.RuneCountInString(strings.TrimSpace(line)) <= 5 {
			continue
		}
		out = append(out, questionPrefixRe.ReplaceAllString(line, ""))
	}
	return out
}

// ChatTitle names a chat after its first question.
func ChatTitle(question string) string {
	const limit = 30
	r := []rune(question)
	if len(r) <= limit {
		return question
	}
	return string(r[:limit]) + "..."
}
