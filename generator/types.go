package generator

import "github.com/esporykhin/ai-product-framework/framework"

// Chat roles as the OpenAI-compatible APIs spell them.
const (
	RoleUser      = framework.RoleUser
	RoleAssistant = framework.RoleAssistant
)

// Attachment is a text fragment the user pinned to a chat question.
type Attachment struct {
	Source string `json:"source"`
	Text   string `json:"text"`
}

// View names the screen the user is looking at when asking the advisor.
type View string

const (
	ViewProblem  View = "problem"
	ViewStrategy View = "strategy"
)

func (v View) label() string {
	if v == ViewStrategy {
		return "Strategy Dashboard"
	}
	return "Problem Editor"
}
