package framework

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorecardTotal(t *testing.T) {
	s := DefaultScorecard()
	assert.Equal(t, 8, s.Total())

	for _, f := range Factors {
		s.Set(f, MaxFactor)
	}
	assert.Equal(t, MaxScore, s.Total())

	s.Set(Scalability, 3)
	assert.Equal(t, 3, s.Get(Scalability))
	assert.Equal(t, 38, Score(ProblemEntry{Step2: s}))
}

func TestScorecardBackfill(t *testing.T) {
	s := Scorecard{RepetitiveTasks: 4}
	s.Backfill()
	assert.Equal(t, 4, s.RepetitiveTasks)
	assert.Equal(t, 1, s.DecisionComplexity)
	assert.Equal(t, 11, s.Total())
}

func TestEthicsAccessors(t *testing.T) {
	var e Ethics
	e.Set(HumanOversight, "review queue")
	e.Set(Privacy, "pii")
	assert.Equal(t, "review queue", e.HumanOversight)
	assert.Equal(t, "pii", e.Get(Privacy))
	assert.Equal(t, "", e.Get(Safety))
}

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		score int
		band  string
	}{
		{40, "excellent"},
		{30, "excellent"},
		{29, "promising"},
		{20, "promising"},
		{10, "weak"},
		{8, "unfit"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.band, VerdictFor(tt.score).Band, "score %d", tt.score)
	}
}

func TestDefaultStateIsPristine(t *testing.T) {
	s := DefaultState()
	require.Len(t, s.Problems, 1)
	assert.True(t, s.IsPristine())
	assert.Equal(t, DefaultProblemID, s.ActiveProblemID)
	assert.Equal(t, "Гипотеза 1", s.Problems[0].Title)
	assert.Equal(t, DefaultBusinessImpact, s.Problems[0].BusinessImpact)

	s.Problems[0].UserProblem = "churn"
	assert.False(t, s.IsPristine())

	s = DefaultState()
	s.Problems = append(s.Problems, NewProblem(1))
	assert.False(t, s.IsPristine())
}

func TestNormalize(t *testing.T) {
	s := State{
		Problems: []ProblemEntry{
			{ID: "a", Step2: Scorecard{Scalability: 5}},
			{Title: "no id"},
		},
		ActiveProblemID: "missing",
	}
	Normalize(&s)

	assert.Equal(t, "a", s.ActiveProblemID)
	assert.NotEmpty(t, s.Problems[1].ID)
	assert.Equal(t, 12, s.Problems[0].Step2.Total())
	assert.Equal(t, DefaultBusinessImpact, s.Problems[1].BusinessImpact)
	assert.NotNil(t, s.Problems[1].Research)
	assert.NotNil(t, s.ValidationQuestions)

	empty := State{}
	Normalize(&empty)
	assert.True(t, empty.IsPristine())
}

func TestDecodeStateLegacyQuestions(t *testing.T) {
	data := []byte(`{
		"problems": [{"id": "p1", "title": "T", "step2": {"scalability": 4}, "businessImpact": 8}],
		"projectContext": "ctx",
		"validationQuestions": ["Why now?", "Who pays?"],
		"activeProblemId": "p1"
	}`)
	s, err := DecodeState(data)
	require.NoError(t, err)

	require.Len(t, s.ValidationQuestions, 2)
	assert.Equal(t, "Why now?", s.ValidationQuestions[0].Question)
	assert.Equal(t, "Who pays?", s.ValidationQuestions[1].Question)
	for _, q := range s.ValidationQuestions {
		assert.NotEmpty(t, q.ID)
		assert.Empty(t, q.Answer)
	}
	assert.Equal(t, "ctx", s.ProjectContext)
	assert.Equal(t, 11, s.Problems[0].Step2.Total())
	assert.Equal(t, 8, s.Problems[0].BusinessImpact)
}

func TestDecodeStateItems(t *testing.T) {
	data := []byte(`{"problems": [], "validationQuestions": [{"id": "q", "question": "Q?", "answer": "A"}]}`)
	s, err := DecodeState(data)
	require.NoError(t, err)
	require.Len(t, s.ValidationQuestions, 1)
	assert.Equal(t, "A", s.ValidationQuestions[0].Answer)
	assert.Len(t, s.Problems, 1)

	_, err = DecodeState([]byte(`{"validationQuestions": 7}`))
	assert.Error(t, err)
}

func TestMatchApproach(t *testing.T) {
	assert.Equal(t, "forecasting", MatchApproach("forecasting"))
	assert.Equal(t, "nlu", MatchApproach("nlu (chat bots)"))
	assert.Equal(t, "quantum", MatchApproach("quantum"))

	a, ok := LookupApproach("content_gen")
	require.True(t, ok)
	assert.Equal(t, "LLMs, Diffusion", a.Tech)
}

func TestCloneIsDeep(t *testing.T) {
	approach := "nlu"
	s := State{Problems: []ProblemEntry{{
		ID:               "p",
		SelectedApproach: &approach,
		Research:         []ResearchItem{{ID: "r", Sources: []Source{{URL: "http://a"}}}},
	}}}
	c := s.Clone()
	c.Problems[0].Research[0].Sources[0].URL = "http://b"
	*c.Problems[0].SelectedApproach = "automation"

	assert.Equal(t, "http://a", s.Problems[0].Research[0].Sources[0].URL)
	assert.Equal(t, "nlu", s.Problems[0].Approach())
}

func TestChats(t *testing.T) {
	now := time.UnixMilli(1000)
	c := NewChat(now)
	assert.Equal(t, DefaultChatTitle, c.Title)
	assert.Equal(t, int64(1000), c.UpdatedAt)

	m := c.Append(RoleUser, "Hi", time.UnixMilli(2000))
	assert.Equal(t, int64(2000), m.Timestamp)
	assert.Equal(t, int64(2000), c.UpdatedAt)

	s := DefaultState()
	s.Chats = []ChatSession{c, {Title: ""}}
	s.ActiveChatID = "gone"
	Normalize(&s)
	assert.Equal(t, c.ID, s.ActiveChatID)
	assert.NotEmpty(t, s.Chats[1].ID)
	assert.Equal(t, DefaultChatTitle, s.Chats[1].Title)
	assert.NotNil(t, s.Chats[1].Messages)

	clone := s.Clone()
	clone.Chats[0].Messages[0].Content = "changed"
	assert.Equal(t, "Hi", s.Chats[0].Messages[0].Content)

	got, ok := s.Chat(c.ID)
	require.True(t, ok)
	assert.Len(t, got.Messages, 1)
}

func TestDecodeStateWithoutChats(t *testing.T) {
	s, err := DecodeState([]byte(`{"problems": [], "activeChatId": "x"}`))
	require.NoError(t, err)
	assert.NotNil(t, s.Chats)
	assert.Empty(t, s.Chats)
	assert.Empty(t, s.ActiveChatID)
}
