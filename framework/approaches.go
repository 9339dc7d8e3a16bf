package framework

import "strings"

// Approach is an AI solution archetype a hypothesis can be built on.
type Approach struct {
	ID       string
	Title    string
	Tech     string
	Examples string
}

// Approaches is the fixed catalog selectedApproach points into.
var Approaches = []Approach{
	{ID: "classification", Title: "Классификация", Tech: "Classification models", Examples: "Спам-фильтры, анализ тональности"},
	{ID: "forecasting", Title: "Прогнозирование", Tech: "Regression, Time series", Examples: "Прогноз продаж, LTV"},
	{ID: "personalization", Title: "Персонализация", Tech: "RecSys, Collab filtering", Examples: "Рекомендации товаров"},
	{ID: "content_gen", Title: "Генерация (GenAI)", Tech: "LLMs, Diffusion", Examples: "Тексты, картинки, код"},
	{ID: "nlu", Title: "Чат-боты / NLU", Tech: "LLMs, NLP", Examples: "Поддержка, ассистенты"},
	{ID: "automation", Title: "Агенты", Tech: "Autonomous Agents", Examples: "Авто-закупки, планирование"},
}

// MatchApproach resolves free text to a catalog id. Text that mentions no
// catalog id is returned unchanged.
func MatchApproach(text string) string {
	for _, a := range Approaches {
		if text == a.ID || strings.Contains(text, a.ID) {
			return a.ID
		}
	}
	return text
}

// LookupApproach finds a catalog entry by id.
func LookupApproach(id string) (Approach, bool) {
	for _, a := range Approaches {
		if a.ID == id {
			return a, true
		}
	}
	return Approach{}, false
}
