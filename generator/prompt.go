package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/esporykhin/ai-product-framework/framework"
)

// Prompt is the message set sent to the LLM. Model overrides the client's
// default model when non-empty.
type Prompt struct {
	System  string
	User    string
	History []Message
	Model   string
}

// Message is one prior chat message.
type Message struct {
	Role    string
	Content string
}

func orNone(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// BuildFocusPrompt asks for a two or three sentence strategic focus.
func BuildFocusPrompt(p framework.ProblemEntry, projectContext string) Prompt {
	var sb strings.Builder
	sb.WriteString("Действуй как опытный CPO (Chief Product Officer).\n\n")
	sb.WriteString("КОНТЕКСТ ПРОЕКТА:\n")
	sb.WriteString(orNone(projectContext, "Нет дополнительного контекста.") + "\n\n")
	sb.WriteString("ОПИСАНИЕ ПРОБЛЕМЫ:\n")
	fmt.Fprintf(&sb, "Проблема: %s\n", p.UserProblem)
	fmt.Fprintf(&sb, "Текущее решение: %s\n", p.CurrentSolution)
	fmt.Fprintf(&sb, "Минусы: %s\n\n", p.BrokenAspects)
	sb.WriteString("ЗАДАЧА:\n")
	sb.WriteString("Сформулируй четкую стратегию (Strategic Focus) для решения этой проблемы с помощью ИИ.\n")
	sb.WriteString("Будь краток (2-3 предложения). Начни с \"Мы сфокусируемся на...\"\n")
	return Prompt{User: sb.String()}
}

// BuildGTMPrompt asks for a Markdown go-to-market plan.
func BuildGTMPrompt(p framework.ProblemEntry, projectContext string) Prompt {
	approach := "Не выбран"
	if id := p.Approach(); id != "" {
		approach = id
		if a, ok := framework.LookupApproach(id); ok {
			approach = fmt.Sprintf("%s (%s, %s)", a.ID, a.Title, a.Tech)
		}
	}

	var sb strings.Builder
	sb.WriteString("Действуй как Head of Marketing & Growth.\n\n")
	sb.WriteString("КОНТЕКСТ ПРОЕКТА:\n")
	sb.WriteString(orNone(projectContext, "Нет дополнительного контекста.") + "\n\n")
	sb.WriteString("ПРОДУКТ:\n")
	fmt.Fprintf(&sb, "Название: %s\n", p.Title)
	fmt.Fprintf(&sb, "Проблема: %s\n", p.UserProblem)
	fmt.Fprintf(&sb, "Технический подход: %s\n\n", approach)
	sb.WriteString("ЗАДАЧА:\nНапиши план Go-to-Market (GTM) стратегии.\n\n")
	sb.WriteString("СТРУКТУРА ОТВЕТА (Используй Markdown):\n")
	sb.WriteString("1. **Целевая аудитория (ICP)**: Кто именно будет платить?\n")
	sb.WriteString("2. **Value Proposition**: Почему они купят это, а не конкурентов?\n")
	sb.WriteString("3. **Каналы дистрибуции**: Топ-3 канала для старта.\n")
	sb.WriteString("4. **Early Adopters**: Как найти первых 100 пользователей.\n\n")
	sb.WriteString("Стиль: Практичный, без воды, буллет-поинты.\n")
	return Prompt{User: sb.String()}
}

// BuildResearchPrompt asks for a structured research answer. The model
// doing the research is chosen per query.
func BuildResearchPrompt(query, model, projectContext string) Prompt {
	var sb strings.Builder
	sb.WriteString("Ты - Deep Research Analyst. Твоя задача - провести глубокое исследование по запросу пользователя.\n\n")
	sb.WriteString("КОНТЕКСТ ПРОЕКТА:\n")
	sb.WriteString(orNone(projectContext, "Нет.") + "\n\n")
	sb.WriteString("ЗАПРОС НА ИССЛЕДОВАНИЕ:\n")
	fmt.Fprintf(&sb, "%q\n\n", query)
	sb.WriteString("ЗАДАЧА:\n")
	sb.WriteString("1. Структурируй ответ. Используй заголовки.\n")
	sb.WriteString("2. Если это анализ рынка - дай цифры (CAGR, TAM/SAM/SOM), если знаешь.\n")
	sb.WriteString("3. Если это анализ конкурентов - дай таблицу сравнения.\n")
	sb.WriteString("4. Если это техническое исследование - дай обзор state-of-the-art решений.\n")
	sb.WriteString("5. Будь объективен. Указывай источники ссылками Markdown [название](url) или пиши \"по общим данным\".\n\n")
	sb.WriteString("Используй Markdown для форматирования.\n")
	return Prompt{User: sb.String(), Model: model}
}

type hypothesisBrief struct {
	Title  string `json:"title"`
	Score  int    `json:"score"`
	Impact int    `json:"impact"`
	GTM    string `json:"gtm"`
	Focus  string `json:"focus"`
}

type hypothesisSummary struct {
	Title   string `json:"title"`
	Problem string `json:"problem"`
	Focus   string `json:"focus"`
}

func indentJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

// BuildStrategyPrompt asks for the executive summary across all hypotheses,
// taking answered validation questions into account.
func BuildStrategyPrompt(s framework.State) Prompt {
	briefs := make([]hypothesisBrief, 0, len(s.Problems))
	for _, p := range s.Problems {
		gtm := "Нет"
		if p.GTMPlan != "" {
			gtm = "Есть план"
		}
		briefs = append(briefs, hypothesisBrief{
			Title:  p.Title,
			Score:  framework.Score(p),
			Impact: p.BusinessImpact,
			GTM:    gtm,
			Focus:  p.StrategicFocus,
		})
	}
	qa := make([]string, 0, len(s.ValidationQuestions))
	for _, v := range s.ValidationQuestions {
		qa = append(qa, fmt.Sprintf("Q: %s\nA: %s", v.Question, orNone(v.Answer, "Ответа нет")))
	}

	var sb strings.Builder
	sb.WriteString("Ты - CPO (Chief Product Officer).\n")
	sb.WriteString("У тебя есть список продуктовых гипотез с оценками AI Score (техническая применимость) и Business Impact (ценность).\n\n")
	sb.WriteString("ДОПОЛНИТЕЛЬНЫЙ КОНТЕКСТ ОТ ПРОДАКТА:\n")
	sb.WriteString(orNone(s.ProjectContext, "Нет контекста.") + "\n\n")
	sb.WriteString("ГИПОТЕЗЫ:\n" + indentJSON(briefs) + "\n\n")
	sb.WriteString("ВАЛИДАЦИЯ И ОТВЕТЫ НА КРИТИКУ (Q&A):\n")
	sb.WriteString("Продакт-менеджер уже ответил на сложные вопросы бизнеса. Учти эти ответы в стратегии (особенно в рисках и роадмапе):\n")
	sb.WriteString(orNone(strings.Join(qa, "\n---\n"), "Нет данных валидации.") + "\n\n")
	sb.WriteString("ЗАДАЧА:\nНапиши связную \"Единую продуктовую стратегию\" (Executive Summary) на русском языке.\n\n")
	sb.WriteString("СТРУКТУРА ОТВЕТА (Markdown):\n")
	sb.WriteString("1. **Общее видение**: Одно предложение о том, куда движется продукт.\n")
	sb.WriteString("2. **Ключевые ставки (Top Priorities)**: Выдели 1-2 гипотезы с высоким Score и Impact. Объясни, почему начинаем с них.\n")
	sb.WriteString("3. **Защита стратегии**: Кратко объясни, как мы закрываем риски, озвученные в блоке валидации (Q&A).\n")
	sb.WriteString("4. **GTM Синтез**: Кратко, как мы будем это продавать.\n")
	sb.WriteString("5. **План развития (Roadmap)**: Что делать во вторую очередь.\n\n")
	sb.WriteString("Стиль: Профессиональный, уверенный, лаконичный.\n")
	return Prompt{User: sb.String()}
}

// BuildValidationPrompt asks a sceptical investor for five hard questions,
// one per line.
func BuildValidationPrompt(s framework.State) Prompt {
	summaries := make([]hypothesisSummary, 0, len(s.Problems))
	for _, p := range s.Problems {
		summaries = append(summaries, hypothesisSummary{Title: p.Title, Problem: p.UserProblem, Focus: p.StrategicFocus})
	}

	var sb strings.Builder
	sb.WriteString("Ты - скептически настроенный Инвестор или CEO.\n\n")
	sb.WriteString("СТРАТЕГИЯ:\n" + orNone(s.FinalStrategyText, "Стратегия еще не сформирована.") + "\n\n")
	sb.WriteString("ГИПОТЕЗЫ:\n" + indentJSON(summaries) + "\n\n")
	sb.WriteString("КОНТЕКСТ:\n" + orNone(s.ProjectContext, "Нет контекста.") + "\n\n")
	sb.WriteString("ЗАДАЧА:\n")
	sb.WriteString("Сгенерируй 5 сложных, неудобных вопросов (\"Questions from Business\"), на которые продакт должен ответить, чтобы защитить эту стратегию.\n")
	sb.WriteString("Вопросы должны касаться денег, рисков, GTM или рыночной целесообразности.\n\n")
	sb.WriteString("Формат: Верни только список вопросов. Каждый вопрос с новой строки. Без нумерации.\n")
	return Prompt{User: sb.String()}
}

// BuildChatPrompt builds the advisor prompt: a system message with the whole
// workbench, prior turns as history and the new question with any pinned
// fragments appended.
func BuildChatPrompt(s framework.State, view View, history []framework.ChatMessage, question string, attachments []Attachment) Prompt {
	active := "null"
	if p, ok := s.Problem(s.ActiveProblemID); ok {
		active = indentJSON(p)
	}

	var sys strings.Builder
	sys.WriteString("You are an expert AI Product Manager.\n")
	sys.WriteString("Role: Strategic Advisor.\n")
	sys.WriteString("Language: Russian.\n\n")
	sys.WriteString("CURRENT STATE:\n")
	fmt.Fprintf(&sys, "User is currently viewing: %s\n\n", view.label())
	sys.WriteString("GLOBAL CONTEXT:\n" + orNone(s.ProjectContext, "None") + "\n\n")
	sys.WriteString("ALL HYPOTHESES:\n" + indentJSON(s.Problems) + "\n\n")
	sys.WriteString("ACTIVE HYPOTHESIS (If applicable):\n" + active + "\n\n")
	sys.WriteString("Task: Provide insights, critique ideas, or suggest improvements.\n")
	sys.WriteString("Be direct and helpful.\n")

	msgs := make([]Message, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}

	user := question
	if len(attachments) > 0 {
		var sb strings.Builder
		sb.WriteString(question)
		sb.WriteString("\n\n=== USER ATTACHED CONTEXTS ===\n")
		for i, a := range attachments {
			fmt.Fprintf(&sb, "\n--- Context #%d from %s ---\n%q\n", i+1, a.Source, a.Text)
		}
		sb.WriteString("\n(User wants to discuss these specific texts)\n==============================\n")
		user = sb.String()
	}

	return Prompt{System: sys.String(), User: user, History: msgs}
}
