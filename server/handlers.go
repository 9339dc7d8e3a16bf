package server

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"strings"

	"github.com/esporykhin/ai-product-framework/framework"
	"github.com/esporykhin/ai-product-framework/generator"
)

type contextReq struct {
	Text string `json:"text"`
}

type importReq struct {
	Markdown string `json:"markdown"`
}

type textResp struct {
	Text string `json:"text"`
}

type researchReq struct {
	Query string `json:"query"`
	Model string `json:"model"`
}

type answerReq struct {
	Answer string `json:"answer"`
}

type chatAskReq struct {
	Question    string                 `json:"question"`
	View        generator.View         `json:"view"`
	Attachments []generator.Attachment `json:"attachments"`
}

type chatListResp struct {
	Chats        []framework.ChatSession `json:"chats"`
	ActiveChatID string                  `json:"activeChatId"`
}

type chatAskResp struct {
	Reply framework.ChatMessage `json:"reply"`
}

// --- State ---

func (s *Server) handleStateGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.ws.State())
}

func (s *Server) handleStatePut(w http.ResponseWriter, r *http.Request) {
	var state framework.State
	if !decodeJSON(w, r, &state) {
		return
	}
	if err := s.ws.Replace(r.Context(), state); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.ws.State())
}

func (s *Server) handleContextPut(w http.ResponseWriter, r *http.Request) {
	var req contextReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.ws.SetProjectContext(r.Context(), req.Text); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Reset(r.Context()); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, s.ws.State())
}

// --- Import / export ---

// handleImport accepts either {"markdown": "..."} or the raw document.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	md := string(body)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req importReq
		if err := json.NewDecoder(bytes.NewReader(body)).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		md = req.Markdown
	}
	res, err := s.ws.ImportMarkdown(r.Context(), md)
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleExportMarkdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="ai-framework.md"`)
		_, _ = w.Write(s.ws.ExportFile())
		return
	}
	_, _ = io.WriteString(w, s.ws.ExportMarkdown())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ai-framework.csv"`)
	_, _ = io.WriteString(w, s.ws.ExportCSV())
}

func (s *Server) handleExportHTML(w http.ResponseWriter, r *http.Request) {
	out, err := s.ws.ExportHTML()
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, out)
}

// --- Hypotheses ---

func (s *Server) handleProblemCreate(w http.ResponseWriter, r *http.Request) {
	p, err := s.ws.AddProblem(r.Context())
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}

func (s *Server) handleProblemUpdate(w http.ResponseWriter, r *http.Request) {
	var p framework.ProblemEntry
	if !decodeJSON(w, r, &p) {
		return
	}
	// the path wins over the body
	p.ID = r.PathValue("id")
	if err := s.ws.UpdateProblem(r.Context(), p); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	state := s.ws.State()
	cur, _ := state.Problem(p.ID)
	writeJSON(w, cur)
}

func (s *Server) handleProblemDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteProblem(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProblemActivate(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.SetActive(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- AI actions ---

func (s *Server) aiContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.aiTimeout)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.aiContext(r)
	defer cancel()
	text, err := s.ws.SynthesizeFocus(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, textResp{Text: text})
}

func (s *Server) handleGTM(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.aiContext(r)
	defer cancel()
	text, err := s.ws.GenerateGTM(ctx, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, textResp{Text: text})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var req researchReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}
	ctx, cancel := s.aiContext(r)
	defer cancel()
	item, err := s.ws.Research(ctx, r.PathValue("id"), req.Query, req.Model)
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, item)
}

func (s *Server) handleResearchDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteResearch(r.Context(), r.PathValue("id"), r.PathValue("rid")); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.aiContext(r)
	defer cancel()
	text, err := s.ws.GenerateStrategy(ctx)
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, textResp{Text: text})
}

func (s *Server) handleValidation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.aiContext(r)
	defer cancel()
	items, err := s.ws.GenerateValidation(ctx)
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, items)
}

func (s *Server) handleValidationAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.ws.AnswerValidation(r.Context(), r.PathValue("id"), req.Answer); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Advisor chats ---

func (s *Server) handleChatList(w http.ResponseWriter, r *http.Request) {
	chats, active := s.ws.Chats()
	writeJSON(w, chatListResp{Chats: chats, ActiveChatID: active})
}

func (s *Server) handleChatCreate(w http.ResponseWriter, r *http.Request) {
	chat, err := s.ws.CreateChat(r.Context())
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(chat)
}

func (s *Server) handleChatGet(w http.ResponseWriter, r *http.Request) {
	chat, err := s.ws.Chat(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, chat)
}

func (s *Server) handleChatAsk(w http.ResponseWriter, r *http.Request) {
	var req chatAskReq
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx, cancel := s.aiContext(r)
	defer cancel()
	reply, err := s.ws.AskChat(ctx, r.PathValue("id"), req.View, req.Question, req.Attachments)
	if err != nil {
		s.writeError(w, err, http.StatusBadGateway)
		return
	}
	writeJSON(w, chatAskResp{Reply: reply})
}

func (s *Server) handleChatDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.DeleteChat(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChatActivate(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.SelectChat(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Preview ---

type scoreRow struct {
	Title   string
	Score   int
	Verdict string
}

type previewData struct {
	Scores []scoreRow
	Body   template.HTML
}

// handlePreview renders the Markdown export through goldmark so the document
// can be read without an editor.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	state := s.ws.State()
	body, err := s.ws.ExportHTML()
	if err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	data := previewData{Body: template.HTML(body)}
	for _, p := range state.Problems {
		score := framework.Score(p)
		data.Scores = append(data.Scores, scoreRow{Title: p.Title, Score: score, Verdict: framework.VerdictFor(score).Text})
	}
	var buf bytes.Buffer
	if err := s.preview.Execute(&buf, data); err != nil {
		s.writeError(w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
