package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/smartdex/internal/quiz"
	"github.com/conorfennell/smartdex/internal/study"
)

func (s *Server) handleStudyQueue(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", s.opts.StudyLimit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cards, err := s.study.Queue(r.Context(), chi.URLParam(r, "deckID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

type reviewRequest struct {
	Quality *int `json:"quality" validate:"required,min=0,max=5"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	out, err := s.study.Review(r.Context(), chi.URLParam(r, "cardID"), *req.Quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	logs, err := s.study.CardHistory(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

type quizRequest struct {
	Count int    `json:"count" validate:"omitempty,min=1,max=100"`
	Mode  string `json:"mode" validate:"omitempty,oneof=multiple-choice true-false typing"`
}

type quizResponse struct {
	Mode      quiz.Mode       `json:"mode"`
	Questions []quiz.Question `json:"questions"`
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	count := req.Count
	if count == 0 {
		count = s.opts.QuizCount
	}
	mode := quiz.Mode(req.Mode)
	if mode == "" {
		mode = s.opts.QuizMode
	}
	questions, err := s.study.Quiz(r.Context(), chi.URLParam(r, "deckID"), count, mode)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizResponse{Mode: mode, Questions: questions})
}

type quizAnswer struct {
	CardID string `json:"cardId" validate:"required"`
	Answer string `json:"answer"`
}

type quizResultsRequest struct {
	Mode    string       `json:"mode" validate:"required,oneof=multiple-choice true-false typing"`
	Answers []quizAnswer `json:"answers" validate:"required,min=1,max=100,dive"`
}

func (s *Server) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	var req quizResultsRequest
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	answers := make(map[string]string, len(req.Answers))
	for _, a := range req.Answers {
		answers[a.CardID] = a.Answer
	}
	score, err := s.study.GradeQuiz(r.Context(), chi.URLParam(r, "deckID"), quiz.Mode(req.Mode), answers)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleQuizHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		handleError(w, r, err)
		return
	}
	results, err := s.study.QuizHistory(r.Context(), chi.URLParam(r, "deckID"), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", study.DefaultStatsDays)
	if err != nil {
		handleError(w, r, err)
		return
	}
	stats, err := s.study.Stats(r.Context(), r.URL.Query().Get("deck"), days, s.opts.Location)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
