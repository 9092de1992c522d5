package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/study"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.study.Decks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decks)
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req study.NewDeck
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	deck, err := s.study.CreateDeck(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	summary, err := s.study.Deck(r.Context(), chi.URLParam(r, "deckID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.study.DeleteDeck(r.Context(), chi.URLParam(r, "deckID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	status := domain.Status(r.URL.Query().Get("status"))
	cards, err := s.study.Cards(r.Context(), chi.URLParam(r, "deckID"), status)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req study.NewCard
	if err := decode(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	card, err := s.study.CreateCard(r.Context(), chi.URLParam(r, "deckID"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.study.DeleteCard(r.Context(), chi.URLParam(r, "cardID")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
