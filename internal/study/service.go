// Package study runs study and quiz sessions over stored decks. It applies
// the scheduler, the due-card selector and the quiz synthesizer to cards
// loaded from a Store and persists the outcome.
package study

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conorfennell/smartdex/internal/domain"
	"github.com/conorfennell/smartdex/internal/knol"
	"github.com/conorfennell/smartdex/internal/queue"
	"github.com/conorfennell/smartdex/internal/quiz"
	"github.com/conorfennell/smartdex/internal/sm2"
	"github.com/conorfennell/smartdex/internal/storage"
)

// Store is the persistence the service needs. *storage.DB implements it.
type Store interface {
	InsertDeck(ctx context.Context, d domain.Deck) error
	FindDeck(ctx context.Context, id string) (domain.Deck, error)
	ListDecks(ctx context.Context) ([]domain.Deck, error)
	DeleteDeck(ctx context.Context, id string) error

	InsertCard(ctx context.Context, c domain.Card) error
	FindCard(ctx context.Context, id string) (domain.Card, error)
	ListCards(ctx context.Context, f storage.CardFilter) ([]domain.Card, error)
	DeleteCard(ctx context.Context, id string) error

	ReviewCard(ctx context.Context, id string, review storage.ReviewFunc) (domain.Card, error)
	ListReviewLogs(ctx context.Context, f storage.ReviewFilter) ([]domain.ReviewLog, error)

	InsertQuizResult(ctx context.Context, r domain.QuizResult) error
	ListQuizResults(ctx context.Context, deckID string, limit int) ([]domain.QuizResult, error)
}

// Service coordinates decks, reviews and quizzes.
type Service struct {
	store  Store
	params *sm2.Params
	quiz   *quiz.Generator
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand makes quiz generation draw from rng.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.quiz = quiz.NewGenerator(rng) }
}

// WithParams replaces the default SM-2 constants.
func WithParams(p *sm2.Params) Option {
	return func(s *Service) { s.params = p }
}

// NewService creates a service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		params: sm2.DefaultParams(),
		quiz:   quiz.NewGenerator(nil),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDeck holds the user supplied fields of a deck.
type NewDeck struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Tags        []string `json:"tags" validate:"max=20,dive,required,max=50"`
}

// CreateDeck stores a new deck that does not belong to any source.
func (s *Service) CreateDeck(ctx context.Context, nd NewDeck) (domain.Deck, error) {
	title := strings.TrimSpace(nd.Title)
	if title == "" {
		return domain.Deck{}, fmt.Errorf("%w: deck title is required", domain.ErrInvalid)
	}
	now := s.now()
	deck := domain.Deck{
		ID:          uuid.NewString(),
		Title:       title,
		Description: nd.Description,
		Tags:        nd.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if deck.Tags == nil {
		deck.Tags = []string{}
	}
	if err := s.store.InsertDeck(ctx, deck); err != nil {
		return domain.Deck{}, err
	}
	return deck, nil
}

// Decks returns a summary of every deck.
func (s *Service) Decks(ctx context.Context) ([]domain.DeckSummary, error) {
	decks, err := s.store.ListDecks(ctx)
	if err != nil {
		return nil, err
	}
	if len(decks) == 0 {
		return []domain.DeckSummary{}, nil
	}
	cards, err := s.store.ListCards(ctx, storage.CardFilter{})
	if err != nil {
		return nil, err
	}
	byDeck := make(map[string][]domain.Card, len(decks))
	for _, c := range cards {
		byDeck[c.DeckID] = append(byDeck[c.DeckID], c)
	}

	now := s.now()
	summaries := make([]domain.DeckSummary, 0, len(decks))
	for _, d := range decks {
		summaries = append(summaries, domain.Summarize(d, byDeck[d.ID], now))
	}
	return summaries, nil
}

// Deck returns the summary of a single deck.
func (s *Service) Deck(ctx context.Context, id string) (domain.DeckSummary, error) {
	deck, err := s.store.FindDeck(ctx, id)
	if err != nil {
		return domain.DeckSummary{}, err
	}
	cards, err := s.store.ListCards(ctx, storage.CardFilter{DeckID: id})
	if err != nil {
		return domain.DeckSummary{}, err
	}
	return domain.Summarize(deck, cards, s.now()), nil
}

// DeleteDeck removes a deck and its cards.
func (s *Service) DeleteDeck(ctx context.Context, id string) error {
	return s.store.DeleteDeck(ctx, id)
}

// NewCard holds the user supplied fields of a card.
type NewCard struct {
	Front string `json:"front" validate:"required,max=2000"`
	Back  string `json:"back" validate:"required,max=2000"`
	Hint  string `json:"hint" validate:"max=2000"`
}

// CreateCard adds a card to a deck. A card with the same front and back
// already in the deck is a conflict.
func (s *Service) CreateCard(ctx context.Context, deckID string, nc NewCard) (domain.Card, error) {
	if strings.TrimSpace(nc.Front) == "" || strings.TrimSpace(nc.Back) == "" {
		return domain.Card{}, fmt.Errorf("%w: card front and back are required", domain.ErrInvalid)
	}
	if _, err := s.store.FindDeck(ctx, deckID); err != nil {
		return domain.Card{}, err
	}
	card := domain.NewCard(deckID, nc.Front, nc.Back, nc.Hint, s.now())
	card.ID = knol.Hash(deckID, nc.Front, nc.Back)
	if err := s.store.InsertCard(ctx, card); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// Cards lists the cards of a deck, optionally only those with status.
func (s *Service) Cards(ctx context.Context, deckID string, status domain.Status) ([]domain.Card, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalid, status)
	}
	if _, err := s.store.FindDeck(ctx, deckID); err != nil {
		return nil, err
	}
	return s.store.ListCards(ctx, storage.CardFilter{DeckID: deckID, Status: status})
}

// DeleteCard removes a card. Its review history is kept.
func (s *Service) DeleteCard(ctx context.Context, id string) error {
	return s.store.DeleteCard(ctx, id)
}

// Queue returns the cards to study now, new cards first. An empty deckID
// studies all decks.
func (s *Service) Queue(ctx context.Context, deckID string, limit int) ([]domain.Card, error) {
	f := storage.CardFilter{}
	if deckID != "" {
		if _, err := s.store.FindDeck(ctx, deckID); err != nil {
			return nil, err
		}
		f.DeckID = deckID
	}
	cards, err := s.store.ListCards(ctx, f)
	if err != nil {
		return nil, err
	}
	return queue.SelectForStudy(cards, limit, s.now()), nil
}

// ReviewOutcome is the result of rating one card.
type ReviewOutcome struct {
	Card    domain.Card      `json:"card"`
	Log     domain.ReviewLog `json:"log"`
	Correct bool             `json:"correct"`
}

// Review schedules a card after the user rated their recall with quality
// (0-5, clamped). The card update and its review log are written atomically.
func (s *Service) Review(ctx context.Context, cardID string, quality int) (ReviewOutcome, error) {
	q := sm2.ClampQuality(quality)
	now := s.now()

	var log domain.ReviewLog
	card, err := s.store.ReviewCard(ctx, cardID, func(c domain.Card) (domain.Card, domain.ReviewLog) {
		r := s.params.Next(q, sm2.State{
			EaseFactor:  c.EaseFactor,
			Interval:    c.Interval,
			Repetitions: c.Repetitions,
		}, now)

		prev := c.Status
		c.EaseFactor = r.EaseFactor
		c.Interval = r.Interval
		c.Repetitions = r.Repetitions
		c.NextReview = r.NextReview
		c.LastReview = &now
		c.Status = domain.DeriveStatus(r.Repetitions)
		c.UpdatedAt = now

		log = domain.ReviewLog{
			ID:             uuid.NewString(),
			CardID:         c.ID,
			DeckID:         c.DeckID,
			Quality:        q,
			PreviousStatus: prev,
			Status:         c.Status,
			EaseFactor:     c.EaseFactor,
			Interval:       c.Interval,
			Repetitions:    c.Repetitions,
			ReviewedAt:     now,
		}
		return c, log
	})
	if err != nil {
		return ReviewOutcome{}, err
	}

	slog.Debug("card reviewed",
		"card_id", card.ID,
		"quality", q,
		"interval", card.Interval,
		"status", card.Status,
	)
	return ReviewOutcome{Card: card, Log: log, Correct: domain.IsCorrect(q)}, nil
}

// Quiz builds count questions from a deck.
func (s *Service) Quiz(ctx context.Context, deckID string, count int, mode quiz.Mode) ([]quiz.Question, error) {
	if _, err := quiz.ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if _, err := s.store.FindDeck(ctx, deckID); err != nil {
		return nil, err
	}
	cards, err := s.store.ListCards(ctx, storage.CardFilter{DeckID: deckID})
	if err != nil {
		return nil, err
	}
	return s.quiz.Generate(cards, count, mode), nil
}

// GradeQuiz scores answers keyed by card ID against the deck's cards and
// records the result. Answers for cards outside the deck are invalid.
func (s *Service) GradeQuiz(ctx context.Context, deckID string, mode quiz.Mode, answers map[string]string) (quiz.Score, error) {
	if _, err := quiz.ParseMode(string(mode)); err != nil {
		return quiz.Score{}, err
	}
	if len(answers) == 0 {
		return quiz.Score{}, fmt.Errorf("%w: no answers given", domain.ErrInvalid)
	}
	if _, err := s.store.FindDeck(ctx, deckID); err != nil {
		return quiz.Score{}, err
	}
	cards, err := s.store.ListCards(ctx, storage.CardFilter{DeckID: deckID})
	if err != nil {
		return quiz.Score{}, err
	}
	byID := make(map[string]domain.Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	questions := make([]quiz.Question, 0, len(answers))
	for id := range answers {
		c, ok := byID[id]
		if !ok {
			return quiz.Score{}, fmt.Errorf("%w: card %s is not in deck %s", domain.ErrInvalid, id, deckID)
		}
		questions = append(questions, quiz.Question{Question: c.Front, CorrectAnswer: c.Back, CardID: c.ID})
	}
	score := quiz.Grade(questions, answers)

	result := domain.QuizResult{
		ID:            uuid.NewString(),
		DeckID:        deckID,
		Mode:          string(mode),
		QuestionCount: score.Total,
		Correct:       score.Correct,
		CompletedAt:   s.now(),
	}
	if err := s.store.InsertQuizResult(ctx, result); err != nil {
		return quiz.Score{}, err
	}
	return score, nil
}

// CardHistory returns the reviews of a card, oldest first.
func (s *Service) CardHistory(ctx context.Context, cardID string) ([]domain.ReviewLog, error) {
	if _, err := s.store.FindCard(ctx, cardID); err != nil {
		return nil, err
	}
	return s.store.ListReviewLogs(ctx, storage.ReviewFilter{CardID: cardID})
}

// QuizHistory returns the most recent quiz results of a deck.
func (s *Service) QuizHistory(ctx context.Context, deckID string, limit int) ([]domain.QuizResult, error) {
	return s.store.ListQuizResults(ctx, deckID, limit)
}
