// Package devgateway is a local stand-in for the remote gateway: it serves
// the four study/quiz endpoints plus the mistake-book routes, so the client
// can be developed and integration-tested without the production backend.
package devgateway

import (
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

// Article is a piece of reading content quizzes are generated from.
type Article struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ReviewResult is one accepted study submission. The dev gateway only
// records it; interval scheduling is not its concern.
type ReviewResult struct {
	ItemID  int64 `json:"word_id"`
	Quality int   `json:"quality"`
}

type Server struct {
	Generator QuizGenerator

	log *logger.Logger

	mu            sync.Mutex
	words         []models.ReviewItem
	articles      map[int64]Article
	results       []ReviewResult
	mistakes      []models.MissedQuestion
	nextMistakeID int64
}

func NewServer(generator QuizGenerator) *Server {
	s := &Server{
		Generator:     generator,
		log:           logger.Default().WithPrefix("devgateway"),
		articles:      map[int64]Article{},
		nextMistakeID: 1,
	}
	s.seed()
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/study/queue", s.handleStudyQueue)
	r.Post("/study/submit", s.handleStudySubmit)
	r.Get("/reading/list", s.handleReadingList)
	r.Post("/reading/{articleID}/quiz", s.handleQuiz)
	r.Post("/mistakes/batch_add", s.handleMistakeBatchAdd)
	r.Get("/mistakes", s.handleMistakeList)
	r.Post("/mistakes/{id}/delete", s.handleMistakeDelete)

	return r
}

// SetWords replaces the seeded review queue.
func (s *Server) SetWords(words []models.ReviewItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = words
}

// AddArticle registers reading content.
func (s *Server) AddArticle(a Article) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles[a.ID] = a
}

// Results returns the review submissions accepted so far.
func (s *Server) Results() []ReviewResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReviewResult, len(s.results))
	copy(out, s.results)
	return out
}

// Mistakes returns the stored mistake-book entries.
func (s *Server) Mistakes() []models.MissedQuestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MissedQuestion, len(s.mistakes))
	copy(out, s.mistakes)
	return out
}

func (s *Server) seed() {
	s.words = []models.ReviewItem{
		{ID: 1, Spell: "abandon", Phonetic: "əˈbændən", Translation: "放弃；抛弃", AIExample: &models.AIExample{
			English: "He had to abandon his old bike.",
			Chinese: "他不得不丢掉他的旧自行车。",
		}},
		{ID: 2, Spell: "brilliant", Phonetic: "ˈbrɪliənt", Translation: "杰出的；明亮的"},
		{ID: 3, Spell: "curious", Phonetic: "ˈkjʊəriəs", Translation: "好奇的"},
		{ID: 4, Spell: "delight", Phonetic: "dɪˈlaɪt", Translation: "高兴；使高兴"},
		{ID: 5, Spell: "eager", Phonetic: "ˈiːɡə", Translation: "渴望的"},
	}
	s.articles[1] = Article{
		ID:    1,
		Title: "A Morning in the Park",
		Content: "Tom wakes up early every Saturday. He likes to run in the park near " +
			"his home. The air is fresh and the birds sing in the trees. One morning " +
			"he meets an old man feeding pigeons. They talk about the weather and " +
			"become friends. Now Tom looks forward to every Saturday morning.",
	}
}
