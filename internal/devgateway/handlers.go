package devgateway

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"message": message}})
}

func (s *Server) handleStudyQueue(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	words := make([]models.ReviewItem, len(s.words))
	copy(words, s.words)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, words)
}

func (s *Server) handleStudySubmit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var payload ReviewResult
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid submit payload")
		return
	}
	if !models.Quality(payload.Quality).Valid() {
		writeError(w, http.StatusBadRequest, "quality must be one of 0, 3, 5")
		return
	}

	s.mu.Lock()
	s.results = append(s.results, payload)
	s.mu.Unlock()

	log.Debug("accepted review result: item_id=%d quality=%d", payload.ItemID, payload.Quality)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadingList(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	articles := make([]Article, 0, len(s.articles))
	for _, a := range s.articles {
		articles = append(articles, a)
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	articleID, err := strconv.ParseInt(chi.URLParam(r, "articleID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	s.mu.Lock()
	article, ok := s.articles[articleID]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}

	questions, err := s.Generator.Generate(r.Context(), article, 0)
	if err != nil {
		log.Error("quiz generation failed: %v", err)
		writeError(w, http.StatusBadGateway, "quiz generation failed")
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

func (s *Server) handleMistakeBatchAdd(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var records []models.MissedQuestion
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, "invalid mistake batch")
		return
	}

	s.mu.Lock()
	for i := range records {
		records[i].ID = s.nextMistakeID
		s.nextMistakeID++
		s.mistakes = append(s.mistakes, records[i])
	}
	total := len(s.mistakes)
	s.mu.Unlock()

	log.Info("stored %d mistakes (total %d)", len(records), total)
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "added": len(records)})
}

func (s *Server) handleMistakeList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Mistakes())
}

func (s *Server) handleMistakeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid mistake id")
		return
	}

	s.mu.Lock()
	found := false
	for i, m := range s.mistakes {
		if m.ID == id {
			s.mistakes = append(s.mistakes[:i], s.mistakes[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "mistake not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
