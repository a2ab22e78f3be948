package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/luwen/lingoflash/internal/errors"
	"github.com/luwen/lingoflash/internal/gateway"
	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
	"github.com/luwen/lingoflash/internal/worker"
)

// QuizStatus is the lifecycle state of a quiz session.
type QuizStatus int

const (
	QuizLoading QuizStatus = iota
	QuizAnswering
	QuizExplaining
	QuizFinished
	QuizError
)

func (s QuizStatus) String() string {
	switch s {
	case QuizLoading:
		return "loading"
	case QuizAnswering:
		return "answering"
	case QuizExplaining:
		return "explaining"
	case QuizFinished:
		return "finished"
	case QuizError:
		return "error"
	default:
		return "unknown"
	}
}

const unknownArticleTitle = "Unknown Article"

// Quiz runs one multi-question attempt over a single article. Scoring is
// entirely local; the only remote write is the one-shot missed-question
// flush on the transition into the finished state.
type Quiz struct {
	gw       gateway.Interface
	recorder Recorder
	pool     Dispatcher
	log      *logger.Logger

	contentID int64
	title     string

	mu          sync.Mutex
	id          string
	status      QuizStatus
	initialized bool
	initErr     error
	questions   []models.QuizQuestion
	index       int
	selected    string
	submitted   bool
	score       int
	missed      []models.MissedQuestion
	finished    bool
	flushed     bool
}

// QuizOption configures a Quiz session.
type QuizOption func(*Quiz)

// WithQuizRecorder wires best-effort local history.
func WithQuizRecorder(rec Recorder) QuizOption {
	return func(q *Quiz) { q.recorder = rec }
}

// WithQuizDispatcher wires the background submit pool.
func WithQuizDispatcher(d Dispatcher) QuizOption {
	return func(q *Quiz) { q.pool = d }
}

// NewQuiz creates a quiz session for one article. The title is stamped on
// missed-question records; an empty title falls back to a placeholder.
func NewQuiz(gw gateway.Interface, contentID int64, title string, opts ...QuizOption) *Quiz {
	if strings.TrimSpace(title) == "" {
		title = unknownArticleTitle
	}
	q := &Quiz{
		gw:        gw,
		id:        uuid.NewString(),
		contentID: contentID,
		title:     title,
		status:    QuizLoading,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.log = logger.Default().WithPrefix("quiz").WithFields(map[string]any{
		"session_id": q.id,
		"content_id": contentID,
	})
	return q
}

// ID returns the session identifier stamped on journal rows.
func (q *Quiz) ID() string { return q.id }

// Initialize fetches the generated question set. Generation may take
// several seconds; that is expected latency, not a failure. On failure the
// session lands in QuizError and a retry requires a fresh session, so no
// partial state is ever reused.
func (q *Quiz) Initialize(ctx context.Context) error {
	q.mu.Lock()
	if q.initialized {
		q.mu.Unlock()
		return errors.NewValidationError("session", "already initialized; retry with a new session")
	}
	q.initialized = true
	q.mu.Unlock()

	q.log.Debug("requesting question set")
	questions, err := q.gw.GenerateQuiz(ctx, q.contentID)

	q.mu.Lock()
	defer q.mu.Unlock()
	if err != nil {
		q.status = QuizError
		q.initErr = err
		q.log.Error("question set unavailable: %v", err)
		return err
	}

	q.questions = questions
	q.index = 0
	if len(questions) == 0 {
		// Nothing to answer; land directly in a sane finished state.
		q.finished = true
		q.status = QuizFinished
		q.log.Warn("empty question set, finishing immediately")
		return nil
	}
	q.status = QuizAnswering
	q.log.Info("quiz ready: %d questions", len(questions))
	return nil
}

// Err returns the initialization error, if the session is in QuizError.
func (q *Quiz) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.initErr
}

// SelectOption picks an option for the current question. Selection is
// locked once the answer has been submitted.
func (q *Quiz) SelectOption(option string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status != QuizAnswering {
		return errors.NewValidationError("session", "not accepting answers")
	}
	q.selected = option
	return nil
}

// SubmitAnswer grades the current selection locally. A wrong answer
// appends exactly one missed-question record; repeat calls before Advance
// are rejected by the submitted guard.
func (q *Quiz) SubmitAnswer() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status != QuizAnswering {
		return errors.NewValidationError("session", "nothing to submit")
	}
	if q.selected == "" {
		return errors.NewValidationError("selection", "no option selected")
	}

	question := q.questions[q.index]
	q.submitted = true
	q.status = QuizExplaining

	want, wantOK := answerLabel(question.Answer)
	got, gotOK := answerLabel(q.selected)
	if wantOK && gotOK && want == got {
		q.score++
		q.log.Debug("correct answer: index=%d label=%c", q.index, got)
		return nil
	}

	userAnswer := ""
	if gotOK {
		userAnswer = string(got)
	}
	q.missed = append(q.missed, models.MissedQuestion{
		Question:      question.Question,
		Options:       question.Options,
		CorrectAnswer: strings.TrimSpace(question.Answer),
		UserAnswer:    userAnswer,
		Explanation:   question.Explanation,
		ArticleTitle:  q.title,
	})
	q.log.Debug("wrong answer: index=%d want=%q got=%q", q.index, question.Answer, userAnswer)
	return nil
}

// Advance moves to the next question, or finishes the quiz after the last
// one. The missed-question flush fires exactly once, on the transition
// into the finished state, and never blocks the results display.
func (q *Quiz) Advance() error {
	q.mu.Lock()
	if !q.submitted {
		q.mu.Unlock()
		return errors.NewValidationError("session", "current answer not submitted")
	}

	if q.index+1 < len(q.questions) {
		q.index++
		q.selected = ""
		q.submitted = false
		q.status = QuizAnswering
		q.mu.Unlock()
		return nil
	}

	q.finished = true
	q.status = QuizFinished
	shouldFlush := !q.flushed
	q.flushed = true
	records := make([]models.MissedQuestion, len(q.missed))
	copy(records, q.missed)
	outcome := models.QuizOutcome{
		SessionID: q.id,
		ContentID: q.contentID,
		Title:     q.title,
		Total:     len(q.questions),
		Correct:   q.score,
		Missed:    len(q.missed),
		TakenAt:   time.Now(),
	}
	q.mu.Unlock()

	q.log.Info("quiz finished: score=%d/%d missed=%d", outcome.Correct, outcome.Total, outcome.Missed)

	if shouldFlush && len(records) > 0 {
		gw := q.gw
		dispatch(q.pool, worker.Func{
			Label: "flush-missed-questions",
			Fn: func(ctx context.Context) error {
				return gw.SubmitMissedBatch(ctx, records)
			},
		})
	}
	if shouldFlush && q.recorder != nil {
		rec := q.recorder
		dispatch(q.pool, worker.Func{
			Label: "journal-quiz-outcome",
			Fn: func(ctx context.Context) error {
				return rec.RecordQuizOutcome(ctx, outcome)
			},
		})
	}
	return nil
}

// CurrentQuestion returns the question under the cursor while answering
// or explaining.
func (q *Quiz) CurrentQuestion() (models.QuizQuestion, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.status != QuizAnswering && q.status != QuizExplaining {
		return models.QuizQuestion{}, false
	}
	if q.index >= len(q.questions) {
		return models.QuizQuestion{}, false
	}
	return q.questions[q.index], true
}

// Selected returns the currently selected option, if any.
func (q *Quiz) Selected() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.selected
}

// Submitted reports whether the current question's answer is locked in.
func (q *Quiz) Submitted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitted
}

// Status returns the session state.
func (q *Quiz) Status() QuizStatus {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Index returns the zero-based question cursor.
func (q *Quiz) Index() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.index
}

// Len returns the number of questions in the set.
func (q *Quiz) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.questions)
}

// Score returns the running count of correct answers.
func (q *Quiz) Score() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.score
}

// Percentage returns the score as an integer percentage, with 0/0 read
// as 0%.
func (q *Quiz) Percentage() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.questions) == 0 {
		return 0
	}
	return q.score * 100 / len(q.questions)
}

// Finished reports whether the quiz has reached its terminal state.
func (q *Quiz) Finished() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.finished
}

// Missed returns a copy of the accumulated missed-question records.
func (q *Quiz) Missed() []models.MissedQuestion {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.MissedQuestion, len(q.missed))
	copy(out, q.missed)
	return out
}

// answerLabel extracts the single-character label an answer or option is
// graded by: the first non-space rune, upper-cased.
func answerLabel(s string) (rune, bool) {
	for _, r := range strings.TrimSpace(s) {
		return unicode.ToUpper(r), true
	}
	return 0, false
}
