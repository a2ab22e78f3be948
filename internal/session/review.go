package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/luwen/lingoflash/internal/errors"
	"github.com/luwen/lingoflash/internal/gateway"
	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
	"github.com/luwen/lingoflash/internal/worker"
)

// ReviewStatus is the lifecycle state of a review session.
type ReviewStatus int

const (
	ReviewIdle ReviewStatus = iota
	ReviewLoading
	ReviewActive
	ReviewFinished
)

func (s ReviewStatus) String() string {
	switch s {
	case ReviewIdle:
		return "idle"
	case ReviewLoading:
		return "loading"
	case ReviewActive:
		return "active"
	case ReviewFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Review drives one pass through the day's queue. Local state is
// authoritative: submitting a result advances the cursor immediately and
// the remote submission rides a background job whose failure is logged,
// never rolled back.
type Review struct {
	gw       gateway.Interface
	audio    Audio
	recorder Recorder
	pool     Dispatcher
	log      *logger.Logger

	mu       sync.Mutex
	id       string
	queue    []models.ReviewItem
	position int
	status   ReviewStatus
	// settled is the last non-loading status, restored when a fetch
	// fails. Overlapping fetches must not capture ReviewLoading here.
	settled ReviewStatus
	gen     uint64
	closed  bool
}

// ReviewOption configures a Review session.
type ReviewOption func(*Review)

// WithReviewAudio wires pronunciation playback.
func WithReviewAudio(a Audio) ReviewOption {
	return func(r *Review) { r.audio = a }
}

// WithReviewRecorder wires best-effort local history.
func WithReviewRecorder(rec Recorder) ReviewOption {
	return func(r *Review) { r.recorder = rec }
}

// WithReviewDispatcher wires the background submit pool.
func WithReviewDispatcher(d Dispatcher) ReviewOption {
	return func(r *Review) { r.pool = d }
}

// NewReview creates an idle review session over the given gateway.
func NewReview(gw gateway.Interface, opts ...ReviewOption) *Review {
	r := &Review{
		gw:     gw,
		id:     uuid.NewString(),
		status: ReviewIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = logger.Default().WithPrefix("review").WithField("session_id", r.id)
	return r
}

// ID returns the session identifier stamped on journal rows.
func (r *Review) ID() string { return r.id }

// FetchQueue loads (or reloads) the review queue. The session shows
// ReviewLoading for the duration of the call; on failure the previous
// status is restored and no partial queue is applied. A fetch that loses
// the race to a newer fetch or to Close discards its result.
func (r *Review) FetchQueue(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return errors.NewValidationError("session", "already closed")
	}
	if r.status != ReviewLoading {
		r.settled = r.status
	}
	r.status = ReviewLoading
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	r.log.Debug("fetching review queue")
	items, err := r.gw.FetchQueue(ctx)

	r.mu.Lock()
	if r.closed || r.gen != gen {
		r.mu.Unlock()
		r.log.Debug("discarding stale queue fetch")
		return nil
	}
	if err != nil {
		r.status = r.settled
		r.mu.Unlock()
		r.log.Error("queue fetch failed: %v", err)
		return err
	}

	r.queue = items
	r.position = 0
	r.status = ReviewActive
	current, ok := r.currentLocked()
	r.mu.Unlock()

	r.log.Info("queue loaded: %d items", len(items))
	if ok {
		r.playItem(current)
	}
	return nil
}

// SubmitResult records a quality judgment for the current item and
// advances optimistically. The remote submission and the journal write
// happen in the background and never stall or rewind the session.
func (r *Review) SubmitResult(quality models.Quality) error {
	if !quality.Valid() {
		return errors.NewValidationError("quality", fmt.Sprintf("invalid score %d", int(quality)))
	}

	r.mu.Lock()
	if r.status != ReviewActive {
		r.mu.Unlock()
		return errors.NewValidationError("session", "no active review in progress")
	}
	if r.position >= len(r.queue) {
		r.mu.Unlock()
		return errors.NewValidationError("session", "queue exhausted")
	}

	item := r.queue[r.position]
	r.position++
	if r.position == len(r.queue) {
		r.status = ReviewFinished
	}
	next, hasNext := r.currentLocked()
	newPos := r.position
	sessionID := r.id
	r.mu.Unlock()

	r.log.Debug("result recorded locally: item_id=%d quality=%s position=%d", item.ID, quality, newPos)

	gw := r.gw
	dispatch(r.pool, worker.Func{
		Label: "submit-review-result",
		Fn: func(ctx context.Context) error {
			return gw.SubmitResult(ctx, item.ID, quality)
		},
	})

	if r.recorder != nil {
		rec := r.recorder
		dispatch(r.pool, worker.Func{
			Label: "journal-review",
			Fn: func(ctx context.Context) error {
				return rec.RecordReview(ctx, models.ReviewRecord{
					SessionID:  sessionID,
					ItemID:     item.ID,
					Spell:      item.Spell,
					Quality:    quality,
					ReviewedAt: time.Now(),
				})
			},
		})
	}

	if hasNext {
		r.playItem(next)
	}
	return nil
}

// CurrentItem returns the item under the cursor while the session is active.
func (r *Review) CurrentItem() (models.ReviewItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentLocked()
}

func (r *Review) currentLocked() (models.ReviewItem, bool) {
	if r.status != ReviewActive || r.position >= len(r.queue) {
		return models.ReviewItem{}, false
	}
	return r.queue[r.position], true
}

// playItem triggers a best-effort pronunciation attempt for the item that
// just became current. Failures are the audio manager's to surface.
func (r *Review) playItem(item models.ReviewItem) {
	if r.audio == nil || item.Spell == "" {
		return
	}
	audio := r.audio
	dispatch(r.pool, worker.Func{
		Label: "play-pronunciation",
		Fn: func(ctx context.Context) error {
			return audio.Play(ctx, item.Spell)
		},
	})
}

// Status returns the session state.
func (r *Review) Status() ReviewStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Position returns the zero-based cursor.
func (r *Review) Position() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.position
}

// QueueLen returns the length of the fetched queue.
func (r *Review) QueueLen() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// NothingToReview reports the empty-queue display state, which is distinct
// from ReviewFinished.
func (r *Review) NothingToReview() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status == ReviewActive && len(r.queue) == 0
}

// Close tears the session down: playback stops and any in-flight fetch
// completion becomes a no-op.
func (r *Review) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.gen++
	r.mu.Unlock()

	if r.audio != nil {
		r.audio.Stop()
	}
	r.log.Debug("session closed")
}
