package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/luwen/lingoflash/internal/errors"
	"github.com/luwen/lingoflash/internal/models"
	"github.com/luwen/lingoflash/internal/session"
)

// fakeGateway records calls and serves canned responses. Behaviors are
// overridable per test.
type fakeGateway struct {
	mu sync.Mutex

	queue    []models.ReviewItem
	fetchErr error
	// fetchBlock, when set, is received from before FetchQueue returns.
	fetchBlock chan struct{}
	fetches    int

	submitErr error
	submitted []submittedResult

	questions   []models.QuizQuestion
	generateErr error
	generations int

	batches [][]models.MissedQuestion
	flushErr error
}

type submittedResult struct {
	ItemID  int64
	Quality models.Quality
}

func (f *fakeGateway) FetchQueue(ctx context.Context) ([]models.ReviewItem, error) {
	f.mu.Lock()
	f.fetches++
	queue := f.queue
	block := f.fetchBlock
	err := f.fetchErr
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return queue, nil
}

func (f *fakeGateway) SubmitResult(ctx context.Context, itemID int64, quality models.Quality) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, submittedResult{ItemID: itemID, Quality: quality})
	return f.submitErr
}

func (f *fakeGateway) GenerateQuiz(ctx context.Context, contentID int64) ([]models.QuizQuestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generations++
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.questions, nil
}

func (f *fakeGateway) SubmitMissedBatch(ctx context.Context, records []models.MissedQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, records)
	return f.flushErr
}

func (f *fakeGateway) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func (f *fakeGateway) submittedResults() []submittedResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]submittedResult, len(f.submitted))
	copy(out, f.submitted)
	return out
}

// fakeAudio records play attempts.
type fakeAudio struct {
	mu     sync.Mutex
	played []string
	stops  int
}

func (f *fakeAudio) Play(ctx context.Context, sourceKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, sourceKey)
	return nil
}

func (f *fakeAudio) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeAudio) playedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.played))
	copy(out, f.played)
	return out
}

func threeItemQueue() []models.ReviewItem {
	return []models.ReviewItem{
		{ID: 1, Spell: "apple"},
		{ID: 2, Spell: "banana"},
		{ID: 3, Spell: "cherry"},
	}
}

func TestReview_FetchQueueActivatesSession(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	sess := session.NewReview(gw)

	assert.Equal(t, session.ReviewIdle, sess.Status())
	require.NoError(t, sess.FetchQueue(context.Background()))

	assert.Equal(t, session.ReviewActive, sess.Status())
	assert.Equal(t, 0, sess.Position())
	assert.Equal(t, 3, sess.QueueLen())

	item, ok := sess.CurrentItem()
	require.True(t, ok)
	assert.Equal(t, "apple", item.Spell)
}

func TestReview_SubmitAdvancesThroughQueue(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	sess := session.NewReview(gw)
	require.NoError(t, sess.FetchQueue(context.Background()))

	require.NoError(t, sess.SubmitResult(models.QualityEasy))
	assert.Equal(t, 1, sess.Position())
	assert.Equal(t, session.ReviewActive, sess.Status())

	require.NoError(t, sess.SubmitResult(models.QualityEasy))
	assert.Equal(t, 2, sess.Position())
	assert.Equal(t, session.ReviewActive, sess.Status())

	require.NoError(t, sess.SubmitResult(models.QualityEasy))
	assert.Equal(t, 3, sess.Position())
	assert.Equal(t, session.ReviewFinished, sess.Status(), "finishing the last item ends the session")

	// Queue exhausted: further submits are rejected and do not move the cursor.
	err := sess.SubmitResult(models.QualityEasy)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Equal(t, 3, sess.Position())

	results := gw.submittedResults()
	require.Len(t, results, 3)
	assert.Equal(t, int64(1), results[0].ItemID)
	assert.Equal(t, int64(3), results[2].ItemID)
}

func TestReview_RefetchResetsCursor(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	sess := session.NewReview(gw)
	require.NoError(t, sess.FetchQueue(context.Background()))

	for i := 0; i < 3; i++ {
		require.NoError(t, sess.SubmitResult(models.QualityHard))
	}
	require.Equal(t, session.ReviewFinished, sess.Status())

	// "One more round" re-fetches and starts over.
	require.NoError(t, sess.FetchQueue(context.Background()))
	assert.Equal(t, 0, sess.Position())
	assert.Equal(t, session.ReviewActive, sess.Status())
}

func TestReview_OptimisticAdvanceIgnoresSubmitFailure(t *testing.T) {
	ok := &fakeGateway{queue: threeItemQueue()}
	failing := &fakeGateway{queue: threeItemQueue(), submitErr: errors.New("gateway down")}

	okSess := session.NewReview(ok)
	failSess := session.NewReview(failing)
	require.NoError(t, okSess.FetchQueue(context.Background()))
	require.NoError(t, failSess.FetchQueue(context.Background()))

	// The sequence of position/status transitions must be identical whether
	// the gateway accepts or rejects every submission.
	for i := 0; i < 3; i++ {
		require.NoError(t, okSess.SubmitResult(models.QualityForgot))
		require.NoError(t, failSess.SubmitResult(models.QualityForgot))
		assert.Equal(t, okSess.Position(), failSess.Position())
		assert.Equal(t, okSess.Status(), failSess.Status())
	}
	assert.Equal(t, session.ReviewFinished, failSess.Status())
}

func TestReview_FetchFailureRestoresPriorStatus(t *testing.T) {
	gw := &fakeGateway{fetchErr: errors.New("network down")}
	sess := session.NewReview(gw)

	err := sess.FetchQueue(context.Background())
	require.Error(t, err)
	assert.Equal(t, session.ReviewIdle, sess.Status(), "failed fetch must not leave the session loading")
	assert.Equal(t, 0, sess.QueueLen(), "no partial queue is applied")
}

func TestReview_EmptyQueueIsNotFinished(t *testing.T) {
	gw := &fakeGateway{queue: nil}
	sess := session.NewReview(gw)
	require.NoError(t, sess.FetchQueue(context.Background()))

	assert.Equal(t, session.ReviewActive, sess.Status())
	assert.True(t, sess.NothingToReview())

	_, ok := sess.CurrentItem()
	assert.False(t, ok)
}

func TestReview_InvalidQualityRejected(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	sess := session.NewReview(gw)
	require.NoError(t, sess.FetchQueue(context.Background()))

	for _, q := range []models.Quality{1, 2, 4, -1, 6} {
		err := sess.SubmitResult(q)
		assert.True(t, apperrors.IsValidationError(err), "quality %d must be rejected", int(q))
	}
	assert.Equal(t, 0, sess.Position())
	assert.Empty(t, gw.submittedResults())
}

func TestReview_AudioPlaysOnEveryTransition(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	audio := &fakeAudio{}
	sess := session.NewReview(gw, session.WithReviewAudio(audio))
	require.NoError(t, sess.FetchQueue(context.Background()))

	require.NoError(t, sess.SubmitResult(models.QualityEasy))
	require.NoError(t, sess.SubmitResult(models.QualityEasy))
	require.NoError(t, sess.SubmitResult(models.QualityEasy))

	// Session start plays the first item; each advance plays the next one.
	// No attempt fires for the position past the end of the queue.
	assert.Equal(t, []string{"apple", "banana", "cherry"}, audio.playedKeys())
}

func TestReview_CloseStopsAudioAndDiscardsLateFetch(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{queue: threeItemQueue(), fetchBlock: block}
	audio := &fakeAudio{}
	sess := session.NewReview(gw, session.WithReviewAudio(audio))

	done := make(chan error, 1)
	go func() { done <- sess.FetchQueue(context.Background()) }()
	require.Eventually(t, func() bool { return gw.fetchCount() == 1 }, time.Second, time.Millisecond)

	sess.Close()
	close(block)
	require.NoError(t, <-done)

	// The fetch completed after teardown: its result must not be applied.
	assert.Equal(t, 0, sess.QueueLen())
	assert.Empty(t, audio.playedKeys())

	f := audio.stopsCount()
	assert.Equal(t, 1, f)

	err := sess.FetchQueue(context.Background())
	assert.True(t, apperrors.IsValidationError(err), "closed session rejects further fetches")
}

func TestReview_FailedRetryDuringInFlightFetchLeavesNotLoading(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{queue: threeItemQueue(), fetchBlock: block}
	sess := session.NewReview(gw)

	done := make(chan error, 1)
	go func() { done <- sess.FetchQueue(context.Background()) }()
	require.Eventually(t, func() bool { return gw.fetchCount() == 1 }, time.Second, time.Millisecond)

	// Retry issued while the first fetch is in flight; the retry fails
	// fast, and the superseded first fetch is discarded on completion.
	gw.mu.Lock()
	gw.fetchBlock = nil
	gw.fetchErr = errors.New("network down")
	gw.mu.Unlock()
	require.Error(t, sess.FetchQueue(context.Background()))

	close(block)
	require.NoError(t, <-done)

	// With nothing in flight anymore the session must not read as loading.
	assert.Equal(t, session.ReviewIdle, sess.Status())
	assert.Equal(t, 0, sess.QueueLen())
}

func TestReview_FailedRetryRestoresActiveSession(t *testing.T) {
	gw := &fakeGateway{queue: threeItemQueue()}
	sess := session.NewReview(gw)
	require.NoError(t, sess.FetchQueue(context.Background()))
	require.Equal(t, session.ReviewActive, sess.Status())

	block := make(chan struct{})
	gw.mu.Lock()
	gw.fetchBlock = block
	gw.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- sess.FetchQueue(context.Background()) }()
	require.Eventually(t, func() bool { return gw.fetchCount() == 2 }, time.Second, time.Millisecond)

	gw.mu.Lock()
	gw.fetchBlock = nil
	gw.fetchErr = errors.New("network down")
	gw.mu.Unlock()
	require.Error(t, sess.FetchQueue(context.Background()))

	close(block)
	require.NoError(t, <-done)

	assert.Equal(t, session.ReviewActive, sess.Status())
	assert.Equal(t, 3, sess.QueueLen(), "the active queue survives the failed refetch")
}

func TestReview_NewerFetchWins(t *testing.T) {
	block := make(chan struct{})
	gw := &fakeGateway{queue: threeItemQueue(), fetchBlock: block}
	sess := session.NewReview(gw)

	done := make(chan error, 1)
	go func() { done <- sess.FetchQueue(context.Background()) }()
	require.Eventually(t, func() bool { return gw.fetchCount() == 1 }, time.Second, time.Millisecond)

	// Second fetch issued while the first is still in flight; it sees a
	// two-item queue and must not be overwritten by the first completion.
	gw.mu.Lock()
	gw.fetchBlock = nil
	gw.queue = threeItemQueue()[:2]
	gw.mu.Unlock()

	require.NoError(t, sess.FetchQueue(context.Background()))
	close(block)
	require.NoError(t, <-done)

	assert.Equal(t, 2, sess.QueueLen())
	assert.Equal(t, session.ReviewActive, sess.Status())
}

func (f *fakeAudio) stopsCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}
