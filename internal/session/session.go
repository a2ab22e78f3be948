// Package session holds the study and assessment session state machines.
// Sessions are explicitly constructed objects with injected collaborators,
// so a fake gateway or a silent audio manager can stand in during tests.
package session

import (
	"context"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
	"github.com/luwen/lingoflash/internal/worker"
)

// Audio is the playback contract sessions depend on. The audio manager is
// the single owner of the playback resource; sessions only trigger it.
type Audio interface {
	Play(ctx context.Context, sourceKey string) error
	Stop()
}

// Recorder receives best-effort local history writes. A nil Recorder is
// valid; recording never blocks or fails a session.
type Recorder interface {
	RecordReview(ctx context.Context, rec models.ReviewRecord) error
	RecordQuizOutcome(ctx context.Context, outcome models.QuizOutcome) error
}

// Dispatcher carries fire-and-forget work off the caller's path.
// worker.Pool satisfies it. A nil Dispatcher runs jobs inline.
type Dispatcher interface {
	TryDispatch(job worker.Job) bool
}

// dispatch hands a job to the dispatcher, or runs it inline when none is
// configured. Errors stay on the job's own path; the caller never sees them.
func dispatch(d Dispatcher, job worker.Func) {
	if d != nil {
		d.TryDispatch(job)
		return
	}
	if err := job.Fn(context.Background()); err != nil {
		logger.Default().Error("job %s failed: %v", job.Label, err)
	}
}
