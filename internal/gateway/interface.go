package gateway

import (
	"context"

	"github.com/luwen/lingoflash/internal/models"
)

// Interface defines the remote operations the session layer depends on.
// This interface enables testability by allowing fake implementations.
type Interface interface {
	// FetchQueue returns the day's ordered review queue.
	FetchQueue(ctx context.Context) ([]models.ReviewItem, error)

	// SubmitResult transmits one quality-scored review result. The
	// scheduler's next-due computation is opaque to the client.
	SubmitResult(ctx context.Context, itemID int64, quality models.Quality) error

	// GenerateQuiz fetches or generates the question set for an article.
	// Generation may take several seconds; that is expected latency.
	GenerateQuiz(ctx context.Context, contentID int64) ([]models.QuizQuestion, error)

	// SubmitMissedBatch persists zero or more missed questions in one call.
	SubmitMissedBatch(ctx context.Context, records []models.MissedQuestion) error
}

// Ensure Client implements the interface
var _ Interface = (*Client)(nil)
