package journal

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// ListReviews returns review history matching the filter, newest first.
func (j *Journal) ListReviews(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("journal")

	query := sqlBuilder.
		Select("id", "session_id", "item_id", "spell", "quality", "reviewed_at").
		From("reviews").
		OrderBy("reviewed_at DESC", "id DESC")

	if filter.SessionID != "" {
		query = query.Where(squirrel.Eq{"session_id": filter.SessionID})
	}
	if filter.Spell != "" {
		query = query.Where(squirrel.Eq{"spell": filter.Spell})
	}
	if filter.Quality != nil {
		query = query.Where(squirrel.Eq{"quality": int(*filter.Quality)})
	}
	if !filter.Since.IsZero() {
		query = query.Where(squirrel.GtOrEq{"reviewed_at": filter.Since})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list reviews: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []models.ReviewRecord
	for rows.Next() {
		var rec models.ReviewRecord
		var quality int
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.ItemID, &rec.Spell, &quality, &rec.ReviewedAt); err != nil {
			return nil, err
		}
		rec.Quality = models.Quality(quality)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Summary returns the counters backing the daily-progress display.
func (j *Journal) Summary(ctx context.Context) (models.StudySummary, error) {
	log := logger.FromContext(ctx).WithPrefix("journal")

	var s models.StudySummary
	err := j.db.QueryRowContext(ctx, `
SELECT
    (SELECT COUNT(*) FROM reviews WHERE date(reviewed_at) = date('now')),
    (SELECT COUNT(*) FROM quiz_outcomes WHERE date(taken_at) = date('now')),
    (SELECT COALESCE(SUM(missed), 0) FROM quiz_outcomes WHERE date(taken_at) = date('now')),
    (SELECT COUNT(*) FROM reviews)
`).Scan(&s.ReviewsToday, &s.QuizzesToday, &s.MissedToday, &s.ReviewsTotal)
	if err != nil {
		log.Error("failed to load summary: %v", err)
		return models.StudySummary{}, err
	}
	return s, nil
}
