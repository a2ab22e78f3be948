// Package journal keeps a local SQLite history of review results and quiz
// outcomes. Writes are best-effort companions to the remote submissions;
// a journal failure never blocks a session.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/luwen/lingoflash/internal/logger"
	"github.com/luwen/lingoflash/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Journal struct {
	db  *sql.DB
	log *logger.Logger
}

func Open(path string) (*Journal, error) {
	log := logger.Default().WithPrefix("journal")

	dsn := fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", path)
	log.Info("opening journal: %s", path)

	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Error("failed to open journal: %v", err)
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1) // single writer

	j := &Journal{db: sqlDB, log: log}

	if err := j.applyMigrations(context.Background()); err != nil {
		log.Error("failed to apply migrations: %v", err)
		sqlDB.Close()
		return nil, err
	}

	log.Info("journal ready")
	return j, nil
}

func (j *Journal) applyMigrations(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return err
	}

	for _, entry := range entries {
		version := entry.Name()
		var n int
		err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			j.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile("migrations/" + version)
		if err != nil {
			return err
		}
		if _, err := j.db.ExecContext(ctx, string(sqlBytes)); err != nil {
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := j.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return err
		}
		j.log.Debug("applied migration %s", version)
	}
	return nil
}

func (j *Journal) Close() error {
	j.log.Debug("closing journal")
	return j.db.Close()
}

// RecordReview appends one review-history row.
func (j *Journal) RecordReview(ctx context.Context, rec models.ReviewRecord) error {
	log := logger.FromContext(ctx).WithPrefix("journal")
	log.Debug("recording review: item_id=%d quality=%d", rec.ItemID, int(rec.Quality))

	reviewedAt := rec.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO reviews (session_id, item_id, spell, quality, reviewed_at)
VALUES (?, ?, ?, ?, ?)
`, rec.SessionID, rec.ItemID, rec.Spell, int(rec.Quality), reviewedAt)
	if err != nil {
		log.Error("failed to record review: %v", err)
	}
	return err
}

// RecordQuizOutcome appends one finished-quiz row.
func (j *Journal) RecordQuizOutcome(ctx context.Context, o models.QuizOutcome) error {
	log := logger.FromContext(ctx).WithPrefix("journal")
	log.Debug("recording quiz outcome: content_id=%d score=%d/%d", o.ContentID, o.Correct, o.Total)

	takenAt := o.TakenAt
	if takenAt.IsZero() {
		takenAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
INSERT INTO quiz_outcomes (session_id, content_id, title, total, correct, missed, taken_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, o.SessionID, o.ContentID, o.Title, o.Total, o.Correct, o.Missed, takenAt)
	if err != nil {
		log.Error("failed to record quiz outcome: %v", err)
	}
	return err
}
