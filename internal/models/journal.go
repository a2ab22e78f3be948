package models

import "time"

// ReviewRecord is one row of local review history.
type ReviewRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	ItemID     int64     `json:"item_id"`
	Spell      string    `json:"spell"`
	Quality    Quality   `json:"quality"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

// QuizOutcome is the locally recorded result of one finished quiz.
type QuizOutcome struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	ContentID int64     `json:"content_id"`
	Title     string    `json:"title"`
	Total     int       `json:"total"`
	Correct   int       `json:"correct"`
	Missed    int       `json:"missed"`
	TakenAt   time.Time `json:"taken_at"`
}

// ReviewFilter narrows journal history queries. Zero values mean "any".
type ReviewFilter struct {
	SessionID string
	Spell     string
	Quality   *Quality
	Since     time.Time
	Limit     int
}

// StudySummary backs the daily-progress display.
type StudySummary struct {
	ReviewsToday int `json:"reviews_today"`
	QuizzesToday int `json:"quizzes_today"`
	MissedToday  int `json:"missed_today"`
	ReviewsTotal int `json:"reviews_total"`
}
