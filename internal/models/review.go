package models

// Quality is the closed scale of recall judgments sent to the remote
// scheduler. Only the three named values are valid; the scheduler's
// interpretation of them is opaque to this client.
type Quality int

const (
	QualityForgot Quality = 0
	QualityHard   Quality = 3
	QualityEasy   Quality = 5
)

func (q Quality) Valid() bool {
	switch q {
	case QualityForgot, QualityHard, QualityEasy:
		return true
	}
	return false
}

func (q Quality) String() string {
	switch q {
	case QualityForgot:
		return "forgot"
	case QualityHard:
		return "hard"
	case QualityEasy:
		return "easy"
	default:
		return "unknown"
	}
}

// AIExample is an optional generated example sentence attached to a word.
type AIExample struct {
	English string `json:"en"`
	Chinese string `json:"cn"`
}

// ReviewItem is one vocabulary unit queued for study. Items are immutable
// for the lifetime of a session; Spell doubles as the audio lookup key.
type ReviewItem struct {
	ID          int64      `json:"id"`
	Spell       string     `json:"spell"`
	Phonetic    string     `json:"phonetic,omitempty"`
	Translation string     `json:"translation,omitempty"`
	AIExample   *AIExample `json:"ai_sentence,omitempty"`
}
