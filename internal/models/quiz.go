package models

// QuizQuestion is one multiple-choice item generated for an article.
// Each option carries its label as its first character ("A) ..."); Answer
// is the correct label and is compared case-insensitively.
type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// MissedQuestion is the captured shape of an incorrectly answered quiz
// question, batched to the mistake ledger when the quiz finishes.
type MissedQuestion struct {
	ID            int64    `json:"id,omitempty"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	UserAnswer    string   `json:"user_answer"`
	Explanation   string   `json:"explanation"`
	ArticleTitle  string   `json:"from_article_title"`
}
