package models

// QuestionRecord is one quiz question as stored durably and as carried
// through the per-section pool. Records are immutable once created.
type QuestionRecord struct {
	ID            int    `json:"id,omitempty"`
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Section       string `json:"section"`
	QuestionImage string `json:"question_image"`
	AnswerImage   string `json:"answer_image"`
}
