// internal/live/messages.go
package live

import (
	"fmt"

	"github.com/vikt-quiz/vikt/internal/models"
)

// Message type tags on the wire.
const (
	MsgTypeQuestion     = "question"
	MsgTypeRating       = "rating"
	MsgTypeGameOver     = "game_over"
	MsgTypeClearStorage = "clear_storage"
	MsgTypeError        = "error"
)

// QuestionMessage is the payload players (and spectators in question
// mode) receive on every state push.
type QuestionMessage struct {
	Type          string `json:"type"`
	Content       string `json:"content"`
	Section       string `json:"section"`
	Answer        string `json:"answer"`
	QuestionImage string `json:"question_image"`
	AnswerImage   string `json:"answer_image"`
	Timer         bool   `json:"timer"`
	ShowAnswer    bool   `json:"show_answer"`
}

// RatingMessage is the leaderboard payload spectators receive in
// rating mode.
type RatingMessage struct {
	Type    string               `json:"type"`
	Content []models.PlayerScore `json:"content"`
	Section string               `json:"section"`
}

// SignalMessage carries out-of-band notices: clear_storage on stop,
// game_over on termination, error diagnostics.
type SignalMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// questionMessageFromState shapes a QuestionMessage from one state
// snapshot. content overrides the current question text when non-empty
// (section headers, terminal notices).
func questionMessageFromState(state *models.GameState, content string) QuestionMessage {
	if content == "" {
		content = deref(state.CurrentQuestion)
	}
	return QuestionMessage{
		Type:          MsgTypeQuestion,
		Content:       content,
		Section:       state.CurrentSection(),
		Answer:        deref(state.CurrentAnswer),
		QuestionImage: deref(state.CurrentQuestionImage),
		AnswerImage:   deref(state.CurrentAnswerImage),
		Timer:         state.TimerActive,
		ShowAnswer:    state.ShowAnswer,
	}
}

func ratingMessage(scores []models.PlayerScore, section string) RatingMessage {
	if scores == nil {
		scores = []models.PlayerScore{}
	}
	return RatingMessage{Type: MsgTypeRating, Content: scores, Section: section}
}

// sectionHeader is the round banner broadcast at each section boundary.
func sectionHeader(index int, name string) string {
	return fmt.Sprintf("Round %d: %s", index+1, name)
}
