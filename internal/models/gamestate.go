package models

// Display modes for spectators.
const (
	DisplayModeQuestion = "question"
	DisplayModeRating   = "rating"
)

// GameState mirrors the single gamestatus row that drives the live
// session. Nullable columns map to pointers; nil means "no active
// question".
type GameState struct {
	ID                  int      `json:"id"`
	Sections            []string `json:"sections"`
	CurrentSectionIndex int      `json:"current_section_index"`

	CurrentQuestion      *string `json:"current_question"`
	CurrentAnswer        *string `json:"current_answer"`
	CurrentQuestionImage *string `json:"current_question_image"`
	CurrentAnswerImage   *string `json:"current_answer_image"`

	GameStarted          bool   `json:"game_started"`
	GameOver             bool   `json:"game_over"`
	TimerActive          bool   `json:"timer_active"`
	ShowAnswer           bool   `json:"show_answer"`
	SpectatorDisplayMode string `json:"spectator_display_mode"`
}

// CurrentSection returns the active section name, guarding the index
// against the game-over position (index == len(Sections)).
func (s *GameState) CurrentSection() string {
	if s.CurrentSectionIndex < 0 || s.CurrentSectionIndex >= len(s.Sections) {
		return ""
	}
	return s.Sections[s.CurrentSectionIndex]
}

// QuestionActive reports whether a question is currently being shown.
func (s *GameState) QuestionActive() bool {
	return s.CurrentQuestion != nil
}
