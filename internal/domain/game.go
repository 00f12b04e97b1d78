package domain

import "time"

// GameStatus - статус игры, всегда вычисляется, в базе не хранится
type GameStatus string

const (
	GameStatusInProgress GameStatus = "in_progress"
	GameStatusWon        GameStatus = "won"
	GameStatusFail       GameStatus = "fail"
	GameStatusTimeout    GameStatus = "timeout"
	GameStatusMoney      GameStatus = "money"
)

var gameStatusLabels = map[GameStatus]string{
	GameStatusInProgress: "в процессе",
	GameStatusWon:        "победа",
	GameStatusFail:       "проигрыш",
	GameStatusTimeout:    "время вышло",
	GameStatusMoney:      "деньги",
}

// Label returns the human readable status shown on the profile page.
func (s GameStatus) Label() string {
	if l, ok := gameStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Finished reports whether s is a terminal status.
func (s GameStatus) Finished() bool {
	return s != GameStatusInProgress
}

// GameSummary - строка в списке игр пользователя
type GameSummary struct {
	ID           string     `json:"id"`
	UserID       int64      `json:"user_id"`
	CurrentLevel int        `json:"current_level"`
	Prize        int64      `json:"prize"`
	Status       GameStatus `json:"status"`
	StatusLabel  string     `json:"status_label"`
	CreatedAt    time.Time  `json:"created_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	FiftyFifty   bool       `json:"fifty_fifty_used"`
	AudienceHelp bool       `json:"audience_help_used"`
	FriendCall   bool       `json:"friend_call_used"`
}
