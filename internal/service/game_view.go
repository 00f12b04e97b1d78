package service

import (
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
	"github.com/KoshmareG/KHSM/internal/game"
)

// QuestionView is a question as shown to the player. CorrectLetter is only
// filled once the game is over.
type QuestionView struct {
	Level         int                    `json:"level"`
	Text          string                 `json:"text"`
	Variants      map[game.Letter]string `json:"variants"`
	Available     []game.Letter          `json:"available"`
	Help          game.Help              `json:"help"`
	Payout        int64                  `json:"payout"`
	CorrectLetter game.Letter            `json:"correct_letter,omitempty"`
}

// GameView is what clients get for a game.
type GameView struct {
	ID             string            `json:"id"`
	UserID         int64             `json:"user_id"`
	Status         domain.GameStatus `json:"status"`
	StatusLabel    string            `json:"status_label"`
	CurrentLevel   int               `json:"current_level"`
	Levels         int               `json:"levels"`
	Prize          int64             `json:"prize"`
	FireproofPrize int64             `json:"fireproof_prize"`
	CreatedAt      time.Time         `json:"created_at"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
	Deadline       time.Time         `json:"deadline"`

	FiftyFiftyUsed   bool `json:"fifty_fifty_used"`
	AudienceHelpUsed bool `json:"audience_help_used"`
	FriendCallUsed   bool `json:"friend_call_used"`

	Question *QuestionView `json:"question,omitempty"`
}

// AnswerResult is returned after an answer.
type AnswerResult struct {
	Correct bool      `json:"correct"`
	Game    *GameView `json:"game"`
}

// NewGameView renders g for its owner.
func NewGameView(g *game.Game) *GameView {
	st := g.Status()
	ladder := g.Rules().Ladder

	v := &GameView{
		ID:               g.ID,
		UserID:           g.UserID,
		Status:           st,
		StatusLabel:      st.Label(),
		CurrentLevel:     g.CurrentLevel,
		Levels:           ladder.Levels(),
		Prize:            g.Prize,
		FireproofPrize:   ladder.FireproofPayoutBelow(g.PreviousLevel()),
		CreatedAt:        g.CreatedAt,
		FinishedAt:       g.FinishedAt,
		Deadline:         g.Deadline(),
		FiftyFiftyUsed:   g.FiftyFiftyUsed,
		AudienceHelpUsed: g.AudienceHelpUsed,
		FriendCallUsed:   g.FriendCallUsed,
	}

	q := g.CurrentQuestion()
	if q == nil {
		// после победы показываем последний вопрос
		q = g.PreviousQuestion()
	}
	if q == nil {
		return v
	}

	v.Question = &QuestionView{
		Level:     q.Level,
		Text:      q.Question.Text,
		Variants:  q.Variants(),
		Available: q.AvailableLetters(),
		Help:      q.Help,
		Payout:    ladder.PayoutAt(q.Level),
	}
	if g.Finished() {
		v.Question.CorrectLetter = q.CorrectLetter()
	}
	return v
}
