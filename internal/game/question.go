package game

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/KoshmareG/KHSM/internal/domain"
)

var (
	ErrHelpAlreadyUsed = errors.New("help already used")
	ErrInvalidLetter   = errors.New("invalid answer letter")
	ErrUnknownHelp     = errors.New("unknown help type")
)

// Letter - буква варианта ответа, как её видит игрок
type Letter string

const (
	LetterA Letter = "a"
	LetterB Letter = "b"
	LetterC Letter = "c"
	LetterD Letter = "d"
)

// Letters lists presentation letters in display order.
var Letters = [domain.AnswersCount]Letter{LetterA, LetterB, LetterC, LetterD}

func (l Letter) index() int {
	for i, x := range Letters {
		if x == l {
			return i
		}
	}
	return -1
}

// Valid reports whether l is one of a, b, c, d.
func (l Letter) Valid() bool {
	return l.index() >= 0
}

// Upper returns the letter as shown to the player.
func (l Letter) Upper() string {
	return strings.ToUpper(string(l))
}

// HelpKind - тип подсказки
type HelpKind string

const (
	HelpFiftyFifty   HelpKind = "fifty_fifty"
	HelpAudienceHelp HelpKind = "audience_help"
	HelpFriendCall   HelpKind = "friend_call"
)

// HelpKinds lists all lifelines.
var HelpKinds = []HelpKind{HelpFiftyFifty, HelpAudienceHelp, HelpFriendCall}

// Valid reports whether k names a known lifeline.
func (k HelpKind) Valid() bool {
	switch k {
	case HelpFiftyFifty, HelpAudienceHelp, HelpFriendCall:
		return true
	}
	return false
}

// Help holds lifeline results recorded for one question. A nil/empty field
// means the lifeline was not used on this question.
type Help struct {
	FiftyFifty   []Letter       `json:"fifty_fifty,omitempty"`
	AudienceHelp map[Letter]int `json:"audience_help,omitempty"`
	FriendCall   string         `json:"friend_call,omitempty"`
}

// Used reports whether kind has a recorded result.
func (h Help) Used(kind HelpKind) bool {
	switch kind {
	case HelpFiftyFifty:
		return len(h.FiftyFifty) > 0
	case HelpAudienceHelp:
		return len(h.AudienceHelp) > 0
	case HelpFriendCall:
		return h.FriendCall != ""
	}
	return false
}

func (h Help) clone() Help {
	cp := Help{FriendCall: h.FriendCall}
	if h.FiftyFifty != nil {
		cp.FiftyFifty = append([]Letter(nil), h.FiftyFifty...)
	}
	if h.AudienceHelp != nil {
		cp.AudienceHelp = make(map[Letter]int, len(h.AudienceHelp))
		for k, v := range h.AudienceHelp {
			cp.AudienceHelp[k] = v
		}
	}
	return cp
}

// GameQuestion is a question bound to one game at one level. Mapping[i] is
// the answer slot shown under Letters[i]; it never changes after creation.
type GameQuestion struct {
	Question domain.Question
	Level    int
	Mapping  [domain.AnswersCount]int
	Help     Help
}

// NewGameQuestion wraps q with a uniformly shuffled letter mapping.
func NewGameQuestion(q domain.Question, level int, rng *rand.Rand) *GameQuestion {
	gq := &GameQuestion{Question: q, Level: level}
	copy(gq.Mapping[:], rng.Perm(domain.AnswersCount))
	return gq
}

// AnswerText returns the answer shown under letter, or "" for an unknown letter.
func (q *GameQuestion) AnswerText(letter Letter) string {
	i := letter.index()
	if i < 0 {
		return ""
	}
	return q.Question.Answers[q.Mapping[i]]
}

// IsCorrect reports whether letter maps to the correct answer slot.
func (q *GameQuestion) IsCorrect(letter Letter) bool {
	i := letter.index()
	if i < 0 {
		return false
	}
	return q.Mapping[i] == q.Question.CorrectIndex
}

// CorrectLetter returns the letter the correct answer is shown under.
func (q *GameQuestion) CorrectLetter() Letter {
	for i, slot := range q.Mapping {
		if slot == q.Question.CorrectIndex {
			return Letters[i]
		}
	}
	// mapping всегда биекция, сюда не попадаем
	return ""
}

// Variants returns letter -> answer text for rendering.
func (q *GameQuestion) Variants() map[Letter]string {
	res := make(map[Letter]string, len(Letters))
	for _, l := range Letters {
		res[l] = q.AnswerText(l)
	}
	return res
}

// AvailableLetters returns letters still in play: the fifty-fifty pair when
// that help was used on this question, all four otherwise.
func (q *GameQuestion) AvailableLetters() []Letter {
	if len(q.Help.FiftyFifty) > 0 {
		res := make([]Letter, 0, len(q.Help.FiftyFifty))
		// порядок как на экране
		for _, l := range Letters {
			for _, k := range q.Help.FiftyFifty {
				if k == l {
					res = append(res, l)
				}
			}
		}
		return res
	}
	all := Letters
	return all[:]
}

// RecordHelp stores the lifeline result for kind. A kind may be recorded once.
func (q *GameQuestion) RecordHelp(kind HelpKind, payload Help) error {
	if !kind.Valid() {
		return ErrUnknownHelp
	}
	if q.Help.Used(kind) {
		return ErrHelpAlreadyUsed
	}

	switch kind {
	case HelpFiftyFifty:
		q.Help.FiftyFifty = append([]Letter(nil), payload.FiftyFifty...)
	case HelpAudienceHelp:
		q.Help.AudienceHelp = payload.clone().AudienceHelp
	case HelpFriendCall:
		q.Help.FriendCall = payload.FriendCall
	}
	return nil
}

func (q *GameQuestion) clone() *GameQuestion {
	cp := *q
	cp.Help = q.Help.clone()
	return &cp
}
