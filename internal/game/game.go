package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/KoshmareG/KHSM/internal/domain"
)

var (
	ErrGameFinished  = errors.New("game is finished")
	ErrQuestionCount = errors.New("question count does not match ladder")
)

// DefaultTimeLimit - сколько длится одна игра
const DefaultTimeLimit = time.Hour

// Rules is the configuration a game is played under.
type Rules struct {
	Ladder    *PrizeLadder
	TimeLimit time.Duration
}

// DefaultRules returns the default ladder with a one hour limit.
func DefaultRules() Rules {
	return Rules{Ladder: DefaultLadder(), TimeLimit: DefaultTimeLimit}
}

// State is everything stored about a game. Status is not part of it: it is
// derived from FinishedAt, IsFailed, CurrentLevel and the game age.
type State struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"user_id"`
	Questions    []*GameQuestion `json:"-"`
	CurrentLevel int             `json:"current_level"`
	IsFailed     bool            `json:"is_failed"`
	Prize        int64           `json:"prize"`
	CreatedAt    time.Time       `json:"created_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`

	FiftyFiftyUsed   bool `json:"fifty_fifty_used"`
	AudienceHelpUsed bool `json:"audience_help_used"`
	FriendCallUsed   bool `json:"friend_call_used"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	cp := *s
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		cp.FinishedAt = &t
	}
	cp.Questions = make([]*GameQuestion, len(s.Questions))
	for i, q := range s.Questions {
		cp.Questions[i] = q.clone()
	}
	return &cp
}

// Status derives the game status under rules r.
func (s *State) Status(r Rules) domain.GameStatus {
	if s.FinishedAt == nil {
		return domain.GameStatusInProgress
	}

	if s.IsFailed {
		if s.FinishedAt.Sub(s.CreatedAt) > r.TimeLimit {
			return domain.GameStatusTimeout
		}
		return domain.GameStatusFail
	}

	if s.CurrentLevel >= r.Ladder.Levels() {
		return domain.GameStatusWon
	}
	return domain.GameStatusMoney
}

func (s *State) helpUsed(kind HelpKind) bool {
	switch kind {
	case HelpFiftyFifty:
		return s.FiftyFiftyUsed
	case HelpAudienceHelp:
		return s.AudienceHelpUsed
	case HelpFriendCall:
		return s.FriendCallUsed
	}
	return false
}

func (s *State) markHelp(kind HelpKind) {
	switch kind {
	case HelpFiftyFifty:
		s.FiftyFiftyUsed = true
	case HelpAudienceHelp:
		s.AudienceHelpUsed = true
	case HelpFriendCall:
		s.FriendCallUsed = true
	}
}

// Game applies the rules to a State. Not safe for concurrent use: callers
// serialize operations on the same game.
type Game struct {
	*State
	rules Rules
	rng   *rand.Rand
	now   func() time.Time
}

type Option func(*Game)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Game) { g.now = now }
}

// WithRand sets the randomness source for the letter mapping and lifelines.
func WithRand(rng *rand.Rand) Option {
	return func(g *Game) { g.rng = rng }
}

// NewRand returns a math/rand source seeded from crypto/rand.
func NewRand() *rand.Rand {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
}

func build(s *State, rules Rules, opts []Option) *Game {
	g := &Game{State: s, rules: rules, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = NewRand()
	}
	return g
}

// New starts a game at level 0. questions[i] is played at level i and the
// count must match the ladder.
func New(id string, userID int64, questions []domain.Question, rules Rules, opts ...Option) (*Game, error) {
	if len(questions) != rules.Ladder.Levels() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrQuestionCount, len(questions), rules.Ladder.Levels())
	}

	g := build(&State{ID: id, UserID: userID}, rules, opts)
	g.CreatedAt = g.now()
	g.Questions = make([]*GameQuestion, len(questions))
	for i, q := range questions {
		g.Questions[i] = NewGameQuestion(q, i, g.rng)
	}

	return g, nil
}

// Restore wraps a previously saved state.
func Restore(s *State, rules Rules, opts ...Option) *Game {
	return build(s, rules, opts)
}

// Rules returns the rules the game is played under.
func (g *Game) Rules() Rules {
	return g.rules
}

// Status returns the derived status.
func (g *Game) Status() domain.GameStatus {
	return g.State.Status(g.rules)
}

// Finished reports whether the game has a finish timestamp.
func (g *Game) Finished() bool {
	return g.FinishedAt != nil
}

// Deadline returns the moment the game times out.
func (g *Game) Deadline() time.Time {
	return g.CreatedAt.Add(g.rules.TimeLimit)
}

// PreviousLevel is the last completed level, -1 before the first answer.
func (g *Game) PreviousLevel() int {
	return g.CurrentLevel - 1
}

// CurrentQuestion returns the question being played, nil once all levels
// are answered.
func (g *Game) CurrentQuestion() *GameQuestion {
	if g.CurrentLevel < 0 || g.CurrentLevel >= len(g.Questions) {
		return nil
	}
	return g.Questions[g.CurrentLevel]
}

// PreviousQuestion returns the last answered question, if any.
func (g *Game) PreviousQuestion() *GameQuestion {
	lvl := g.PreviousLevel()
	if lvl < 0 || lvl >= len(g.Questions) {
		return nil
	}
	return g.Questions[lvl]
}

func (g *Game) expired() bool {
	return g.now().Sub(g.CreatedAt) > g.rules.TimeLimit
}

func (g *Game) finish(failed bool, prize int64) {
	t := g.now()
	g.FinishedAt = &t
	g.IsFailed = failed
	g.Prize = prize
}

// safePrize - несгораемая сумма за последний пройденный уровень
func (g *Game) safePrize() int64 {
	return g.rules.Ladder.FireproofPayoutBelow(g.PreviousLevel())
}

// CheckTimeout finishes an expired in-progress game as a timeout. It reports
// whether the game was finished by this call.
func (g *Game) CheckTimeout() bool {
	if g.Finished() || !g.expired() {
		return false
	}
	g.finish(true, g.safePrize())
	return true
}

// Answer submits letter for the current question and reports whether it was
// accepted and correct. An expired game finishes as a timeout and the answer
// is not looked at.
func (g *Game) Answer(letter Letter) (bool, error) {
	if g.Finished() {
		return false, ErrGameFinished
	}
	if !letter.Valid() {
		return false, ErrInvalidLetter
	}

	if g.CheckTimeout() {
		return false, nil
	}

	if !g.CurrentQuestion().IsCorrect(letter) {
		g.finish(true, g.safePrize())
		return false, nil
	}

	g.CurrentLevel++
	if g.CurrentLevel >= g.rules.Ladder.Levels() {
		g.finish(false, g.rules.Ladder.Top())
	}
	return true, nil
}

// UseHelp applies lifeline kind to the current question and returns the
// question's help record.
func (g *Game) UseHelp(kind HelpKind) (Help, error) {
	if g.Finished() {
		return Help{}, ErrGameFinished
	}
	if !kind.Valid() {
		return Help{}, ErrUnknownHelp
	}
	if g.helpUsed(kind) {
		return Help{}, ErrHelpAlreadyUsed
	}

	q := g.CurrentQuestion()
	var payload Help
	switch kind {
	case HelpFiftyFifty:
		payload.FiftyFifty = FiftyFifty(q, g.rng)
	case HelpAudienceHelp:
		payload.AudienceHelp = AudienceHelp(q, g.rng)
	case HelpFriendCall:
		payload.FriendCall = FriendCall(q, g.rng)
	}

	if err := q.RecordHelp(kind, payload); err != nil {
		return Help{}, err
	}
	g.markHelp(kind)

	return q.Help.clone(), nil
}

// TakeMoney finishes the game and returns the prize: the fireproof payout of
// the last completed level.
func (g *Game) TakeMoney() (int64, error) {
	if g.Finished() {
		return 0, ErrGameFinished
	}
	g.finish(false, g.safePrize())
	return g.Prize, nil
}

// Summary returns the listing row for the game.
func (g *Game) Summary() domain.GameSummary {
	st := g.Status()
	return domain.GameSummary{
		ID:           g.ID,
		UserID:       g.UserID,
		CurrentLevel: g.CurrentLevel,
		Prize:        g.Prize,
		Status:       st,
		StatusLabel:  st.Label(),
		CreatedAt:    g.CreatedAt,
		FinishedAt:   g.FinishedAt,
		FiftyFifty:   g.FiftyFiftyUsed,
		AudienceHelp: g.AudienceHelpUsed,
		FriendCall:   g.FriendCallUsed,
	}
}
