package game

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/KoshmareG/KHSM/internal/domain"
)

func testQuestion(level int) domain.Question {
	return domain.Question{
		ID:           int64(level + 1),
		Level:        level,
		Text:         "Сколько будет 2+2?",
		Answers:      [domain.AnswersCount]string{"4", "3", "5", "22"},
		CorrectIndex: 0,
	}
}

func TestGameQuestionMapping(t *testing.T) {
	q := &GameQuestion{
		Question: testQuestion(0),
		// a->2, b->1 (правильный), c->4, d->3 в нумерации с единицы
		Mapping: [domain.AnswersCount]int{1, 0, 3, 2},
	}

	want := map[Letter]string{"a": "3", "b": "4", "c": "22", "d": "5"}
	for l, text := range q.Variants() {
		if want[l] != text {
			t.Fatalf("variant %s = %q; want %q", l, text, want[l])
		}
	}

	if !q.IsCorrect(LetterB) {
		t.Fatalf("b must be correct")
	}
	if q.IsCorrect(LetterA) || q.IsCorrect("z") {
		t.Fatalf("only b must be correct")
	}
	if q.CorrectLetter() != LetterB {
		t.Fatalf("CorrectLetter = %s; want b", q.CorrectLetter())
	}
	if q.AnswerText("z") != "" {
		t.Fatalf("unknown letter must have no text")
	}
}

func TestNewGameQuestionIsBijection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		seen := map[int]bool{}
		for _, slot := range q.Mapping {
			if slot < 0 || slot >= domain.AnswersCount || seen[slot] {
				t.Fatalf("mapping %v is not a permutation", q.Mapping)
			}
			seen[slot] = true
		}
		if q.AnswerText(q.CorrectLetter()) != "4" {
			t.Fatalf("correct letter %s shows %q", q.CorrectLetter(), q.AnswerText(q.CorrectLetter()))
		}
	}
}

func TestNewGameQuestionUniform(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	counts := map[Letter]int{}
	const trials = 4000
	for i := 0; i < trials; i++ {
		counts[NewGameQuestion(testQuestion(0), 0, rng).CorrectLetter()]++
	}
	for _, l := range Letters {
		if counts[l] < trials/4-200 || counts[l] > trials/4+200 {
			t.Fatalf("correct answer under %s %d times out of %d", l, counts[l], trials)
		}
	}
}

func TestRecordHelpOnce(t *testing.T) {
	q := NewGameQuestion(testQuestion(0), 0, rand.New(rand.NewSource(1)))

	if err := q.RecordHelp(HelpFriendCall, Help{FriendCall: "Тётя Зина считает, что это вариант A"}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	err := q.RecordHelp(HelpFriendCall, Help{FriendCall: "other"})
	if !errors.Is(err, ErrHelpAlreadyUsed) {
		t.Fatalf("second record err = %v; want ErrHelpAlreadyUsed", err)
	}
	if q.Help.FriendCall != "Тётя Зина считает, что это вариант A" {
		t.Fatalf("stored help was overwritten: %q", q.Help.FriendCall)
	}

	if err := q.RecordHelp("lottery", Help{}); !errors.Is(err, ErrUnknownHelp) {
		t.Fatalf("unknown kind err = %v; want ErrUnknownHelp", err)
	}
}

func TestAvailableLetters(t *testing.T) {
	q := NewGameQuestion(testQuestion(0), 0, rand.New(rand.NewSource(3)))
	if got := q.AvailableLetters(); len(got) != 4 {
		t.Fatalf("available = %v; want all four", got)
	}

	if err := q.RecordHelp(HelpFiftyFifty, Help{FiftyFifty: []Letter{LetterD, LetterA}}); err != nil {
		t.Fatalf("record: %v", err)
	}
	got := q.AvailableLetters()
	if len(got) != 2 || got[0] != LetterA || got[1] != LetterD {
		t.Fatalf("available = %v; want [a d]", got)
	}
}
