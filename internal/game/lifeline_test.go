package game

import (
	"math/rand"
	"strings"
	"testing"
)

func TestFiftyFifty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	kept := map[Letter]int{}

	for i := 0; i < 300; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		got := FiftyFifty(q, rng)

		if len(got) != 2 {
			t.Fatalf("fifty-fifty returned %v; want 2 letters", got)
		}
		if got[0] == got[1] {
			t.Fatalf("fifty-fifty returned duplicate letters %v", got)
		}
		if got[0] != q.CorrectLetter() && got[1] != q.CorrectLetter() {
			t.Fatalf("fifty-fifty %v lost correct letter %s", got, q.CorrectLetter())
		}
		for _, l := range got {
			if l != q.CorrectLetter() {
				kept[l]++
			}
		}
	}

	// неправильный вариант выбирается из всех трёх
	if len(kept) != 4 {
		t.Fatalf("wrong letters kept: %v", kept)
	}
}

func TestAudienceHelpSumsTo100(t *testing.T) {
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 500; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		got := AudienceHelp(q, rng)

		if len(got) != 4 {
			t.Fatalf("audience help keys = %v; want all four letters", got)
		}
		sum := 0
		for _, l := range Letters {
			share, ok := got[l]
			if !ok {
				t.Fatalf("letter %s missing in %v", l, got)
			}
			if share <= 0 {
				t.Fatalf("letter %s got %d%%", l, share)
			}
			sum += share
		}
		if sum != 100 {
			t.Fatalf("shares %v sum to %d", got, sum)
		}
	}
}

func TestAudienceHelpFavoursCorrect(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const trials = 2000

	correctTotal, wrongTotal := 0, 0
	leads := 0
	seenNotLeading := false
	for i := 0; i < trials; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		got := AudienceHelp(q, rng)
		correct := q.CorrectLetter()

		correctTotal += got[correct]
		best := true
		for _, l := range Letters {
			if l == correct {
				continue
			}
			wrongTotal += got[l]
			if got[l] >= got[correct] {
				best = false
			}
		}
		if best {
			leads++
		} else {
			seenNotLeading = true
		}
	}

	avgCorrect := float64(correctTotal) / trials
	avgWrong := float64(wrongTotal) / (trials * 3)
	if avgCorrect <= avgWrong*1.5 {
		t.Fatalf("correct letter average %.1f%% is not clearly above wrong average %.1f%%", avgCorrect, avgWrong)
	}
	if leads < trials/2 {
		t.Fatalf("correct letter led only %d of %d times", leads, trials)
	}
	if !seenNotLeading {
		t.Fatalf("correct letter led every time, result is not random")
	}
}

func TestAudienceHelpAfterFiftyFifty(t *testing.T) {
	rng := rand.New(rand.NewSource(9))

	for i := 0; i < 200; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		pair := FiftyFifty(q, rng)
		if err := q.RecordHelp(HelpFiftyFifty, Help{FiftyFifty: pair}); err != nil {
			t.Fatalf("record: %v", err)
		}

		got := AudienceHelp(q, rng)
		sum := 0
		for _, l := range Letters {
			in := l == pair[0] || l == pair[1]
			if !in && got[l] != 0 {
				t.Fatalf("eliminated letter %s got %d%%", l, got[l])
			}
			if in && got[l] <= 0 {
				t.Fatalf("remaining letter %s got %d%%", l, got[l])
			}
			sum += got[l]
		}
		if sum != 100 {
			t.Fatalf("shares %v sum to %d", got, sum)
		}
	}
}

func friendLetter(t *testing.T, text string) Letter {
	t.Helper()
	idx := strings.LastIndex(text, "вариант ")
	if idx < 0 {
		t.Fatalf("friend call %q names no letter", text)
	}
	l := Letter(strings.ToLower(strings.TrimSpace(text[idx+len("вариант "):])))
	if !l.Valid() {
		t.Fatalf("friend call %q names %q", text, l)
	}
	return l
}

func TestFriendCall(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	const trials = 2000

	right := 0
	for i := 0; i < trials; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		text := FriendCall(q, rng)

		named := 0
		for _, l := range Letters {
			if strings.Contains(text, "вариант "+l.Upper()) {
				named++
			}
		}
		if named != 1 {
			t.Fatalf("friend call %q names %d letters", text, named)
		}
		if friendLetter(t, text) == q.CorrectLetter() {
			right++
		}
	}

	if right < trials*70/100 || right > trials*90/100 {
		t.Fatalf("friend was right %d of %d times; want about 80%%", right, trials)
	}
}

func TestFriendCallAfterFiftyFifty(t *testing.T) {
	rng := rand.New(rand.NewSource(33))

	for i := 0; i < 300; i++ {
		q := NewGameQuestion(testQuestion(0), 0, rng)
		pair := FiftyFifty(q, rng)
		if err := q.RecordHelp(HelpFiftyFifty, Help{FiftyFifty: pair}); err != nil {
			t.Fatalf("record: %v", err)
		}

		l := friendLetter(t, FriendCall(q, rng))
		if l != pair[0] && l != pair[1] {
			t.Fatalf("friend named eliminated letter %s, remaining %v", l, pair)
		}
	}
}
