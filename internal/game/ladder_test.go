package game

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultLadder(t *testing.T) {
	l := DefaultLadder()

	if l.Levels() != 15 {
		t.Fatalf("levels = %d; want 15", l.Levels())
	}
	if l.Top() != 1000000 {
		t.Fatalf("top = %d; want 1000000", l.Top())
	}
	for i := 1; i < l.Levels(); i++ {
		if l.PayoutAt(i) <= l.PayoutAt(i-1) {
			t.Fatalf("payout at %d (%d) is not above payout at %d (%d)", i, l.PayoutAt(i), i-1, l.PayoutAt(i-1))
		}
	}
}

func TestFireproofPayoutBelow(t *testing.T) {
	l := DefaultLadder()

	cases := []struct {
		level int
		want  int64
	}{
		{-1, 0},
		{0, 0},
		{3, 0},
		{4, 1000},
		{5, 1000},
		{8, 1000},
		{9, 32000},
		{13, 32000},
		{14, 32000},
	}

	for _, tc := range cases {
		if got := l.FireproofPayoutBelow(tc.level); got != tc.want {
			t.Fatalf("FireproofPayoutBelow(%d) = %d; want %d", tc.level, got, tc.want)
		}
	}
}

func TestNewPrizeLadderValidation(t *testing.T) {
	if _, err := NewPrizeLadder(nil); !errors.Is(err, ErrEmptyLadder) {
		t.Fatalf("empty ladder err = %v; want ErrEmptyLadder", err)
	}

	_, err := NewPrizeLadder([]LadderLevel{{Payout: 100}, {Payout: 100}})
	if !errors.Is(err, ErrLadderNotIncrease) {
		t.Fatalf("flat ladder err = %v; want ErrLadderNotIncrease", err)
	}

	_, err = NewPrizeLadder([]LadderLevel{{Payout: 0}, {Payout: 100}})
	if !errors.Is(err, ErrLadderNotIncrease) {
		t.Fatalf("zero payout err = %v; want ErrLadderNotIncrease", err)
	}
}

func TestNewPrizeLadderCopiesLevels(t *testing.T) {
	levels := []LadderLevel{{Payout: 10}, {Payout: 20, Fireproof: true}}
	l, err := NewPrizeLadder(levels)
	if err != nil {
		t.Fatalf("NewPrizeLadder: %v", err)
	}

	levels[1].Payout = 5
	if l.PayoutAt(1) != 20 {
		t.Fatalf("ladder changed after caller mutation: %d", l.PayoutAt(1))
	}
}

func TestLoadLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	data := "levels:\n  - payout: 10\n  - payout: 50\n    fireproof: true\n  - payout: 100\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	l, err := LoadLadder(path)
	if err != nil {
		t.Fatalf("LoadLadder: %v", err)
	}
	if l.Levels() != 3 || l.Top() != 100 {
		t.Fatalf("got %d levels, top %d", l.Levels(), l.Top())
	}
	if got := l.FireproofPayoutBelow(2); got != 50 {
		t.Fatalf("FireproofPayoutBelow(2) = %d; want 50", got)
	}

	if _, err := LoadLadder(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
