package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	ErrEmptyLadder       = errors.New("prize ladder has no levels")
	ErrLadderNotIncrease = errors.New("prize ladder payouts must be strictly increasing")
)

// LadderLevel - одна ступень лестницы выигрышей
type LadderLevel struct {
	Payout    int64 `yaml:"payout" json:"payout"`
	Fireproof bool  `yaml:"fireproof" json:"fireproof"`
}

// PrizeLadder maps a level index to the amount paid for completing it.
// Immutable once built.
type PrizeLadder struct {
	levels []LadderLevel
}

// Классическая лестница на 15 вопросов, несгораемые суммы на 5-м и 10-м вопросах
var defaultLevels = []LadderLevel{
	{Payout: 100},
	{Payout: 200},
	{Payout: 300},
	{Payout: 500},
	{Payout: 1000, Fireproof: true},
	{Payout: 2000},
	{Payout: 4000},
	{Payout: 8000},
	{Payout: 16000},
	{Payout: 32000, Fireproof: true},
	{Payout: 64000},
	{Payout: 125000},
	{Payout: 250000},
	{Payout: 500000},
	{Payout: 1000000},
}

// DefaultLadder returns the 15 level ladder with checkpoints at levels 4 and 9.
func DefaultLadder() *PrizeLadder {
	l, _ := NewPrizeLadder(defaultLevels)
	return l
}

// NewPrizeLadder validates and copies levels.
func NewPrizeLadder(levels []LadderLevel) (*PrizeLadder, error) {
	if len(levels) == 0 {
		return nil, ErrEmptyLadder
	}

	var prev int64
	for i, lvl := range levels {
		if lvl.Payout <= prev {
			return nil, fmt.Errorf("level %d payout %d: %w", i, lvl.Payout, ErrLadderNotIncrease)
		}
		prev = lvl.Payout
	}

	cp := make([]LadderLevel, len(levels))
	copy(cp, levels)
	return &PrizeLadder{levels: cp}, nil
}

type ladderFile struct {
	Levels []LadderLevel `yaml:"levels"`
}

// LoadLadder reads a ladder from a YAML file:
//
//	levels:
//	  - payout: 100
//	  - payout: 1000
//	    fireproof: true
func LoadLadder(path string) (*PrizeLadder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ladder file: %w", err)
	}

	var f ladderFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ladder file %s: %w", path, err)
	}

	return NewPrizeLadder(f.Levels)
}

// Levels returns the total level count.
func (l *PrizeLadder) Levels() int {
	return len(l.levels)
}

// PayoutAt returns the payout for completing level.
func (l *PrizeLadder) PayoutAt(level int) int64 {
	return l.levels[level].Payout
}

// Top returns the payout for the last level.
func (l *PrizeLadder) Top() int64 {
	return l.levels[len(l.levels)-1].Payout
}

// FireproofPayoutBelow returns the payout of the highest fireproof level at or
// below level, or 0 when no checkpoint was reached.
func (l *PrizeLadder) FireproofPayoutBelow(level int) int64 {
	if level >= len(l.levels) {
		level = len(l.levels) - 1
	}
	for i := level; i >= 0; i-- {
		if l.levels[i].Fireproof {
			return l.levels[i].Payout
		}
	}
	return 0
}

// Table returns a copy of the ladder for display.
func (l *PrizeLadder) Table() []LadderLevel {
	cp := make([]LadderLevel, len(l.levels))
	copy(cp, l.levels)
	return cp
}
