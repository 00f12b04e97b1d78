package repository

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/KoshmareG/KHSM/internal/domain"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// QuestionBank is an in-memory question source, usually loaded from YAML.
type QuestionBank struct {
	mu      sync.Mutex
	byLevel map[int][]domain.Question
	rng     *rand.Rand
}

type questionsFile struct {
	Questions []domain.Question `yaml:"questions"`
}

// NewQuestionBank groups questions by level. Questions without an id get a
// sequential one.
func NewQuestionBank(questions []domain.Question, rng *rand.Rand) (*QuestionBank, error) {
	for i := range questions {
		if !questions[i].Valid() {
			return nil, fmt.Errorf("question %d (%q) is invalid", i, questions[i].Text)
		}
		if questions[i].ID == 0 {
			questions[i].ID = int64(i + 1)
		}
	}

	return &QuestionBank{
		byLevel: lo.GroupBy(questions, func(q domain.Question) int { return q.Level }),
		rng:     rng,
	}, nil
}

// ReadQuestionsFile parses a YAML question file:
//
//	questions:
//	  - level: 0
//	    text: "..."
//	    answers: ["right", "wrong", "wrong", "wrong"]
//	    correct: 0
func ReadQuestionsFile(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}

	var f questionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}
	return f.Questions, nil
}

// LoadQuestionBank reads path and builds a bank from it.
func LoadQuestionBank(path string, rng *rand.Rand) (*QuestionBank, error) {
	qs, err := ReadQuestionsFile(path)
	if err != nil {
		return nil, err
	}
	return NewQuestionBank(qs, rng)
}

// DrawQuestions picks one random question for every level 0..levels-1.
func (b *QuestionBank) DrawQuestions(ctx context.Context, levels int) ([]domain.Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]domain.Question, levels)
	for lvl := 0; lvl < levels; lvl++ {
		pool := b.byLevel[lvl]
		if len(pool) == 0 {
			return nil, fmt.Errorf("%w: level %d", ErrNotEnoughQuestions, lvl)
		}
		result[lvl] = pool[b.rng.Intn(len(pool))]
	}
	return result, nil
}

// CountByLevel returns how many questions each level has.
func (b *QuestionBank) CountByLevel(ctx context.Context) (map[int]int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return lo.MapValues(b.byLevel, func(qs []domain.Question, _ int) int { return len(qs) }), nil
}
