package domain

// AnswersCount - число вариантов ответа у каждого вопроса
const AnswersCount = 4

// Question - вопрос из банка вопросов
type Question struct {
	ID           int64                `db:"id" json:"id" yaml:"-"`
	Level        int                  `db:"level" json:"level" yaml:"level"`
	Text         string               `db:"text" json:"text" yaml:"text"`
	Answers      [AnswersCount]string `db:"answers" json:"answers" yaml:"answers"`
	CorrectIndex int                  `db:"correct_index" json:"-" yaml:"correct"`
}

// Valid reports whether the question has text, four answers and a correct
// index in range.
func (q Question) Valid() bool {
	if q.Text == "" || q.Level < 0 {
		return false
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= AnswersCount {
		return false
	}
	for _, a := range q.Answers {
		if a == "" {
			return false
		}
	}
	return true
}
