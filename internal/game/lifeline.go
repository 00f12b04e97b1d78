package game

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/samber/lo"
)

const (
	audienceMinWeight    = 5
	audienceWeightSpread = 46
	audienceCorrectBonus = 40

	// вероятность (в процентах), что друг назовёт правильный ответ
	friendAccuracy = 80
)

var friendNames = []string{
	"Василий Петрович",
	"Тётя Зина",
	"Дядя Миша",
	"Светлана Игоревна",
	"Сосед Коля",
	"Бабушка Валя",
}

// FiftyFifty returns the correct letter and one random wrong letter, in
// display order.
func FiftyFifty(q *GameQuestion, rng *rand.Rand) []Letter {
	correct := q.CorrectLetter()
	wrong := lo.Without(Letters[:], correct)
	keep := wrong[rng.Intn(len(wrong))]

	return lo.Filter(Letters[:], func(l Letter, _ int) bool {
		return l == correct || l == keep
	})
}

// AudienceHelp returns a vote share for each of the four letters summing to
// 100. The correct letter gets a bonus weight so it leads on average. Letters
// removed by fifty-fifty get 0.
func AudienceHelp(q *GameQuestion, rng *rand.Rand) map[Letter]int {
	correct := q.CorrectLetter()
	candidates := q.AvailableLetters()

	weights := make(map[Letter]int, len(candidates))
	total := 0
	for _, l := range candidates {
		w := audienceMinWeight + rng.Intn(audienceWeightSpread)
		if l == correct {
			w += audienceCorrectBonus
		}
		weights[l] = w
		total += w
	}

	// метод наибольшего остатка: сумма ровно 100
	res := make(map[Letter]int, len(Letters))
	for _, l := range Letters {
		res[l] = 0
	}
	type rem struct {
		letter Letter
		value  int
	}
	rems := make([]rem, 0, len(candidates))
	sum := 0
	for _, l := range candidates {
		share := weights[l] * 100 / total
		res[l] = share
		sum += share
		rems = append(rems, rem{letter: l, value: weights[l] * 100 % total})
	}
	sort.SliceStable(rems, func(i, j int) bool { return rems[i].value > rems[j].value })
	for i := 0; sum < 100; i++ {
		res[rems[i%len(rems)].letter]++
		sum++
	}

	return res
}

// FriendCall returns the friend's advice naming exactly one letter. The friend
// is right with friendAccuracy percent probability.
func FriendCall(q *GameQuestion, rng *rand.Rand) string {
	correct := q.CorrectLetter()
	guess := correct

	if rng.Intn(100) >= friendAccuracy {
		others := lo.Without(q.AvailableLetters(), correct)
		if len(others) > 0 {
			guess = others[rng.Intn(len(others))]
		}
	}

	name := friendNames[rng.Intn(len(friendNames))]
	return fmt.Sprintf("%s считает, что это вариант %s", name, guess.Upper())
}
