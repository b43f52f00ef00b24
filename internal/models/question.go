package models

import (
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type QuestionDifficulty string

const (
	QuestionEasy   QuestionDifficulty = "easy"
	QuestionMedium QuestionDifficulty = "medium"
	QuestionHard   QuestionDifficulty = "hard"
)

func (v QuestionDifficulty) Valid() bool {
	switch v {
	case QuestionEasy, QuestionMedium, QuestionHard:
		return true
	default:
		return false
	}
}

const CategoryBodyParts = "body_parts"

// QuestionChoiceCount is the number of answer choices every question carries.
const QuestionChoiceCount = 4

// db
type Question struct {
	bun.BaseModel `bun:"table:question"`
	ID            int                `bun:"id,pk,autoincrement" json:"id" msgpack:"id"`
	Text          string             `bun:"text" json:"text" msgpack:"text"`
	Choices       []string           `bun:"choices,type:jsonb" json:"choices" msgpack:"choices"`
	CorrectAnswer string             `bun:"correct_answer" json:"-" msgpack:"correct_answer"`
	Category      string             `bun:"category" json:"category" msgpack:"category"`
	Difficulty    QuestionDifficulty `bun:"difficulty" json:"difficulty" msgpack:"difficulty"`
	Explanation   string             `bun:"explanation" json:"explanation,omitempty" msgpack:"explanation"`
	Generated     bool               `bun:"generated" json:"-" msgpack:"-"`
	Enabled       bool               `bun:"enabled" json:"-" msgpack:"-"`
}

// Validate enforces the question invariants before a question may enter a
// session: exactly four distinct choices and a correct answer among them.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text missing")
	}

	if len(q.Choices) != QuestionChoiceCount {
		return fmt.Errorf("expected %d choices, got %d", QuestionChoiceCount, len(q.Choices))
	}

	seen := make(map[string]bool, len(q.Choices))
	correctFound := false
	for _, choice := range q.Choices {
		if choice == "" {
			return errors.New("empty choice")
		}
		if seen[choice] {
			return fmt.Errorf("duplicate choice: %s", choice)
		}
		seen[choice] = true

		if choice == q.CorrectAnswer {
			correctFound = true
		}
	}

	if !correctFound {
		return errors.New("correct answer must be one of the choices")
	}

	if !q.Difficulty.Valid() {
		return fmt.Errorf("invalid difficulty: %s", q.Difficulty)
	}

	if q.Category == "" {
		return errors.New("category missing")
	}

	return nil
}
