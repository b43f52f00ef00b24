package services

import (
	"fmt"
	"strings"

	"dermadect/internal/models"
)

var difficultyIcons = map[models.QuestionDifficulty]string{
	models.QuestionEasy:   "⭐",
	models.QuestionMedium: "⭐⭐",
	models.QuestionHard:   "⭐⭐⭐",
}

var choiceIcons = []string{"🅰️", "🅱️", "©️", "🅳️"}

// FormatQuestion renders a question with its difficulty indicator and
// numbered choices for the chat surface.
func FormatQuestion(question *models.Question) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📝 %s\n", question.Text)

	icon, ok := difficultyIcons[question.Difficulty]
	if !ok {
		icon = "⭐"
	}
	fmt.Fprintf(&b, "%s Difficulty: %s\n\n", icon, capitalize(string(question.Difficulty)))

	lines := make([]string, 0, len(question.Choices))
	for i, choice := range question.Choices {
		if i >= len(choiceIcons) {
			break
		}
		lines = append(lines, fmt.Sprintf("%s %d. %s", choiceIcons[i], i+1, choice))
	}
	b.WriteString(strings.Join(lines, "\n"))

	return b.String()
}

// FormatResults renders the end-of-game summary with a grade, the score
// percentage and a per-question review.
func FormatResults(session *models.GameSession) string {
	totalQuestions := session.NumQuestions
	correctAnswers := session.Score
	percentage := float64(correctAnswers) / float64(totalQuestions) * 100

	var grade, message string
	switch {
	case percentage >= 90:
		grade = "🏆 Outstanding!"
		message = "Excellent work! You have a strong understanding of human anatomy."
	case percentage >= 75:
		grade = "🌟 Very Good!"
		message = "Great job! You have good knowledge of human anatomy."
	case percentage >= 60:
		grade = "👍 Good"
		message = "Good effort! Keep learning to improve your knowledge."
	default:
		grade = "📚 Keep Learning"
		message = "Don't worry! Practice makes perfect. Keep studying and try again."
	}

	results := []string{
		"🎯 Game Results",
		fmt.Sprintf("\n%s", grade),
		fmt.Sprintf("Score: %d/%d (%.1f%%)", correctAnswers, totalQuestions, percentage),
		fmt.Sprintf("Message: %s\n", message),
		"📊 Question Review:",
	}

	for i, answer := range session.Answers {
		icon := "✅"
		if !answer.Correct {
			icon = "❌"
		}

		results = append(results, fmt.Sprintf("\n%s Question %d: %s", icon, i+1, answer.Question.Text))
		results = append(results, fmt.Sprintf("   Your answer: %s", answer.UserAnswer))
		if !answer.Correct {
			results = append(results, fmt.Sprintf("   Correct answer: %s", answer.Question.CorrectAnswer))
			if answer.Question.Explanation != "" {
				results = append(results, fmt.Sprintf("   Explanation: %s", answer.Question.Explanation))
			}
		}
	}

	results = append(results, "\n🎮 Type 'start game' to play again and improve your score!")

	return strings.Join(results, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
