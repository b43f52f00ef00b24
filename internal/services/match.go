package services

import (
	"strconv"
	"strings"

	"dermadect/internal/models"
)

// CheckAnswer decides whether a free-form user answer names the correct
// choice. Users may reply with the choice number, the full choice text,
// a fragment of it, or a close paraphrase.
func CheckAnswer(userAnswer string, question *models.Question) bool {
	answer := strings.ToLower(strings.TrimSpace(userAnswer))
	correct := strings.ToLower(strings.TrimSpace(question.CorrectAnswer))

	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(question.Choices) {
			return strings.ToLower(strings.TrimSpace(question.Choices[n-1])) == correct
		}
		// out-of-range numbers fall through to text matching
	}

	if answer == correct {
		return true
	}

	if strings.Contains(answer, correct) || strings.Contains(correct, answer) {
		return true
	}

	answerWords := fieldSet(answer)
	correctWords := fieldSet(correct)
	common := 0
	for w := range answerWords {
		if _, ok := correctWords[w]; ok {
			common++
		}
	}
	threshold := len(answerWords)
	if len(correctWords) < threshold {
		threshold = len(correctWords)
	}
	return common >= threshold-1
}

func fieldSet(s string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, w := range strings.Fields(s) {
		set[w] = struct{}{}
	}
	return set
}
