package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"dermadect/internal/datastore"
	"dermadect/internal/llm"
	"dermadect/internal/models"

	"github.com/mroth/weightedrand/v2"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

const questionSystemPrompt = `You are an expert in human anatomy and health.
Generate multiple-choice questions about human body parts and their functions.

Your response MUST be a valid JSON array with the following structure:
[
    {
        "text": "The question text",
        "choices": ["Choice A", "Choice B", "Choice C", "Choice D"],
        "correct_answer": "The correct choice",
        "category": "body_parts",
        "difficulty": "easy|medium|hard",
        "explanation": "A brief explanation of why the answer is correct"
    }
]

Rules:
1. Each question must be clear and unambiguous
2. Choices must be distinct and plausible
3. The correct answer must be one of the choices
4. The explanation should be educational
5. Difficulty should be appropriate for the question
6. Category should be "body_parts"
7. Avoid overly complex medical terminology
8. Ensure the questions are appropriate for a general audience`

type ServiceQuestion struct {
	container  *do.Injector
	postgresDB *bun.DB
	provider   llm.Provider

	serviceConfig *ServiceConfig
}

func NewServiceQuestion(container *do.Injector) (*ServiceQuestion, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	provider, err := do.Invoke[llm.Provider](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestion{container, postgresDB, provider, serviceConfig}, nil
}

// GenerateQuestions produces a quiz of count questions. It asks the model
// first, falls back to the question bank, and finally to a built-in set so
// a game can always start.
func (service *ServiceQuestion) GenerateQuestions(ctx context.Context, count int) ([]models.Question, error) {
	if count <= 0 || count > MAX_NUM_QUESTIONS {
		count = DEFAULT_NUM_QUESTIONS
	}

	questions, err := service.generateWithModel(ctx, count)
	if err == nil {
		service.bankQuestions(ctx, questions)
		return questions, nil
	}
	log.Printf("question generation failed, falling back: %v", err)

	category, _ := service.serviceConfig.GetStringConfig(ctx, CONFIG_QUESTION_CATEGORY, models.CategoryBodyParts)
	questions, err = service.questionsFromBank(ctx, category, count)
	if err == nil && len(questions) >= count {
		return questions[:count], nil
	}

	fallback := FallbackQuestions()
	if count > len(fallback) {
		count = len(fallback)
	}
	return fallback[:count], nil
}

func (service *ServiceQuestion) generateWithModel(ctx context.Context, count int) ([]models.Question, error) {
	prompt := fmt.Sprintf("Generate %d different questions about human body parts and their functions.", count)
	raw, err := service.provider.Complete(ctx, questionSystemPrompt, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	}, 0.7)
	if err != nil {
		return nil, err
	}

	content := stripCodeFence(raw)

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(content), &generated); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}

	if len(generated) < count {
		return nil, fmt.Errorf("expected %d questions, got %d", count, len(generated))
	}

	questions := make([]models.Question, 0, count)
	for i, g := range generated[:count] {
		question := models.Question{
			Text:          g.Text,
			Choices:       g.Choices,
			CorrectAnswer: g.CorrectAnswer,
			Category:      g.Category,
			Difficulty:    g.Difficulty,
			Explanation:   g.Explanation,
			Generated:     true,
			Enabled:       true,
		}
		if err := question.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		questions = append(questions, question)
	}

	return questions, nil
}

// generatedQuestion is the wire shape the model is prompted to emit. The
// stored Question hides the correct answer from JSON, this one must not.
type generatedQuestion struct {
	Text          string                    `json:"text"`
	Choices       []string                  `json:"choices"`
	CorrectAnswer string                    `json:"correct_answer"`
	Category      string                    `json:"category"`
	Difficulty    models.QuestionDifficulty `json:"difficulty"`
	Explanation   string                    `json:"explanation"`
}

// questionsFromBank samples stored questions, weighting toward easier ones
// so a bank-sourced quiz stays approachable.
func (service *ServiceQuestion) questionsFromBank(ctx context.Context, category string, count int) ([]models.Question, error) {
	if service.postgresDB == nil {
		return nil, fmt.Errorf("question bank unavailable")
	}

	stored, err := datastore.GetQuestionsByCategory(ctx, service.postgresDB, category, count*4)
	if err != nil {
		return nil, err
	}
	if len(stored) < count {
		return nil, fmt.Errorf("question bank has %d questions, need %d", len(stored), count)
	}

	byDifficulty := map[models.QuestionDifficulty][]models.Question{}
	for _, q := range stored {
		byDifficulty[q.Difficulty] = append(byDifficulty[q.Difficulty], q)
	}

	weights := map[models.QuestionDifficulty]int{
		models.QuestionEasy:   3,
		models.QuestionMedium: 2,
		models.QuestionHard:   1,
	}

	choices := []weightedrand.Choice[models.QuestionDifficulty, int]{}
	for difficulty := range byDifficulty {
		choices = append(choices, weightedrand.NewChoice(difficulty, weights[difficulty]))
	}

	chooser, err := weightedrand.NewChooser(choices...)
	if err != nil {
		return nil, err
	}

	picked := make([]models.Question, 0, count)
	for len(picked) < count {
		difficulty := chooser.Pick()
		pool := byDifficulty[difficulty]
		if len(pool) == 0 {
			// exhausted tier, drain the others in order
			for d, qs := range byDifficulty {
				if len(qs) > 0 {
					difficulty = d
					pool = qs
					break
				}
			}
			if len(pool) == 0 {
				break
			}
		}
		picked = append(picked, pool[0])
		byDifficulty[difficulty] = pool[1:]
	}

	if len(picked) < count {
		return nil, fmt.Errorf("question bank has %d usable questions, need %d", len(picked), count)
	}

	return picked, nil
}

// bankQuestions archives generated questions for later bank sampling. The
// bank is an optimization, a write failure never blocks a game.
func (service *ServiceQuestion) bankQuestions(ctx context.Context, questions []models.Question) {
	if service.postgresDB == nil {
		return
	}

	if err := datastore.InsertQuestions(ctx, service.postgresDB, questions); err != nil {
		log.Printf("unable to bank %d questions: %v", len(questions), err)
	}
}

func stripCodeFence(s string) string {
	content := strings.TrimSpace(s)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

// FallbackQuestions is the built-in quiz used when neither the model nor
// the question bank can supply questions. It also seeds a fresh bank.
func FallbackQuestions() []models.Question {
	return []models.Question{
		{
			Text:          "Which organ pumps blood throughout the body?",
			Choices:       []string{"Heart", "Lungs", "Brain", "Stomach"},
			CorrectAnswer: "Heart",
			Category:      models.CategoryBodyParts,
			Difficulty:    models.QuestionEasy,
			Explanation:   "The heart is a muscular organ that pumps blood throughout the body via the circulatory system.",
			Enabled:       true,
		},
		{
			Text:          "What is the largest organ in the human body?",
			Choices:       []string{"Liver", "Skin", "Brain", "Heart"},
			CorrectAnswer: "Skin",
			Category:      models.CategoryBodyParts,
			Difficulty:    models.QuestionEasy,
			Explanation:   "The skin is the largest organ, covering the entire body and protecting internal organs.",
			Enabled:       true,
		},
		{
			Text:          "Which part of the brain controls balance and coordination?",
			Choices:       []string{"Cerebrum", "Cerebellum", "Brainstem", "Hypothalamus"},
			CorrectAnswer: "Cerebellum",
			Category:      models.CategoryBodyParts,
			Difficulty:    models.QuestionMedium,
			Explanation:   "The cerebellum is responsible for coordinating voluntary movements, balance, and posture.",
			Enabled:       true,
		},
		{
			Text:          "Which organ produces insulin to regulate blood sugar?",
			Choices:       []string{"Liver", "Pancreas", "Kidney", "Spleen"},
			CorrectAnswer: "Pancreas",
			Category:      models.CategoryBodyParts,
			Difficulty:    models.QuestionMedium,
			Explanation:   "The pancreas produces insulin, a hormone that helps regulate blood sugar levels.",
			Enabled:       true,
		},
		{
			Text:          "Which organ is responsible for gas exchange in the body?",
			Choices:       []string{"Heart", "Lungs", "Liver", "Kidneys"},
			CorrectAnswer: "Lungs",
			Category:      models.CategoryBodyParts,
			Difficulty:    models.QuestionEasy,
			Explanation:   "The lungs are responsible for exchanging oxygen and carbon dioxide between the body and the environment.",
			Enabled:       true,
		},
	}
}
