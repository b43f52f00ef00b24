package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"dermadect/internal/datastore"
	"dermadect/internal/docstore"
	"dermadect/internal/models"

	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
)

var AvailableCommands = []string{"start game", "end game", "show stats", "help"}

type ServiceGame struct {
	container  *do.Injector
	redisDB    redis.UniversalClient
	rs         *redsync.Redsync
	postgresDB *bun.DB

	serviceQuestion *ServiceQuestion
	serviceStats    *ServiceStats
	serviceConfig   *ServiceConfig
}

func NewServiceGame(container *do.Injector) (*ServiceGame, error) {
	redisDB, err := do.InvokeNamed[redis.UniversalClient](container, "redis-db")
	if err != nil {
		return nil, err
	}

	rs, err := do.Invoke[*redsync.Redsync](container)
	if err != nil {
		return nil, err
	}

	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	serviceQuestion, err := do.Invoke[*ServiceQuestion](container)
	if err != nil {
		return nil, err
	}

	serviceStats, err := do.Invoke[*ServiceStats](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	return &ServiceGame{container, redisDB, rs, postgresDB, serviceQuestion, serviceStats, serviceConfig}, nil
}

func (service *ServiceGame) GetActiveSession(ctx context.Context, userID string) (*models.GameSession, error) {
	session, err := docstore.GetActiveGameSession(ctx, service.redisDB, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, errorx.Wrap(ErrSessionNotFound, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return session, nil
}

// StartGame begins a fresh quiz for the user. Any session still active is
// closed out first so its score is not lost.
func (service *ServiceGame) StartGame(ctx context.Context, userID string) (*models.GameResponse, error) {
	mutex := service.rs.NewMutex(LockKeyUserGameSession(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrGameSessionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	currentSession, err := docstore.GetActiveGameSession(ctx, service.redisDB, userID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if currentSession != nil {
		if _, err := service.endSession(ctx, currentSession); err != nil {
			return nil, err
		}
	}

	numQuestions, _ := service.serviceConfig.GetIntConfig(ctx, CONFIG_DEFAULT_NUM_QUESTIONS, DEFAULT_NUM_QUESTIONS)
	questions, err := service.serviceQuestion.GenerateQuestions(ctx, numQuestions)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	session, err := service.createSession(ctx, userID, questions)
	if err != nil {
		return nil, err
	}

	questionText := FormatQuestion(&session.Questions[0])
	return &models.GameResponse{
		Response:          fmt.Sprintf("Game started! Here's your first question:\n\n%s", questionText),
		SessionID:         session.SessionID,
		Score:             session.Score,
		AvailableCommands: AvailableCommands,
	}, nil
}

// CreateSession stores a new active session seeded with pre-generated
// questions. It refuses when the user already has an active session.
func (service *ServiceGame) CreateSession(ctx context.Context, userID string, questions []models.Question) (*models.GameSession, error) {
	mutex := service.rs.NewMutex(LockKeyUserGameSession(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrGameSessionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	currentSession, err := docstore.GetActiveGameSession(ctx, service.redisDB, userID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	if currentSession != nil {
		return nil, errorx.Wrap(ErrSessionAlreadyActive, errorx.Invalid)
	}

	return service.createSession(ctx, userID, questions)
}

func (service *ServiceGame) createSession(ctx context.Context, userID string, questions []models.Question) (*models.GameSession, error) {
	if len(questions) == 0 {
		return nil, errorx.Wrap(errors.New("cannot start a game without questions"), errorx.Invalid)
	}

	session := &models.GameSession{
		SessionID:            uuid.New().String(),
		UserID:               userID,
		NumQuestions:         len(questions),
		CurrentQuestionIndex: 0,
		Score:                0,
		Status:               models.SessionActive,
		StartTime:            time.Now(),
		Questions:            questions,
		Answers:              []models.AnswerRecord{},
	}

	session, err := docstore.SaveGameSession(ctx, service.redisDB, session)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return session, nil
}

// ProcessAnswer evaluates the user's answer against the current question,
// records it, and returns either the next question or the end-of-game
// summary when it was the last one.
func (service *ServiceGame) ProcessAnswer(ctx context.Context, userID string, answer string) (*models.GameResponse, error) {
	mutex := service.rs.NewMutex(LockKeyUserGameSession(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrGameSessionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	session, err := docstore.GetCurrentGameSession(ctx, service.redisDB, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, errorx.Wrap(ErrSessionNotFound, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if !session.Active() {
		return &models.GameResponse{
			Response:          "This game session has ended. Start a new game to continue playing.",
			AvailableCommands: AvailableCommands,
		}, nil
	}

	if session.CurrentQuestionIndex >= session.NumQuestions {
		return &models.GameResponse{
			Response:          "All questions have been answered. The game is over.",
			AvailableCommands: AvailableCommands,
		}, nil
	}

	currentQuestion := session.Questions[session.CurrentQuestionIndex]
	correct := CheckAnswer(answer, &currentQuestion)

	session.Answers = append(session.Answers, models.AnswerRecord{
		SessionID:  session.SessionID,
		Index:      session.CurrentQuestionIndex,
		Question:   currentQuestion,
		UserAnswer: answer,
		Correct:    correct,
		Timestamp:  time.Now(),
	})

	var feedback string
	if correct {
		session.Score += 1
		feedback = "Correct! "
	} else {
		feedback = fmt.Sprintf("Incorrect. The correct answer was: %s. ", currentQuestion.CorrectAnswer)
		if currentQuestion.Explanation != "" {
			feedback += fmt.Sprintf("\nExplanation: %s\n", currentQuestion.Explanation)
		}
	}

	// Last question ends the game without advancing the cursor.
	if session.CurrentQuestionIndex >= session.NumQuestions-1 {
		return service.endSession(ctx, session)
	}

	session.CurrentQuestionIndex += 1
	nextQuestion := session.Questions[session.CurrentQuestionIndex]

	session, err = docstore.SaveGameSession(ctx, service.redisDB, session)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	progress := fmt.Sprintf("Question %d of %d", session.CurrentQuestionIndex+1, session.NumQuestions)
	scoreInfo := fmt.Sprintf("Current Score: %d/%d", session.Score, session.CurrentQuestionIndex)
	questionText := FormatQuestion(&nextQuestion)

	return &models.GameResponse{
		Response:          fmt.Sprintf("%s\n\n%s\n%s\n\n%s", feedback, progress, scoreInfo, questionText),
		SessionID:         session.SessionID,
		Score:             session.Score,
		AvailableCommands: AvailableCommands,
	}, nil
}

// EndSession closes the user's current session and returns the results
// summary. Ending an already-completed session returns its summary again
// without re-crediting statistics.
func (service *ServiceGame) EndSession(ctx context.Context, userID string) (*models.GameResponse, error) {
	mutex := service.rs.NewMutex(LockKeyUserGameSession(userID))
	if err := mutex.Lock(); err != nil {
		return nil, errorx.Wrap(ErrGameSessionLock, errorx.Invalid)
	}
	// nolint:errcheck
	defer mutex.Unlock()

	session, err := docstore.GetCurrentGameSession(ctx, service.redisDB, userID)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, errorx.Wrap(ErrSessionNotFound, errorx.NotExist)
		}
		return nil, errorx.Wrap(err, errorx.Service)
	}

	return service.endSession(ctx, session)
}

// endSession runs without taking the session lock, the public methods hold
// it already and the mutex is not reentrant.
func (service *ServiceGame) endSession(ctx context.Context, session *models.GameSession) (*models.GameResponse, error) {
	if session.Status == models.SessionCompleted {
		return &models.GameResponse{
			Response:          FormatResults(session),
			SessionID:         session.SessionID,
			Score:             session.Score,
			AvailableCommands: AvailableCommands,
		}, nil
	}

	session.Status = models.SessionCompleted
	now := time.Now()
	session.EndTime = &now

	session, err := docstore.SaveGameSession(ctx, service.redisDB, session)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	if _, err := service.serviceStats.UpdateUserStats(ctx, session); err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}

	service.archiveSession(ctx, session)

	return &models.GameResponse{
		Response:          FormatResults(session),
		SessionID:         session.SessionID,
		Score:             session.Score,
		AvailableCommands: AvailableCommands,
	}, nil
}

// archiveSession copies the completed session to postgres for long-term
// retention. Redis stays authoritative, archive failures only log.
func (service *ServiceGame) archiveSession(ctx context.Context, session *models.GameSession) {
	if service.postgresDB == nil {
		return
	}

	if err := datastore.ArchiveGameSession(ctx, service.postgresDB, session); err != nil {
		log.Printf("unable to archive session %s: %v", session.SessionID, err)
	}
}
