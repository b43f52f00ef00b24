package services

import (
	"context"
	"errors"
	"testing"

	"dermadect/internal/llm"
	"dermadect/internal/models"

	"github.com/stretchr/testify/require"
)

// failing model forces the built-in question set, which keeps the gameplay
// deterministic: correct choice numbers are 1, 2, 2, 2, 2.
func newGameFixture(t *testing.T) (*ServiceGame, *ServiceStats) {
	t.Helper()
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	return invokeGame(t, injector), invokeStats(t, injector)
}

func TestStartGame(t *testing.T) {
	service, _ := newGameFixture(t)
	ctx := context.Background()

	response, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, response.SessionID)
	require.Contains(t, response.Response, "Game started! Here's your first question:")
	require.Contains(t, response.Response, "Which organ pumps blood throughout the body?")

	session, err := service.GetActiveSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, response.SessionID, session.SessionID)
	require.Equal(t, models.SessionActive, session.Status)
	require.Equal(t, 5, session.NumQuestions)
	require.Equal(t, 0, session.CurrentQuestionIndex)
	require.Equal(t, 0, session.Score)
}

func TestStartGameUsesConfiguredQuestionCount(t *testing.T) {
	injector := newTestContainer(t, &llm.Mock{Err: errors.New("model offline")})
	service := invokeGame(t, injector)
	setTestConfig(t, injector, CONFIG_DEFAULT_NUM_QUESTIONS, 3)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)

	session, err := service.GetActiveSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 3, session.NumQuestions)
	require.Len(t, session.Questions, 3)
}

func TestGetActiveSessionWithoutGame(t *testing.T) {
	service, _ := newGameFixture(t)

	_, err := service.GetActiveSession(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestProcessAnswerAdvancesCursor(t *testing.T) {
	service, _ := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)

	response, err := service.ProcessAnswer(ctx, "alice", "Heart")
	require.NoError(t, err)
	require.Contains(t, response.Response, "Correct!")
	require.Contains(t, response.Response, "Question 2 of 5")
	require.Contains(t, response.Response, "Current Score: 1/1")
	require.Equal(t, 1, response.Score)

	session, err := service.GetActiveSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, session.CurrentQuestionIndex)
	require.Equal(t, 1, session.Score)
	require.Len(t, session.Answers, 1)
	require.True(t, session.Answers[0].Correct)
}

func TestProcessAnswerIncorrect(t *testing.T) {
	service, _ := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)

	// choice 2 is Lungs, the correct answer is Heart
	response, err := service.ProcessAnswer(ctx, "alice", "2")
	require.NoError(t, err)
	require.Contains(t, response.Response, "Incorrect. The correct answer was: Heart.")
	require.Contains(t, response.Response, "Explanation:")
	require.Contains(t, response.Response, "Current Score: 0/1")
	require.Equal(t, 0, response.Score)

	session, err := service.GetActiveSession(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, session.Answers, 1)
	require.False(t, session.Answers[0].Correct)
	require.Equal(t, "2", session.Answers[0].UserAnswer)
}

func TestProcessAnswerWithoutSession(t *testing.T) {
	service, _ := newGameFixture(t)

	_, err := service.ProcessAnswer(context.Background(), "nobody", "Heart")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLastAnswerEndsGame(t *testing.T) {
	service, stats := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)

	answers := []string{"Heart", "Skin", "Cerebellum", "Pancreas", "Lungs"}
	var response *models.GameResponse
	for _, answer := range answers {
		response, err = service.ProcessAnswer(ctx, "alice", answer)
		require.NoError(t, err)
	}

	require.Contains(t, response.Response, "🎯 Game Results")
	require.Contains(t, response.Response, "🏆 Outstanding!")
	require.Contains(t, response.Response, "Score: 5/5 (100.0%)")
	require.Equal(t, 5, response.Score)

	// the completed session no longer shows up as active
	_, err = service.GetActiveSession(ctx, "alice")
	require.ErrorIs(t, err, ErrSessionNotFound)

	userStats, err := stats.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, userStats.TotalGames)
	require.Equal(t, 5, userStats.TotalScore)
	require.Equal(t, 5.0, userStats.AverageScore)
	require.Equal(t, 5, userStats.Categories[models.CategoryBodyParts].Total)
	require.Equal(t, 5, userStats.Categories[models.CategoryBodyParts].Correct)
}

func TestEndSessionMidGame(t *testing.T) {
	service, stats := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)

	_, err = service.ProcessAnswer(ctx, "alice", "1")
	require.NoError(t, err)
	_, err = service.ProcessAnswer(ctx, "alice", "3")
	require.NoError(t, err)

	response, err := service.EndSession(ctx, "alice")
	require.NoError(t, err)
	require.Contains(t, response.Response, "🎯 Game Results")
	require.Equal(t, 1, response.Score)

	// partial sessions still count every answered question
	userStats, err := stats.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, userStats.TotalGames)
	require.Equal(t, 1, userStats.TotalScore)
	require.Equal(t, 2, userStats.Categories[models.CategoryBodyParts].Total)
	require.Equal(t, 1, userStats.Categories[models.CategoryBodyParts].Correct)
}

func TestEndSessionTwiceDoesNotRecreditStats(t *testing.T) {
	service, stats := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	_, err = service.ProcessAnswer(ctx, "alice", "1")
	require.NoError(t, err)

	first, err := service.EndSession(ctx, "alice")
	require.NoError(t, err)

	second, err := service.EndSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, first.Response, second.Response)

	userStats, err := stats.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, userStats.TotalGames)
}

func TestAnswerAfterGameEnd(t *testing.T) {
	service, stats := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	_, err = service.ProcessAnswer(ctx, "alice", "1")
	require.NoError(t, err)
	_, err = service.EndSession(ctx, "alice")
	require.NoError(t, err)

	response, err := service.ProcessAnswer(ctx, "alice", "2")
	require.NoError(t, err)
	require.Equal(t, "This game session has ended. Start a new game to continue playing.", response.Response)

	// no score change from the late answer
	userStats, err := stats.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, userStats.TotalScore)
	require.Equal(t, 1, userStats.Categories[models.CategoryBodyParts].Total)
}

func TestEndSessionWithoutGame(t *testing.T) {
	service, _ := newGameFixture(t)

	_, err := service.EndSession(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStartGameClosesPreviousSession(t *testing.T) {
	service, stats := newGameFixture(t)
	ctx := context.Background()

	firstStart, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	_, err = service.ProcessAnswer(ctx, "alice", "1")
	require.NoError(t, err)

	secondStart, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, firstStart.SessionID, secondStart.SessionID)

	session, err := service.GetActiveSession(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, secondStart.SessionID, session.SessionID)
	require.Equal(t, 0, session.Score)

	// the abandoned session was completed, so its score is kept
	userStats, err := stats.GetUserStats(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, 1, userStats.TotalGames)
	require.Equal(t, 1, userStats.TotalScore)
}

func TestCreateSessionRejectsSecondActiveSession(t *testing.T) {
	service, _ := newGameFixture(t)
	ctx := context.Background()

	_, err := service.CreateSession(ctx, "alice", FallbackQuestions())
	require.NoError(t, err)

	_, err = service.CreateSession(ctx, "alice", FallbackQuestions())
	require.ErrorIs(t, err, ErrSessionAlreadyActive)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	service, _ := newGameFixture(t)
	ctx := context.Background()

	_, err := service.StartGame(ctx, "alice")
	require.NoError(t, err)
	_, err = service.StartGame(ctx, "bob")
	require.NoError(t, err)

	_, err = service.ProcessAnswer(ctx, "alice", "1")
	require.NoError(t, err)

	bobSession, err := service.GetActiveSession(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, 0, bobSession.CurrentQuestionIndex)
	require.Empty(t, bobSession.Answers)
}
